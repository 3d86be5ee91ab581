package experiment

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/latentgrid/agent"
	"github.com/samuelfneumann/latentgrid/agent/opponent"
	"github.com/samuelfneumann/latentgrid/agent/player"
	env "github.com/samuelfneumann/latentgrid/environment"
	"github.com/samuelfneumann/latentgrid/experiment/tracker"
	ts "github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/world"
)

// Online runs episodes of a player against an opponent of a fixed
// hidden type z. Training episodes give the player z and record every
// image it observes labelled with z. Evaluation episodes hide z: before
// every action the player's classifier infers it from the image.
type Online struct {
	env      env.Environment
	player   agent.Player
	opponent agent.Opponent
	z        world.HiddenType

	config  Config
	hooks   Hooks
	log     logrus.FieldLogger
	epsilon float64
	episode int
}

// NewOnline creates and returns a new Online experiment. If log is nil,
// a logger which discards all output is used.
func NewOnline(c Config, e env.Environment, p agent.Player,
	o agent.Opponent, z world.HiddenType, log logrus.FieldLogger,
	h Hooks) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}
	if e == nil || p == nil || o == nil {
		return nil, fmt.Errorf("newOnline: environment, player, and " +
			"opponent are required")
	}

	ew, eh := e.Dims()
	pw, ph := p.Dims()
	if ew != pw || eh != ph {
		return nil, fmt.Errorf("newOnline: player acts on a %dx%d grid but "+
			"environment is %dx%d", pw, ph, ew, eh)
	}
	if world.IndexOf(o.Types(), z) < 0 {
		return nil, fmt.Errorf("newOnline: %w: %v", opponent.ErrUnknownType, z)
	}
	if world.IndexOf(p.Types(), z) < 0 {
		return nil, fmt.Errorf("newOnline: %w: %v", player.ErrUnknownType, z)
	}

	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Online{
		env:      e,
		player:   p,
		opponent: o,
		z:        z,
		config:   c,
		hooks:    h,
		log: log.WithFields(logrus.Fields{
			"run":  uuid.NewString(),
			"type": int(z),
		}),
		epsilon: c.Epsilon,
	}, nil
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.hooks.Trackers = append(o.hooks.Trackers, t)
}

// Epsilon returns the exploration rate of the most recent training
// episode
func (o *Online) Epsilon() float64 {
	return o.epsilon
}

// RunEpisode runs a single training episode and returns its return
func (o *Online) RunEpisode() (float64, error) {
	o.episode++
	o.epsilon *= o.config.EpsilonDecay

	step, err := o.env.Reset()
	if err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	o.track(step)
	o.frame()

	var records []agent.Record
	episodeReturn := 0.0
	for !step.Last() {
		obs := step.Observation
		records = append(records, agent.Record{Image: obs.Image, Type: o.z})

		pa, err := o.player.TakeAction(obs, o.z, o.epsilon)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
		oa, err := o.opponent.TakeAction(obs.State, o.z, o.epsilon)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}

		next, _, err := o.env.Step(pa, oa)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}

		if next.EndType() == ts.TerminalStateReached {
			err = o.player.LearnTerminal(next.Reward, obs.Key, pa, o.z)
		} else {
			err = o.player.Learn(next.Reward, o.config.Discount, obs.Key,
				next.Observation.Key, pa, o.z)
		}
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}

		episodeReturn += next.Reward
		o.track(next)
		o.frame()
		step = next
	}

	if err := o.player.UpdateData(records...); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.endRecording(fmt.Sprintf("episode_%d", o.episode)); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	for _, c := range o.hooks.Checkpointers {
		if err := c.Checkpoint(o.episode); err != nil {
			return 0, fmt.Errorf("runEpisode: could not checkpoint: %w", err)
		}
	}

	o.log.WithFields(logrus.Fields{
		"episode": o.episode,
		"epsilon": o.epsilon,
		"return":  episodeReturn,
		"steps":   step.Number,
	}).Debug("training episode finished")
	return episodeReturn, nil
}

// Run runs all training episodes of the experiment and returns their
// returns
func (o *Online) Run() ([]float64, error) {
	returns := make([]float64, 0, o.config.Episodes)
	for len(returns) < o.config.Episodes {
		r, err := o.RunEpisode()
		if err != nil {
			return returns, fmt.Errorf("run: %w", err)
		}
		returns = append(returns, r)
	}

	o.log.WithFields(logrus.Fields{
		"episodes": len(returns),
		"records":  o.player.Data(),
	}).Info("training finished")
	return returns, nil
}

// Evaluation summarizes a single evaluation episode
type Evaluation struct {
	Type     world.HiddenType
	Return   float64
	Steps    int
	Inferred []world.HiddenType // type inferred before each action
}

// Accuracy returns the fraction of actions for which the inferred type
// was the opponent's true type
func (e Evaluation) Accuracy() float64 {
	if len(e.Inferred) == 0 {
		return 0
	}
	correct := 0
	for _, z := range e.Inferred {
		if z == e.Type {
			correct++
		}
	}
	return float64(correct) / float64(len(e.Inferred))
}

// Evaluate runs a single evaluation episode. The player never sees the
// opponent's type and does not learn.
func (o *Online) Evaluate(name string) (Evaluation, error) {
	eval := Evaluation{Type: o.z}
	eps := o.config.EvalEpsilon

	step, err := o.env.Reset()
	if err != nil {
		return eval, fmt.Errorf("evaluate: %w", err)
	}
	o.track(step)
	o.frame()

	for !step.Last() {
		obs := step.Observation
		pa, z, err := o.player.InferAndAct(obs, eps)
		if err != nil {
			return eval, fmt.Errorf("evaluate: %w", err)
		}
		eval.Inferred = append(eval.Inferred, z)

		oa, err := o.opponent.TakeAction(obs.State, o.z, eps)
		if err != nil {
			return eval, fmt.Errorf("evaluate: %w", err)
		}

		step, _, err = o.env.Step(pa, oa)
		if err != nil {
			return eval, fmt.Errorf("evaluate: %w", err)
		}
		eval.Return += step.Reward
		o.track(step)
		o.frame()
	}
	eval.Steps = step.Number

	if err := o.endRecording(name); err != nil {
		return eval, fmt.Errorf("evaluate: %w", err)
	}

	o.log.WithFields(logrus.Fields{
		"return":   eval.Return,
		"steps":    eval.Steps,
		"accuracy": eval.Accuracy(),
	}).Info("evaluation episode finished")
	return eval, nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.hooks.Trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.hooks.Trackers {
		tr.Track(t)
	}
}

func (o *Online) frame() {
	if o.hooks.Recorder != nil {
		o.hooks.Recorder.Frame(o.env.Render())
	}
}

func (o *Online) endRecording(name string) error {
	if o.hooks.Recorder == nil {
		return nil
	}
	return o.hooks.Recorder.EndEpisode(name)
}

// Train runs c.Episodes training episodes of p against o with hidden
// type z and returns each episode's return
func Train(c Config, e env.Environment, p agent.Player, o agent.Opponent,
	z world.HiddenType, log logrus.FieldLogger, h Hooks) ([]float64, error) {
	exp, err := NewOnline(c, e, p, o, z, log, h)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	returns, err := exp.Run()
	if err != nil {
		return returns, fmt.Errorf("train: %w", err)
	}
	if err := exp.Save(); err != nil {
		return returns, fmt.Errorf("train: %w", err)
	}
	return returns, nil
}

// Evaluate runs c.EvalEpisodes evaluation episodes of p against o with
// hidden type z
func Evaluate(c Config, e env.Environment, p agent.Player,
	o agent.Opponent, z world.HiddenType, log logrus.FieldLogger,
	h Hooks) ([]Evaluation, error) {
	exp, err := NewOnline(c, e, p, o, z, log, h)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	evals := make([]Evaluation, 0, c.EvalEpisodes)
	for i := 1; i <= c.EvalEpisodes; i++ {
		eval, err := exp.Evaluate(fmt.Sprintf("episode_%d", i))
		if err != nil {
			return evals, fmt.Errorf("evaluate: %w", err)
		}
		evals = append(evals, eval)
	}
	if err := exp.Save(); err != nil {
		return evals, fmt.Errorf("evaluate: %w", err)
	}
	return evals, nil
}
