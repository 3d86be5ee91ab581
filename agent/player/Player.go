// Package player implements the tabular player agent. The player learns
// separate action values for each hidden type of the opponent while the
// type is known, and records its partial image observations so that a
// classifier can later infer the type when it is not.
package player

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/latentgrid/agent"
	"github.com/samuelfneumann/latentgrid/agent/classifier"
	"github.com/samuelfneumann/latentgrid/world"
)

var _ agent.Player = (*Player)(nil)

var (
	// ErrNoClassifier is returned when the player is asked to infer the
	// opponent's type before a classifier has been trained
	ErrNoClassifier = errors.New("no trained classifier")

	// ErrUnknownType is returned when a hidden type is not one of the
	// player's configured types
	ErrUnknownType = errors.New("unknown hidden type")
)

// Config represents a configuration of a Player
type Config struct {
	LearningRate float64
	Types        []world.HiddenType
	Seed         uint64
	Classifier   classifier.Config
}

// DefaultConfig returns the default Player configuration, with the two
// hidden types of the default opponent
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.1,
		Types:        []world.HiddenType{0, 1},
		Classifier:   classifier.DefaultConfig(),
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("validate: learning rate must be in (0, 1], got %v",
			c.LearningRate)
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("validate: no hidden types given")
	}
	for i, z := range c.Types {
		if world.IndexOf(c.Types[:i], z) >= 0 {
			return fmt.Errorf("validate: duplicate hidden type %v", z)
		}
	}
	return c.Classifier.Validate()
}

// Player implements the tabular player agent
type Player struct {
	config        Config
	width, height int
	viewRadius    int

	table *ValueTable
	data  []agent.Record
	model classifier.Classifier // nil until TrainClassifier succeeds
	rng   rand.Source
}

// New creates a new Player for a width x height grid whose image
// observations have the given view radius
func New(c Config, width, height, viewRadius int) (*Player, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("new: invalid dimensions %dx%d", width, height)
	}
	if viewRadius < 0 {
		return nil, fmt.Errorf("new: view radius cannot be negative, got %d",
			viewRadius)
	}

	types := make([]world.HiddenType, len(c.Types))
	copy(types, c.Types)
	c.Types = types

	return &Player{
		config:     c,
		width:      width,
		height:     height,
		viewRadius: viewRadius,
		table:      NewValueTable(),
		rng:        rand.NewSource(c.Seed),
	}, nil
}

// TakeAction selects an ε-greedy action with respect to the action
// values for hidden type z. The greedy action is the lowest action with
// maximal value.
func (p *Player) TakeAction(obs world.Observation, z world.HiddenType,
	epsilon float64) (world.Action, error) {
	if err := p.checkType(z); err != nil {
		return 0, fmt.Errorf("takeAction: %w", err)
	}
	if epsilon < 0 || epsilon > 1 {
		return 0, fmt.Errorf("takeAction: epsilon must be in [0, 1], got %v",
			epsilon)
	}
	if err := p.checkKey(obs.Key); err != nil {
		return 0, fmt.Errorf("takeAction: %w", err)
	}

	greedy, _ := p.table.Max(obs.Key, z)

	// Each action is chosen at random with probability ε/|A|, and the
	// greedy action additionally with probability 1-ε
	probs := make([]float64, world.NumActions)
	for i := range probs {
		probs[i] = epsilon / float64(world.NumActions)
	}
	probs[greedy] += 1.0 - epsilon

	dist := distuv.NewCategorical(probs, p.rng)
	return world.Action(int(dist.Rand())), nil
}

// InferType predicts the hidden type of the opponent from the image of
// obs
func (p *Player) InferType(obs world.Observation) (world.HiddenType, error) {
	if p.model == nil || !p.model.Fitted() {
		return 0, fmt.Errorf("inferType: %w", ErrNoClassifier)
	}
	if err := p.checkImage(obs.Image); err != nil {
		return 0, fmt.Errorf("inferType: %w", err)
	}

	label, err := p.model.Predict(obs.Image.Flatten())
	if err != nil {
		return 0, fmt.Errorf("inferType: %w", err)
	}
	return p.config.Types[label], nil
}

// InferAndAct infers the hidden type of the opponent from obs and then
// selects an ε-greedy action for the inferred type
func (p *Player) InferAndAct(obs world.Observation,
	epsilon float64) (world.Action, world.HiddenType, error) {
	z, err := p.InferType(obs)
	if err != nil {
		return 0, 0, fmt.Errorf("inferAndAct: %w", err)
	}

	a, err := p.TakeAction(obs, z, epsilon)
	if err != nil {
		return 0, 0, fmt.Errorf("inferAndAct: %w", err)
	}
	return a, z, nil
}

// Learn performs the Q-learning update
//
//	Q(old, a, z) ← Q(old, a, z) + α[r + γ max_a' Q(new, a', z) - Q(old, a, z)]
//
// Learn is the only way values in the Player's table change.
func (p *Player) Learn(reward, discount float64, old, next world.StateKey,
	a world.Action, z world.HiddenType) error {
	if err := p.checkKey(next); err != nil {
		return fmt.Errorf("learn: %w", err)
	}
	if err := p.update(reward, discount, old, next, a, z, false); err != nil {
		return fmt.Errorf("learn: %w", err)
	}
	return nil
}

// LearnTerminal performs the Q-learning update for a transition into a
// terminal state, whose value is zero
func (p *Player) LearnTerminal(reward float64, old world.StateKey,
	a world.Action, z world.HiddenType) error {
	if err := p.update(reward, 0, old, 0, a, z, true); err != nil {
		return fmt.Errorf("learnTerminal: %w", err)
	}
	return nil
}

func (p *Player) update(reward, discount float64, old, next world.StateKey,
	a world.Action, z world.HiddenType, terminal bool) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := p.checkType(z); err != nil {
		return err
	}
	if err := p.checkKey(old); err != nil {
		return err
	}
	if discount < 0 || discount > 1 {
		return fmt.Errorf("discount must be in [0, 1], got %v", discount)
	}

	target := reward
	if !terminal {
		_, nextValue := p.table.Max(next, z)
		target += discount * nextValue
	}

	q := p.table.Get(old, a, z)
	p.table.set(Key{old, a, z}, q+p.config.LearningRate*(target-q))
	return nil
}

// UpdateData appends records to the data the classifier is trained on.
// If any record is invalid no records are added.
func (p *Player) UpdateData(records ...agent.Record) error {
	for i, r := range records {
		if err := p.checkType(r.Type); err != nil {
			return fmt.Errorf("updateData: record %d: %w", i, err)
		}
		if err := p.checkImage(r.Image); err != nil {
			return fmt.Errorf("updateData: record %d: %w", i, err)
		}
	}
	p.data = append(p.data, records...)
	return nil
}

// TrainClassifier fits a new classifier on all recorded data. The new
// classifier replaces the old one only if fitting succeeds.
func (p *Player) TrainClassifier() error {
	labels := len(p.config.Types)
	data := make(classifier.Dataset, len(p.data))
	for i, r := range p.data {
		data[i] = classifier.Example{
			Features: r.Image.Flatten(),
			Label:    world.IndexOf(p.config.Types, r.Type),
		}
	}
	if err := data.Check(labels); err != nil {
		return fmt.Errorf("trainClassifier: %w", err)
	}

	model, err := classifier.New(p.config.Classifier,
		world.Len(p.viewRadius), labels)
	if err != nil {
		return fmt.Errorf("trainClassifier: %w", err)
	}
	if err := model.Fit(data); err != nil {
		return fmt.Errorf("trainClassifier: %w", err)
	}

	p.model = model
	return nil
}

// Table returns the Player's action values. The returned table cannot be
// modified.
func (p *Player) Table() *ValueTable {
	return p.table
}

// Data returns the number of records collected for the classifier
func (p *Player) Data() int {
	return len(p.data)
}

// Records returns a copy of the records collected for the classifier
func (p *Player) Records() []agent.Record {
	out := make([]agent.Record, len(p.data))
	copy(out, p.data)
	return out
}

// Classifier returns the Player's trained classifier, or nil if none has
// been trained
func (p *Player) Classifier() classifier.Classifier {
	return p.model
}

// Config returns the configuration of the Player
func (p *Player) Config() Config {
	return p.config
}

// Types returns the hidden types the Player can act against
func (p *Player) Types() []world.HiddenType {
	types := make([]world.HiddenType, len(p.config.Types))
	copy(types, p.config.Types)
	return types
}

// Dims returns the dimensions of the grid the Player acts in
func (p *Player) Dims() (int, int) {
	return p.width, p.height
}

func (p *Player) String() string {
	return fmt.Sprintf("Player | Types: %v  |  α: %v  |  Records: %d  |  %v",
		p.config.Types, p.config.LearningRate, p.Data(), p.table)
}

func (p *Player) checkType(z world.HiddenType) error {
	if world.IndexOf(p.config.Types, z) < 0 {
		return fmt.Errorf("%w: %v not in %v", ErrUnknownType, z,
			p.config.Types)
	}
	return nil
}

func (p *Player) checkKey(k world.StateKey) error {
	if k >= world.StateKey(world.NumStates(p.width, p.height)) {
		return fmt.Errorf("%w: state key %d on a %dx%d grid",
			world.ErrOutOfBounds, k, p.width, p.height)
	}
	return nil
}

func (p *Player) checkImage(im world.Image) error {
	if im.Size != 2*p.viewRadius+1 || len(im.Pix) != world.Len(p.viewRadius) {
		return fmt.Errorf("image of size %d with %d pixels, expected size "+
			"%d", im.Size, len(im.Pix), 2*p.viewRadius+1)
	}
	return nil
}
