// Command latentgrid trains a tabular player against an opponent whose
// behaviour depends on a hidden type, then evaluates the player with the
// type hidden and inferred from images by a classifier.
//
// Flags not given on the command line are read from LATENTGRID_*
// environment variables, which may be set in a .env file:
//
//	LATENTGRID_OUT=runs/latest
//	LATENTGRID_LOG_LEVEL=debug
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/latentgrid/agent/classifier"
	"github.com/samuelfneumann/latentgrid/agent/opponent"
	"github.com/samuelfneumann/latentgrid/agent/player"
	"github.com/samuelfneumann/latentgrid/environment/envconfig"
	"github.com/samuelfneumann/latentgrid/environment/gridworld"
	"github.com/samuelfneumann/latentgrid/experiment"
	"github.com/samuelfneumann/latentgrid/experiment/checkpointer"
	"github.com/samuelfneumann/latentgrid/experiment/plot"
	"github.com/samuelfneumann/latentgrid/experiment/recorder"
	"github.com/samuelfneumann/latentgrid/experiment/tracker"
	ts "github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/utils/progressbar"
	"github.com/samuelfneumann/latentgrid/world"
)

// envPrefix prefixes the environment variables read for unset flags
const envPrefix = "LATENTGRID_"

type options struct {
	mode       string
	width      int
	height     int
	horizon    int
	episodes   int
	types      string
	model      string
	out        string
	seed       uint64
	classifier string
	config     string
	logLevel   string
	envFile    string
	gif        bool
	colour     bool
	progress   bool
	checkpoint int
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("latentgrid", flag.ContinueOnError)
	o := options{}
	fs.StringVar(&o.mode, "mode", "both", "one of train, test, or both")
	fs.IntVar(&o.width, "width", 5, "grid width")
	fs.IntVar(&o.height, "height", 5, "grid height")
	fs.IntVar(&o.horizon, "horizon", 100, "ticks per episode")
	fs.IntVar(&o.episodes, "episodes", 250, "training episodes per hidden type")
	fs.StringVar(&o.types, "types", "0,1", "comma separated hidden types")
	fs.StringVar(&o.model, "model", "models/player.bin", "player save file")
	fs.StringVar(&o.out, "out", "output", "directory for plots, GIFs, and data")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed")
	fs.StringVar(&o.classifier, "classifier", string(classifier.SoftmaxKind),
		"classifier kind, Softmax or MLP")
	fs.StringVar(&o.config, "config", "", "optional JSON environment config")
	fs.StringVar(&o.logLevel, "log-level", "info", "logging level")
	fs.StringVar(&o.envFile, "env", ".env", "optional file of environment variables")
	fs.BoolVar(&o.gif, "gif", false, "record every episode as a GIF")
	fs.BoolVar(&o.colour, "colour", true, "colour the final board")
	fs.BoolVar(&o.progress, "progress", false, "show a training progress bar")
	fs.IntVar(&o.checkpoint, "checkpoint", 0,
		"save the player every n training episodes, 0 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := applyEnv(fs, o.envFile, set); err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	log.SetLevel(level)

	ec, err := envConfig(o, set)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	types, err := parseTypes(o.types)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	defaults := opponent.DefaultBehaviors()
	behaviors := make(opponent.Behaviors, len(types))
	for _, z := range types {
		b, ok := defaults[z]
		if !ok {
			return fmt.Errorf("run: %w: %v", opponent.ErrUnknownType, z)
		}
		behaviors[z] = b
	}
	opp, err := opponent.New(ec.Width, ec.Height, behaviors, o.seed)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	xc := experiment.DefaultConfig()
	xc.Episodes = o.episodes

	log.WithFields(logrus.Fields{
		"mode":       o.mode,
		"grid":       fmt.Sprintf("%dx%d", ec.Width, ec.Height),
		"horizon":    ec.Horizon,
		"types":      types,
		"classifier": o.classifier,
		"seed":       o.seed,
	}).Info("starting")

	switch o.mode {
	case "train":
		return train(o, ec, xc, opp, types, log)

	case "test":
		return test(o, ec, xc, opp, types, log, stdout)

	case "both":
		if err := train(o, ec, xc, opp, types, log); err != nil {
			return err
		}
		return test(o, ec, xc, opp, types, log, stdout)
	}
	return fmt.Errorf("run: no such mode %q", o.mode)
}

func train(o options, ec envconfig.Config, xc experiment.Config,
	opp *opponent.Opponent, types []world.HiddenType,
	log logrus.FieldLogger) error {
	pc := player.DefaultConfig()
	pc.Types = types
	pc.Seed = o.seed
	switch kind := classifier.Kind(o.classifier); kind {
	case classifier.MLPKind:
		pc.Classifier = classifier.DefaultMLPConfig()
	default:
		pc.Classifier = classifier.DefaultConfig()
		pc.Classifier.Kind = kind
	}
	pc.Classifier.Seed = o.seed

	p, err := player.New(pc, ec.Width, ec.Height, ec.ViewRadius)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	for _, z := range types {
		e, _, err := ec.Create(z, gridworld.DefaultTasks(), o.seed+uint64(z))
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}

		dir := filepath.Join(o.out, "data", "training", strconv.Itoa(int(z)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("train: %w", err)
		}
		h, err := hooks(o, filepath.Join("training", strconv.Itoa(int(z))), dir)
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
		if o.checkpoint > 0 {
			name := filepath.Join(o.out, "checkpoints",
				fmt.Sprintf("player_z%d_", int(z)))
			if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
				return fmt.Errorf("train: %w", err)
			}
			h.Checkpointers = append(h.Checkpointers, checkpointer.NewNEpisode(
				o.checkpoint, p, checkpointer.FilenameEnumerator(0, name, ".bin")))
		}
		if o.progress {
			h.Trackers = append(h.Trackers, newProgress(xc.Episodes))
		}

		returns, err := experiment.Train(xc, e, p, opp, z, log, h)
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}

		log.WithFields(logrus.Fields{
			"type":        int(z),
			"mean return": stat.Mean(returns, nil),
		}).Info("trained")

		path := filepath.Join(o.out, "plots", strconv.Itoa(int(z))+".html")
		err = plot.Returns(path, fmt.Sprintf("Training returns, %v", z),
			plot.Series{Name: z.String(), Values: returns})
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}

	if err := p.TrainClassifier(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	log.WithField("records", p.Data()).Info("classifier trained")

	if err := os.MkdirAll(filepath.Dir(o.model), 0o755); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := p.Save(o.model); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	log.WithField("path", o.model).Info("player saved")
	return nil
}

func test(o options, ec envconfig.Config, xc experiment.Config,
	opp *opponent.Opponent, types []world.HiddenType, log logrus.FieldLogger,
	stdout io.Writer) error {
	p, err := player.Load(o.model, ec.Width, ec.Height)
	if err != nil {
		return fmt.Errorf("test: %w", err)
	}

	for _, z := range types {
		e, _, err := ec.Create(z, gridworld.DefaultTasks(), o.seed+uint64(z))
		if err != nil {
			return fmt.Errorf("test: %w", err)
		}

		dir := filepath.Join(o.out, "data", "testing", strconv.Itoa(int(z)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("test: %w", err)
		}
		h, err := hooks(o, filepath.Join("testing", strconv.Itoa(int(z))), dir)
		if err != nil {
			return fmt.Errorf("test: %w", err)
		}

		evals, err := experiment.Evaluate(xc, e, p, opp, z, log, h)
		if err != nil {
			return fmt.Errorf("test: %w", err)
		}

		for _, eval := range evals {
			log.WithFields(logrus.Fields{
				"type":     int(z),
				"return":   eval.Return,
				"accuracy": eval.Accuracy(),
			}).Info("tested")
		}
		fmt.Fprintf(stdout, "final board against %v\n%s\n", z, e.Text(o.colour))
	}
	return nil
}

// hooks returns the trackers and recorder of an experiment whose GIFs
// are written to <out>/episodes/<name> and data to dir
func hooks(o options, name, dir string) (experiment.Hooks, error) {
	h := experiment.Hooks{
		Trackers: []tracker.Tracker{
			tracker.NewReturn(filepath.Join(dir, "returns.bin")),
			tracker.NewEpisodeLength(filepath.Join(dir, "lengths.bin")),
		},
	}
	if o.gif {
		g, err := recorder.NewGIF(filepath.Join(o.out, "episodes", name),
			recorder.DefaultDelay)
		if err != nil {
			return h, err
		}
		h.Recorder = g
	}
	return h, nil
}

// envConfig returns the environment configuration, read from the config
// file if given, with explicitly set flags taking precedence
func envConfig(o options, set map[string]bool) (envconfig.Config, error) {
	c := envconfig.Default()
	if o.config != "" {
		var err error
		if c, err = envconfig.Load(o.config); err != nil {
			return c, err
		}
	}

	if o.config == "" || set["width"] {
		c.Width = o.width
	}
	if o.config == "" || set["height"] {
		c.Height = o.height
	}
	if o.config == "" || set["horizon"] {
		c.Horizon = o.horizon
	}
	return c, c.Validate()
}

// parseTypes parses a comma separated list of hidden types
func parseTypes(s string) ([]world.HiddenType, error) {
	var types []world.HiddenType
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		z, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parseTypes: %w", err)
		}
		if world.IndexOf(types, world.HiddenType(z)) >= 0 {
			return nil, fmt.Errorf("parseTypes: duplicate type %d", z)
		}
		types = append(types, world.HiddenType(z))
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("parseTypes: no hidden types in %q", s)
	}
	return types, nil
}

// applyEnv loads envFile if it exists and sets every flag not in set
// from its LATENTGRID_ environment variable, if any
func applyEnv(fs *flag.FlagSet, envFile string, set map[string]bool) error {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("applyEnv: %w", err)
		}
	}

	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if set[f.Name] || err != nil {
			return
		}
		name := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(name); ok {
			if e := fs.Set(f.Name, v); e != nil {
				err = fmt.Errorf("applyEnv: %v: %w", name, e)
			}
		}
	})
	return err
}

// progress is a Tracker which advances a progress bar at the end of
// every episode
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(episodes int) *progress {
	return &progress{bar: progressbar.New(os.Stderr, 40, episodes)}
}

func (p *progress) Track(t ts.TimeStep) {
	if t.Last() {
		p.bar.Increment()
		p.bar.Display()
	}
}

func (p *progress) Save() error {
	p.bar.Done()
	return nil
}
