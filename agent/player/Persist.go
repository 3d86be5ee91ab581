package player

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/samuelfneumann/latentgrid/agent"
	"github.com/samuelfneumann/latentgrid/agent/classifier"
	"github.com/samuelfneumann/latentgrid/world"
)

// entry is a single value of a ValueTable
type entry struct {
	Key   Key
	Value float64
}

// snapshot is the gob encoded form of a Player
type snapshot struct {
	Config        Config
	Width, Height int
	ViewRadius    int
	Entries       []entry
	Records       []agent.Record

	ClassifierKind classifier.Kind
	Classifier     []byte
}

// Save saves the Player to a file: its configuration, action values,
// recorded data, and trained classifier if any
func (p *Player) Save(path string) error {
	snap := snapshot{
		Config:     p.config,
		Width:      p.width,
		Height:     p.height,
		ViewRadius: p.viewRadius,
		Entries:    make([]entry, 0, p.table.Len()),
		Records:    p.data,
	}
	for k, v := range p.table.values {
		snap.Entries = append(snap.Entries, entry{k, v})
	}

	// Sorting makes saved files reproducible
	sort.Slice(snap.Entries, func(i, j int) bool {
		a, b := snap.Entries[i].Key, snap.Entries[j].Key
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.State != b.State {
			return a.State < b.State
		}
		return a.Action < b.Action
	})

	if p.model != nil {
		data, err := p.model.MarshalBinary()
		if err != nil {
			return fmt.Errorf("save: could not encode classifier: %w", err)
		}
		snap.ClassifierKind = p.model.Kind()
		snap.Classifier = data
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		return fmt.Errorf("save: could not encode player: %w", err)
	}
	return file.Close()
}

// Load loads a Player saved with Save. Load returns an error if the
// Player was saved on a grid with different dimensions than
// width x height.
func Load(path string, width, height int) (*Player, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: could not open file: %w", err)
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("load: could not decode player: %w", err)
	}

	if snap.Width != width || snap.Height != height {
		return nil, fmt.Errorf("load: player saved on a %dx%d grid cannot "+
			"act on a %dx%d grid", snap.Width, snap.Height, width, height)
	}

	p, err := New(snap.Config, width, height, snap.ViewRadius)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	for _, e := range snap.Entries {
		if err := e.Key.Action.Validate(); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		if err := p.checkKey(e.Key.State); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		if err := p.checkType(e.Key.Type); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		p.table.set(e.Key, e.Value)
	}

	if err := p.UpdateData(snap.Records...); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	if len(snap.Classifier) > 0 {
		c := snap.Config.Classifier
		if c.Kind != snap.ClassifierKind {
			return nil, fmt.Errorf("load: classifier of kind %q saved with "+
				"configuration of kind %q", snap.ClassifierKind, c.Kind)
		}
		model, err := classifier.New(c, world.Len(p.viewRadius),
			len(p.config.Types))
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		if err := model.UnmarshalBinary(snap.Classifier); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		p.model = model
	}

	return p, nil
}
