// Package checkpointer implements checkpointing of agents during an
// experiment
package checkpointer

// Saver is an object that can be saved to a file
type Saver interface {
	Save(path string) error
}

// Checkpointer checkpoints/saves objects based on the number of
// finished episodes
type Checkpointer interface {
	Checkpoint(episode int) error
}
