package checkpointer

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	object   Saver // Object to save

	// filename returns the string filename of the file to save the object
	// in.
	//
	// If each saved object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// file1.bin, file2.bin, ..., fileK.bin), then simply use the
	// static function FilenameEnumerator, which will return a function
	// that will enumerate filenames.
	//
	// Otherwise, if each saved object should be saved in a separate
	// file, but the filename does not matter, use the static function
	// FileTimer to generate the required naming function. For example:
	//
	// n := NewNEpisode(10, object, FileTimer("filename", ".bin"))
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints every n episodes.
// Non-positive n disables checkpointing.
func NewNEpisode(n int, object Saver, filename func() string) Checkpointer {
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the Checkpointer's tracked object if episode is a
// multiple of the interval
func (n *nEpisode) Checkpoint(episode int) error {
	if n.interval > 0 && episode > 0 && episode%n.interval == 0 {
		return n.object.Save(n.filename())
	}
	return nil
}
