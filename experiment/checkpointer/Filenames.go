package checkpointer

import (
	"fmt"
	"time"
)

// FilenameEnumerator returns a function which returns filenames with an
// increasing integer suffix, starting at start+1:
//
//	name1.ext, name2.ext, ...
//
// extension should include the leading dot.
func FilenameEnumerator(start int, filename, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%s%d%s", filename, i, extension)
	}
}

// FileTimer returns a function which returns filenames suffixed with the
// number of nanoseconds since January 1, 1970
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%s-%d%s", filename, time.Now().UnixNano(),
			extension)
	}
}
