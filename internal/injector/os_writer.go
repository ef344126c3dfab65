package injector

import (
	"errors"
	"io/fs"
	"os"
)

// OSFileWriter implements FileWriter using the real filesystem.
type OSFileWriter struct{}

var _ FileWriter = (*OSFileWriter)(nil)

func (w *OSFileWriter) Write(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, data, perm)
}

func (w *OSFileWriter) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (w *OSFileWriter) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
