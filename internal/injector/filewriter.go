package injector

import "os"

// FileWriter abstracts filesystem operations on the local tree.
type FileWriter interface {
	// Write creates or replaces the file at path with data and mode perm,
	// creating parent directories as needed. A zero perm keeps the mode of
	// an existing file, or 0644 for a new one. Readers never observe a
	// partially written file.
	Write(path string, data []byte, perm os.FileMode) error

	// Remove deletes a file. A missing file is not an error.
	Remove(path string) error

	// Exists reports whether something exists at path.
	Exists(path string) bool
}
