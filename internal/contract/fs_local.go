package contract

import "os"

// OSFileSystem implements the FileSystem interface on the local disk.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{} // Compile-time check

// Exists reports whether anything is present at path.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile returns the raw bytes of the file at path.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
