// Package storage defines the note file-system abstraction.
package storage

// Provider is the interface for note file operations. All paths are
// relative to the repository root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Append appends content to the file at path, creating the file and
	// its parent directories when absent.
	Append(path string, content []byte) error
}
