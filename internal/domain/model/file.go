package model

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is a named, re-openable byte source used for multipart uploads.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// LocalFile returns a File reading from path on disk.
func LocalFile(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesFile returns a File serving data from memory.
func BytesFile(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
