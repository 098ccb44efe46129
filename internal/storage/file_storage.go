package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStorage writes downloaded streams into a destination directory.
type FileStorage struct {
	dir     string
	bufSize int
}

// NewFileStorage creates a FileStorage for the given directory with the given
// copy buffer size.
func NewFileStorage(dir string, bufSize int) *FileStorage {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	return &FileStorage{dir: dir, bufSize: bufSize}
}

// Dir returns the destination directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

// CreateFile creates a new file with the given filename in the storage directory.
func (s *FileStorage) CreateFile(filename string) (*os.File, error) {
	return os.Create(filepath.Join(s.dir, filename))
}

// FileExists checks whether a file exists in the storage directory.
func (s *FileStorage) FileExists(filename string) bool {
	_, err := os.Stat(filepath.Join(s.dir, filename))
	return err == nil
}

// GetFileSize returns the size of the file in bytes.
func (s *FileStorage) GetFileSize(filename string) (int64, error) {
	info, err := os.Stat(filepath.Join(s.dir, filename))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// SaveStream copies src into filename, invoking onChunk with the running byte
// count after every buffer write. Returns the full file path and bytes
// written. On failure the partial file is left in place.
func (s *FileStorage) SaveStream(ctx context.Context, src io.Reader, filename string, onChunk func(written int64)) (string, int64, error) {
	path := filepath.Join(s.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	total, err := s.copyWithContext(ctx, file, src, onChunk)
	if err != nil {
		return path, total, fmt.Errorf("copy data: %w", err)
	}

	return path, total, nil
}

func (s *FileStorage) copyWithContext(ctx context.Context, dst *os.File, src io.Reader, onChunk func(written int64)) (int64, error) {
	buf := make([]byte, s.bufSize)
	var total int64

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
			nr, err := src.Read(buf)
			if nr > 0 {
				nw, werr := dst.Write(buf[0:nr])
				if nw > 0 {
					total += int64(nw)
					if onChunk != nil {
						onChunk(total)
					}
				}
				if werr != nil {
					return total, werr
				}
				if nr != nw {
					return total, io.ErrShortWrite
				}
			}
			if err != nil {
				if err == io.EOF {
					return total, nil
				}
				return total, err
			}
		}
	}
}
