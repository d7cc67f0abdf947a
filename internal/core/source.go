package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// BytesSource is an import file held in memory.
type BytesSource struct {
	FileName string
	MIMEType string
	Data     []byte
}

func (s BytesSource) Name() string        { return s.FileName }
func (s BytesSource) ContentType() string { return s.MIMEType }

func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// FileSource reads a file the caller owns. It is never removed.
type FileSource struct {
	Path     string
	MIMEType string
}

func (s FileSource) Name() string        { return filepath.Base(s.Path) }
func (s FileSource) ContentType() string { return s.MIMEType }

func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// StagedFile is an upload copied to temporary storage. Release removes it;
// the importer calls Release when the import finishes however it ends.
type StagedFile struct {
	path     string
	name     string
	mimeType string
	size     int64

	once       sync.Once
	releaseErr error
}

// StageUpload copies r into a uniquely named file under dir. At most maxSize
// bytes are accepted; a larger upload is removed and ErrFileTooLarge is
// returned. maxSize <= 0 means no limit.
func StageUpload(dir, name, contentType string, r io.Reader, maxSize int64) (*StagedFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	path := filepath.Join(dir, "import-"+uuid.NewString()+filepath.Ext(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && maxSize > 0 && n > maxSize {
		err = fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	return &StagedFile{
		path:     path,
		name:     filepath.Base(name),
		mimeType: contentType,
		size:     n,
	}, nil
}

func (s *StagedFile) Name() string        { return s.name }
func (s *StagedFile) ContentType() string { return s.mimeType }

// Path is the location of the staged copy.
func (s *StagedFile) Path() string { return s.path }

// Size is the number of bytes staged.
func (s *StagedFile) Size() int64 { return s.size }

func (s *StagedFile) Open() (io.ReadCloser, error) {
	return os.Open(s.path)
}

// Release removes the staged file. It is safe to call more than once.
func (s *StagedFile) Release() error {
	s.once.Do(func() {
		err := os.Remove(s.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			s.releaseErr = err
		}
	})
	return s.releaseErr
}
