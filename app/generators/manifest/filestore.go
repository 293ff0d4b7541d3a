package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jrazmi/routegen/sdk/atomicfile"
)

// FileStore keeps the manifest as a JSON document inside the output root.
type FileStore struct {
	path string
	log  *slog.Logger
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileName overrides DefaultFileName.
func WithFileName(name string) FileOption {
	return func(s *FileStore) {
		if name != "" {
			s.path = filepath.Join(filepath.Dir(s.path), name)
		}
	}
}

// WithLogger sets the logger used to report degraded loads.
func WithLogger(log *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.log = log
	}
}

// NewFileStore returns a store for the manifest kept in dir.
func NewFileStore(dir string, opts ...FileOption) *FileStore {
	s := &FileStore{
		path: filepath.Join(dir, DefaultFileName),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the manifest file path.
func (s *FileStore) Location() string { return s.path }

// Load reads the manifest file, falling back to Default when it is absent or
// cannot be decoded.
func (s *FileStore) Load(ctx context.Context) Manifest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WarnContext(ctx, "manifest unreadable, starting empty", "path", s.path, "err", err)
		}
		return Default()
	}

	m, err := decode(data)
	if err != nil {
		s.log.WarnContext(ctx, "manifest corrupt, starting empty", "path", s.path, "err", err)
		return Default()
	}
	return m
}

// Save writes m as the manifest file, replacing any previous content.
func (s *FileStore) Save(ctx context.Context, m Manifest) error {
	data, err := encode(m)
	if err != nil {
		return &WriteError{Location: s.path, Err: err}
	}
	if err := atomicfile.WriteFile(s.path, data, 0o644); err != nil {
		return &WriteError{Location: s.path, Err: err}
	}
	return nil
}

func decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version == "" {
		m.Version = CurrentVersion
	}
	if m.GeneratedViews == nil {
		m.GeneratedViews = []GeneratedView{}
	}
	return m, nil
}

func encode(m Manifest) ([]byte, error) {
	if m.GeneratedViews == nil {
		m.GeneratedViews = []GeneratedView{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}
