// Package file stores tree specs as YAML or JSON files in a directory and watches
// them for changes.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
)

// Store implements ports.TreeStore and ports.Watchable on a directory.
// Save writes <id>.yaml; Load also finds <id>.yml and <id>.json.
type Store struct {
	BasePath string
	logger   *slog.Logger
}

type Option func(*Store)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store rooted at basePath, ".canopy/trees" when empty.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".canopy", "trees")
	}
	s := &Store{BasePath: basePath, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) validID(id string) error {
	if id == "" || id != filepath.Base(id) || idOf(id+".yaml") == "" {
		return fmt.Errorf("invalid tree id %q", id)
	}
	return nil
}

// Save writes spec to <id>.yaml atomically, removing any .yml or .json twin.
func (s *Store) Save(_ context.Context, id string, spec *domain.TreeSpec) error {
	if err := s.validID(id); err != nil {
		return err
	}
	if err := WriteSpec(filepath.Join(s.BasePath, id+".yaml"), spec); err != nil {
		return err
	}
	for _, ext := range treeExts[1:] {
		_ = os.Remove(filepath.Join(s.BasePath, id+ext))
	}
	return nil
}

// Load reads the first of <id>.yaml, <id>.yml and <id>.json that exists.
func (s *Store) Load(_ context.Context, id string) (*domain.TreeSpec, error) {
	if err := s.validID(id); err != nil {
		return nil, err
	}
	for _, ext := range treeExts {
		spec, err := ReadSpec(filepath.Join(s.BasePath, id+ext))
		if errors.Is(err, domain.ErrTreeNotFound) {
			continue
		}
		return spec, err
	}
	return nil, domain.ErrTreeNotFound
}

// Delete removes every file of id.
func (s *Store) Delete(_ context.Context, id string) error {
	if err := s.validID(id); err != nil {
		return err
	}
	for _, ext := range treeExts {
		err := os.Remove(filepath.Join(s.BasePath, id+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete tree file: %w", err)
		}
	}
	return nil
}

// List returns the ids of the tree files in the directory, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id := idOf(entry.Name()); id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Watch reports the id of every tree file created, written, removed or renamed
// in the directory. The directory is created if needed.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure tree directory: %w", err)
	}
	return watchDir(ctx, s.BasePath, s.logger, idOf)
}

// WatchFile reports changes to the single tree file at path. The containing
// directory is watched so editors that save by rename are still seen. Every
// notification carries the file's tree id.
func WatchFile(ctx context.Context, path string, logger *slog.Logger) (<-chan string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(abs)
	return watchDir(ctx, filepath.Dir(abs), logger, func(name string) string {
		if name != base {
			return ""
		}
		return idOf(name)
	})
}

func watchDir(ctx context.Context, dir string, logger *slog.Logger, match func(name string) string) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
					!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				id := match(filepath.Base(event.Name))
				if id == "" {
					continue
				}
				logger.Debug("tree file changed", "id", id, "op", event.Op.String())
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("tree watcher error", "error", err)
			}
		}
	}()
	return out, nil
}
