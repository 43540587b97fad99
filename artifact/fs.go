package artifact

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FSStore persists artifacts on a filesystem, one file per artifact under
// <base>/<taskID>/<name>. It is backed by afero so tests can run against an
// in-memory filesystem while production uses the OS one.
//
// Artifact names are sanitized to their base path component, so a name like
// "../../etc/passwd" cannot escape the store's base directory.
type FSStore struct {
	fs   afero.Fs
	base string
}

// NewFSStore creates a store rooted at base on the OS filesystem.
func NewFSStore(base string) *FSStore {
	return NewFSStoreWithFs(afero.NewOsFs(), base)
}

// NewFSStoreWithFs creates a store on an explicit afero filesystem.
func NewFSStoreWithFs(fs afero.Fs, base string) *FSStore {
	return &FSStore{fs: fs, base: base}
}

func (s *FSStore) taskDir(taskID string) string {
	return filepath.Join(s.base, filepath.Base(strings.TrimSpace(taskID)))
}

func (s *FSStore) path(taskID, name string) string {
	return filepath.Join(s.taskDir(taskID), filepath.Base(strings.TrimSpace(name)))
}

// Save writes the artifact bytes, creating the task directory as needed.
func (s *FSStore) Save(taskID, name string, data []byte) error {
	if err := s.fs.MkdirAll(s.taskDir(taskID), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path(taskID, name), data, 0o644)
}

// Get reads the artifact bytes or returns ErrNotFound.
func (s *FSStore) Get(taskID, name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(taskID, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the artifact names stored for the task, sorted.
func (s *FSStore) List(taskID string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.taskDir(taskID))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the artifact file or returns ErrNotFound.
func (s *FSStore) Delete(taskID, name string) error {
	path := s.path(taskID, name)
	if exists, err := afero.Exists(s.fs, path); err != nil {
		return err
	} else if !exists {
		return ErrNotFound
	}
	return s.fs.Remove(path)
}
