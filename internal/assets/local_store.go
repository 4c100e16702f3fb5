package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalStore keeps assets in a directory served by the static file handler.
type LocalStore struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
}

// NewLocalStore creates the upload directory if needed.
// urlPrefix is the public path the directory is mounted on, e.g. "/uploads".
func NewLocalStore(fs afero.Fs, dir, urlPrefix string) (*LocalStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{
		fs:        fs,
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Write stores data at dir/name.
func (s *LocalStore) Write(_ context.Context, name, _ string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Delete removes dir/name; a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	if !validName(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	err := s.fs.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present.
func (s *LocalStore) Exists(name string) (bool, error) {
	return afero.Exists(s.fs, filepath.Join(s.dir, name))
}

// URL returns "<prefix>/<name>".
func (s *LocalStore) URL(name string) string {
	return path.Join(s.urlPrefix, name)
}

// Name accepts only refs under the store's URL prefix.
func (s *LocalStore) Name(ref string) (string, bool) {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || !validName(name) {
		return "", false
	}
	return name, true
}

// validName rejects anything that could escape the upload directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
