package provenance

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// File is the on-disk layout written by Save.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes m to path as YAML.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads a file written by Save. A missing file returns nil, nil.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	switch {
	case os.IsNotExist(err):
		return nil, nil
	case err != nil:
		return nil, errors.WrapIO("read", path, err)
	}

	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return f, nil
}
