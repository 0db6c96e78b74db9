package initialize

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/cmmoran/collectiongen/internal/generator"
)

// ConfigName is the configuration file read from the working directory when
// no --config is given.
const ConfigName = ".collectiongen.config.yaml"

// ErrExists is returned when the configuration file is already present.
var ErrExists = errors.New("configuration file already exists")

type logConfig struct {
	Level string `yaml:"level"`
}

type commonConfig struct {
	Log logConfig `yaml:"log"`
}

type config struct {
	Common   commonConfig       `yaml:"common"`
	Generate *generator.Options `yaml:"generate"`
}

// Generate writes a starter configuration holding opts into dir and returns
// its path. An existing file is only replaced when force is set.
func Generate(dir string, opts *generator.Options, force bool) (string, error) {
	path := filepath.Join(dir, ConfigName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, errors.WithHint(errors.Wrap(ErrExists, path), "pass --force to overwrite it")
	}

	o := *opts
	// Machine specific values stay out of the shared file.
	o.Dir = ""
	o.Workers = 0
	o.DryRun = false
	data, err := yaml.Marshal(config{
		Common:   commonConfig{Log: logConfig{Level: "info"}},
		Generate: &o,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal configuration")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
