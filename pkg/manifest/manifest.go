package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// DefaultName is the manifest file name at the module root.
const DefaultName = ".collectiongen.yaml"

// Entry records one generated file.
type Entry struct {
	Package string `yaml:"package" json:"package"`
	File    string `yaml:"file" json:"file"` // slash-separated, relative to the module root
	SHA256  string `yaml:"sha256" json:"sha256"`
}

// Manifest tracks the files written by previous runs so that output whose
// collections disappeared can be removed.
type Manifest struct {
	Version string  `yaml:"version,omitempty" json:"version,omitempty"`
	Files   []Entry `yaml:"files" json:"files"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal manifest")
	}

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
// Entries are sorted by file so that the manifest diffs cleanly.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}

	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].File < m.Files[j].File })
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write manifest")
	}

	return nil
}

// Record adds e, replacing any entry for the same file.
func (m *Manifest) Record(e Entry) {
	for i := range m.Files {
		if m.Files[i].File == e.File {
			m.Files[i] = e
			return
		}
	}
	m.Files = append(m.Files, e)
}

// Remove drops the entry for file, if present.
func (m *Manifest) Remove(file string) {
	for i := range m.Files {
		if m.Files[i].File == file {
			m.Files = append(m.Files[:i], m.Files[i+1:]...)
			return
		}
	}
}

// Lookup returns the entry for file.
func (m *Manifest) Lookup(file string) (Entry, bool) {
	for _, e := range m.Files {
		if e.File == file {
			return e, true
		}
	}
	return Entry{}, false
}

// Unmodified reports whether content is exactly what was recorded for file.
func (m *Manifest) Unmodified(file string, content []byte) bool {
	e, ok := m.Lookup(file)
	return ok && e.SHA256 == Hash(content)
}

// Hash returns the hex sha256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
