package generator

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cmmoran/collectiongen/internal/emit"
	"github.com/cmmoran/collectiongen/pkg/manifest"
)

// Options control loading, generation and writing.
//
// Dir         – directory the load runs in; its module is the main module
// Patterns    – package patterns, "./..." when empty
// Tags        – build tags applied while loading
// Output      – name of the generated file in every package
// Manifest    – manifest path relative to the module root, "" disables it
// Workers     – maximum number of packages processed and files written at once
// DryRun      – render without touching the file system
// FailOnError – treat error diagnostics as a failed run
type Options struct {
	Dir         string   `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty" mapstructure:"dir,omitempty"`
	Patterns    []string `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty" mapstructure:"patterns,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" mapstructure:"tags,omitempty"`
	Output      string   `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty" mapstructure:"output,omitempty"`
	Manifest    string   `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty" mapstructure:"manifest,omitempty"`
	Workers     int      `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty" mapstructure:"workers,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty" toml:"dry_run,omitempty" mapstructure:"dry_run,omitempty"`
	FailOnError bool     `json:"fail_on_error,omitempty" yaml:"fail_on_error,omitempty" toml:"fail_on_error,omitempty" mapstructure:"fail_on_error,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		Dir:         ".",
		Patterns:    []string{"./..."},
		Output:      emit.FileName,
		Manifest:    manifest.DefaultName,
		Workers:     runtime.GOMAXPROCS(0),
		FailOnError: true,
	}
}

func (o *Options) Normalize() {
	if o.Dir == "" {
		o.Dir = "."
	}
	if abs, err := filepath.Abs(o.Dir); err == nil {
		o.Dir = abs
	}
	patterns := o.Patterns[:0]
	for _, p := range o.Patterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	o.Patterns = patterns
	if len(o.Patterns) == 0 {
		o.Patterns = []string{"./..."}
	}
	if len(o.Output) == 0 {
		o.Output = emit.FileName
	}
	o.Output = filepath.Base(o.Output)
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithDir(d string) Option { return func(o *Options) { o.Dir = d } }
func WithPatterns(p ...string) Option { return func(o *Options) { o.Patterns = append(o.Patterns[:0], p...) } }
func WithTags(t ...string) Option { return func(o *Options) { o.Tags = append(o.Tags, t...) } }
func WithOutput(f string) Option { return func(o *Options) { o.Output = f } }
func WithManifest(p string) Option { return func(o *Options) { o.Manifest = p } }
func WithoutManifest() Option { return func(o *Options) { o.Manifest = "" } }
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }
func WithDryRun() Option { return func(o *Options) { o.DryRun = true } }
func WithFailOnError(fail bool) Option { return func(o *Options) { o.FailOnError = fail } }
