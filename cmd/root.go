package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/collectiongen/internal/generator"
)

var (
	configFiles    []string
	level, version string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "collectiongen",
	Short:         "generate typed collections for enum and type options",
	Long:          "collectiongen discovers //enum: and //type: directives and generates typed collections with lookups next to them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&level, "level", "l", "info", "log level (trace, debug, info, warn, error, debug+1, etc)")
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", []string{}, "config file(s) - multiple config files are merged with last specified file having highest priority")

	defaults := generator.NewOptions()
	flags := rootCmd.PersistentFlags()
	flags.StringP("dir", "C", defaults.Dir, "directory to run in; its module is the one generated for")
	flags.StringSlice("tags", nil, "build tags applied while loading packages")
	flags.StringP("output", "o", defaults.Output, "name of the generated file in every package")
	flags.String("manifest", defaults.Manifest, "manifest of generated files relative to the module root, empty to disable")
	flags.IntP("workers", "w", defaults.Workers, "packages processed and files written in parallel")
	flags.Bool("fail-on-error", defaults.FailOnError, "exit non-zero when error diagnostics are reported")
	for key, flag := range map[string]string{
		"generate.dir":           "dir",
		"generate.tags":          "tags",
		"generate.output":        "output",
		"generate.manifest":      "manifest",
		"generate.workers":       "workers",
		"generate.fail_on_error": "fail-on-error",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	ll, err := parseLevel(level)
	if err != nil {
		panic(err)
	}
	l := newLogger(ll)
	slog.SetDefault(l)

	if len(configFiles) > 0 {
		// Use config file from the flag.
		viper.SetConfigFile(configFiles[0])
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".collectiongen.config")
	}

	viper.SetEnvPrefix("COLLECTIONGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		l.With("config", viper.ConfigFileUsed()).Debug("using config file(s)")
	} else {
		l.With("error", err, "config", viper.ConfigFileUsed()).Debug("unable to use config file(s)")
	}
	if len(configFiles) > 1 {
		for _, file := range configFiles[1:] {
			if configBytes, err := os.ReadFile(file); err == nil {
				if err = viper.MergeConfig(bytes.NewReader(configBytes)); err != nil {
					l.With("error", err, "file", file).Warn("failed to merge config file")
				} else {
					l.With("file", file).Debug("merged config file")
				}
			}
		}
	}
	if len(version) > 0 {
		viper.Set("version", version)
	}

	// common.log.level applies unless --level was given explicitly.
	if llstr := viper.GetString("common.log.level"); llstr != "" && !rootCmd.PersistentFlags().Changed("level") {
		ll, err = parseLevel(llstr)
		if err != nil {
			panic(err)
		}
		slog.SetDefault(newLogger(ll))
	}
}

func parseLevel(s string) (slog.Level, error) {
	var ll slog.Level
	if err := (&ll).UnmarshalText([]byte(s)); err != nil {
		if strings.EqualFold(s, "trace") {
			return slog.Level(-8), nil
		}
		return 0, errors.Newf("invalid log level: %s", s)
	}
	return ll, nil
}

func newLogger(ll slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       ll,
		ReplaceAttr: nil,
	}))
}

// generateOptions reads the generate.* keys from flags, environment and
// config files. args, when given, replace the configured package patterns.
func generateOptions(args []string) (*generator.Options, error) {
	opts := generator.NewOptions()
	opts.Dir = viper.GetString("generate.dir")
	opts.Output = viper.GetString("generate.output")
	opts.Manifest = viper.GetString("generate.manifest")
	opts.Workers = viper.GetInt("generate.workers")
	opts.DryRun = viper.GetBool("generate.dry_run")
	opts.FailOnError = viper.GetBool("generate.fail_on_error")
	if viper.IsSet("generate.patterns") {
		opts.Patterns = viper.GetStringSlice("generate.patterns")
	}
	opts.Tags = viper.GetStringSlice("generate.tags")
	if len(args) > 0 {
		opts.Patterns = args
	}
	if opts.Workers < 0 {
		return nil, errors.Newf("workers must not be negative, got %d", opts.Workers)
	}
	opts.Normalize()
	return opts, nil
}

// SetVersion records the build version reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
