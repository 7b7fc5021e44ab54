package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tupyy/expsum/internal/config"
	"github.com/tupyy/expsum/internal/store"
	"github.com/tupyy/expsum/internal/store/migrations"
)

const dbFile = "expsum.duckdb"

// loader resolves the configuration of one invocation: struct defaults, then
// the config file, then EXPSUM_* variables, then flags.
type loader struct {
	v          *viper.Viper
	configFile string
}

func newRootCommand() *cobra.Command {
	l := &loader{v: viper.New()}
	defaults := config.NewConfiguration()

	root := &cobra.Command{
		Use:   "expsum",
		Short: "Sum the exponential series with a pool of worker processes",
		Long: `expsum computes e^x as the sum of x^k / k! for k in [0, N). Every term is
computed by a separate worker process. The dispatcher waits for results with
epoll or select and respawns finished workers until every term is settled.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&l.configFile, "config", "", "path to a YAML configuration file")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.String("log-format", defaults.LogFormat, "log format: console or json")
	flags.String("data-folder", defaults.Store.DataFolder, "folder of the run history database (in memory when empty)")
	l.bind("log-level", flags.Lookup("log-level"))
	l.bind("log-format", flags.Lookup("log-format"))
	l.bind("store.data-folder", flags.Lookup("data-folder"))

	root.AddCommand(
		newRunCommand(l, defaults),
		newServeCommand(l, defaults),
		newHistoryCommand(l),
		newVersionCommand(),
	)
	return root
}

func (l *loader) bind(key string, flag *pflag.Flag) {
	if err := l.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

// bindSection binds the named flags under section. Commands bind their own
// flags when they execute since several of them share keys.
func (l *loader) bindSection(section string, flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		l.bind(section+"."+name, flags.Lookup(name))
	}
}

// load returns the merged configuration and installs the global logger.
func (l *loader) load() (*config.Configuration, error) {
	l.v.SetEnvPrefix("EXPSUM")
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	cfg := config.NewConfiguration()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	zap.S().Named("config").Debugw("configuration loaded", "config", cfg)

	return cfg, nil
}

// newLogger writes to stderr only. stdout carries the report.
func newLogger(cfg *config.Configuration) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func openStore(cmd *cobra.Command, cfg *config.Configuration) (*store.Store, error) {
	path := ":memory:"
	if cfg.Store.DataFolder != "" {
		if err := os.MkdirAll(cfg.Store.DataFolder, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data folder: %w", err)
		}
		path = filepath.Join(cfg.Store.DataFolder, dbFile)
	}

	db, err := store.NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(cmd.Context(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.NewStore(db), nil
}
