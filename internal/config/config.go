package config

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"golang.org/x/sys/unix"

	"github.com/tupyy/expsum/internal/models"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

type Configuration struct {
	Run       Run    `mapstructure:"run"`
	Server    Server `mapstructure:"server"`
	Store     Store  `mapstructure:"store"`
	LogFormat string `mapstructure:"log-format" default:"console"`
	LogLevel  string `mapstructure:"log-level" default:"info"`
}

type Run struct {
	Base          int           `mapstructure:"base" default:"1"`
	Terms         int           `mapstructure:"terms" default:"10"`
	Workers       int           `mapstructure:"workers" default:"4"`
	WorkerPath    string        `mapstructure:"worker-path" default:"expsum-worker"`
	Mechanism     string        `mapstructure:"mechanism" default:"epoll"`
	ReadBudget    int           `mapstructure:"read-budget" default:"10"`
	SelectTimeout time.Duration `mapstructure:"select-timeout" default:"1s"`
}

type Server struct {
	Mode              string        `mapstructure:"mode" default:"dev"`
	HTTPPort          int           `mapstructure:"http-port" default:"8000"`
	MaxConcurrentRuns int           `mapstructure:"max-concurrent-runs" default:"2"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown-timeout" default:"10s"`
}

type Store struct {
	// DataFolder holds expsum.duckdb. Empty keeps the history in memory.
	DataFolder string `mapstructure:"data-folder"`
}

// NewConfiguration returns a configuration with every default applied.
func NewConfiguration() *Configuration {
	c := &Configuration{}
	defaults.MustSet(c)
	return c
}

// Validate checks the run section and the log settings. The server section
// is only checked by ValidateServer.
func (c *Configuration) Validate() error {
	if _, err := zapLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return srvErrors.NewConfigurationError("log-format", fmt.Sprintf("%q is neither console nor json", c.LogFormat))
	}
	return c.Run.Validate()
}

func (c *Configuration) ValidateServer() error {
	switch c.Server.Mode {
	case "dev", "prod":
	default:
		return srvErrors.NewConfigurationError("server.mode", fmt.Sprintf("%q is neither dev nor prod", c.Server.Mode))
	}
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return srvErrors.NewConfigurationError("server.http-port", fmt.Sprintf("%d is out of range", c.Server.HTTPPort))
	}
	if c.Server.MaxConcurrentRuns < 1 {
		return srvErrors.NewConfigurationError("server.max-concurrent-runs", "must be at least 1")
	}
	return nil
}

// Validate rejects a run before any worker is spawned. Numeric arguments are
// checked first, then the mechanism, then the worker executable.
func (r Run) Validate() error {
	if err := r.Params().Validate(); err != nil {
		return err
	}
	if r.ReadBudget < 1 {
		return srvErrors.NewConfigurationError("read-budget", "must be at least 1")
	}
	if r.SelectTimeout <= 0 {
		return srvErrors.NewConfigurationError("select-timeout", "must be positive")
	}
	_, err := r.ResolveWorkerPath()
	return err
}

func (r Run) Params() models.RunParams {
	return models.RunParams{
		Base:      r.Base,
		Terms:     r.Terms,
		Workers:   r.Workers,
		Mechanism: models.Mechanism(r.Mechanism),
	}
}

// ResolveWorkerPath returns the executable the dispatcher will launch. A bare
// name is looked up in PATH.
func (r Run) ResolveWorkerPath() (string, error) {
	if r.WorkerPath == "" {
		return "", srvErrors.NewConfigurationError("worker-path", "must not be empty")
	}
	if !strings.ContainsRune(r.WorkerPath, '/') {
		path, err := exec.LookPath(r.WorkerPath)
		if err != nil {
			return "", srvErrors.NewConfigurationError("worker-path", err.Error())
		}
		return path, nil
	}
	if err := unix.Access(r.WorkerPath, unix.X_OK); err != nil {
		return "", srvErrors.NewConfigurationError("worker-path", fmt.Sprintf("%s is not executable: %v", r.WorkerPath, err))
	}
	return r.WorkerPath, nil
}
