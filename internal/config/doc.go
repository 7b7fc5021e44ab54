// Package config defines the configuration structure of expsum.
//
// Configuration is organized into sections. Defaults come from `default`
// struct tags applied by creasty/defaults; cmd/expsum overlays a YAML file,
// EXPSUM_* environment variables and command-line flags through viper.
//
// # Configuration Structure
//
//	Configuration
//	├── Run        - one summation: base, terms, pool, worker, mechanism
//	├── Server     - HTTP API settings
//	├── Store      - run history location
//	├── LogFormat  - console or json
//	└── LogLevel   - zap level name
//
// # Run Configuration
//
//	┌───────────────┬─────────────────┬──────────────────────────────────────┐
//	│ Field         │ Default         │ Description                          │
//	├───────────────┼─────────────────┼──────────────────────────────────────┤
//	│ Base          │ 1               │ x in x^k / k!                        │
//	│ Terms         │ 10              │ number of terms N                    │
//	│ Workers       │ 4               │ pool size P                          │
//	│ WorkerPath    │ "expsum-worker" │ worker executable, looked up in PATH │
//	│ Mechanism     │ "epoll"         │ epoll, select (sequential, poll)     │
//	│ ReadBudget    │ 10              │ bytes per read call                  │
//	│ SelectTimeout │ 1s              │ ceiling of one select wait           │
//	└───────────────┴─────────────────┴──────────────────────────────────────┘
//
// # Server Configuration
//
//	┌───────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field             │ Default │ Description                            │
//	├───────────────────┼─────────┼────────────────────────────────────────┤
//	│ Mode              │ "dev"   │ gin mode: "prod" or "dev"              │
//	│ HTTPPort          │ 8000    │ listen port                            │
//	│ MaxConcurrentRuns │ 2       │ scheduler workers executing runs       │
//	│ ShutdownTimeout   │ 10s     │ graceful shutdown ceiling              │
//	└───────────────────┴─────────┴────────────────────────────────────────┘
//
// # Validation
//
// Validate implements the configuration error taxonomy. Every failure is a
// ConfigurationError except a known mechanism without implementation, which
// is an UnsupportedMechanismError so callers can exit cleanly:
//
//	cfg := config.NewConfiguration()
//	if err := cfg.Validate(); err != nil {
//	    if srvErrors.IsUnsupportedMechanismError(err) {
//	        fmt.Println(err)
//	        return nil
//	    }
//	    return err
//	}
package config
