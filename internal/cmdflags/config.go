package cmdflags

import (
	"os"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/internal/config"
	"github.com/urfave/cli/v2"
)

const (
	flagConfig      = "config"
	flagBind        = "bind"
	flagDBDriver    = "db-driver"
	flagDBDSN       = "db-dsn"
	flagSecretEnv   = "secret-envvar-name"
	flagTokenTTL    = "token-ttl"
	flagCacheTTL    = "cache-ttl"
	flagKDFWorkers  = "kdf-workers"
	flagMetrics     = "metrics"
	flagCORSOrigins = "cors-origin"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
)

// Store returns the flags needed to reach the database
func Store() []cli.Flag {
	def := config.Defaults()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to a TOML config file, flags take precedence over it",
			EnvVars: []string{"PACKBOX_CONFIG"},
		},
		&cli.StringFlag{
			Name:    flagDBDriver,
			Usage:   "Database driver (sqlite3 or pgx)",
			Value:   def.DBDriver,
			EnvVars: []string{"PACKBOX_DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:    flagDBDSN,
			Usage:   "Path to the sqlite database or postgres connection string",
			Value:   def.DBDSN,
			EnvVars: []string{"PACKBOX_DB_DSN", "DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "Log level (debug, info, warn, error)",
			Value:   def.LogLevel,
			EnvVars: []string{"PACKBOX_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    flagLogFormat,
			Usage:   "Log format (json or console)",
			Value:   def.LogFormat,
			EnvVars: []string{"PACKBOX_LOG_FORMAT"},
		},
	}
}

// Server returns the flags used by the api server, including Store
func Server() []cli.Flag {
	def := config.Defaults()
	return append(Store(),
		&cli.StringFlag{
			Name:    flagBind,
			Usage:   "Address to bind for incoming requests",
			Value:   def.Bind,
			EnvVars: []string{"PACKBOX_BIND"},
		},
		&cli.StringFlag{
			Name:    flagSecretEnv,
			Usage:   "Name of the environment variable that holds the token signing secret. The secret itself should not be passed as an argument",
			Value:   auth.SecretEnvVar,
			Hidden:  true,
			EnvVars: []string{"PACKBOX_SECRET_ENVVAR_NAME"},
		},
		&cli.DurationFlag{
			Name:    flagTokenTTL,
			Usage:   "How long issued tokens remain valid",
			Value:   def.TokenTTL,
			EnvVars: []string{"PACKBOX_TOKEN_TTL"},
		},
		&cli.DurationFlag{
			Name:    flagCacheTTL,
			Usage:   "How long box listings stay cached",
			Value:   def.CacheTTL,
			EnvVars: []string{"PACKBOX_CACHE_TTL"},
		},
		&cli.IntFlag{
			Name:    flagKDFWorkers,
			Usage:   "Maximum concurrent password derivations (0 means one per CPU)",
			Value:   def.KDFWorkers,
			EnvVars: []string{"PACKBOX_KDF_WORKERS"},
		},
		&cli.BoolFlag{
			Name:    flagMetrics,
			Usage:   "Expose prometheus metrics under /metrics",
			Value:   def.Metrics,
			EnvVars: []string{"PACKBOX_METRICS"},
		},
		&cli.StringSliceFlag{
			Name:    flagCORSOrigins,
			Usage:   "Origin allowed to call the api from a browser (repeatable, * allows any)",
			EnvVars: []string{"PACKBOX_CORS_ORIGINS"},
		},
	)
}

// Load builds the configuration from defaults, the optional config file
// and whatever flags were explicitly set.
func Load(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String(flagConfig); path != "" {
		var err error
		cfg, err = config.LoadFile(path, cfg)
		if err != nil {
			return config.Config{}, err
		}
	}
	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setString(flagBind, &cfg.Bind)
	setString(flagDBDriver, &cfg.DBDriver)
	setString(flagDBDSN, &cfg.DBDSN)
	setString(flagSecretEnv, &cfg.SecretEnv)
	setString(flagLogLevel, &cfg.LogLevel)
	setString(flagLogFormat, &cfg.LogFormat)
	if c.IsSet(flagTokenTTL) {
		cfg.TokenTTL = c.Duration(flagTokenTTL)
	}
	if c.IsSet(flagCacheTTL) {
		cfg.CacheTTL = c.Duration(flagCacheTTL)
	}
	if c.IsSet(flagKDFWorkers) {
		cfg.KDFWorkers = c.Int(flagKDFWorkers)
	}
	if c.IsSet(flagMetrics) {
		cfg.Metrics = c.Bool(flagMetrics)
	}
	if c.IsSet(flagCORSOrigins) {
		cfg.CORSOrigins = c.StringSlice(flagCORSOrigins)
	}
	if port := os.Getenv("PORT"); port != "" && !c.IsSet(flagBind) {
		cfg.Bind = ":" + port
	}
	return cfg, cfg.Validate()
}
