package serve

import (
	"os"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/internal/cmdflags"
	"github.com/andrebq/packbox/internal/httpserver"
	"github.com/andrebq/packbox/internal/logutil"
	"github.com/andrebq/packbox/internal/metrics"
	"github.com/andrebq/packbox/internal/server"
	"github.com/andrebq/packbox/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the packbox api",
		Flags: cmdflags.Server(),
		Action: func(c *cli.Context) error {
			cfg, err := cmdflags.Load(c)
			if err != nil {
				return err
			}
			logger, err := logutil.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			ctx := logutil.WithLogger(c.Context, logger)

			secret, err := auth.SecretFromEnv(cfg.SecretEnv, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			st, err := store.Open(ctx, store.Options{
				Driver:   cfg.DBDriver,
				DSN:      cfg.DBDSN,
				CacheTTL: cfg.CacheTTL,
			})
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info().Str("driver", st.Driver()).Msg("Database ready")

			hasher := auth.NewHasher(auth.DefaultParams(), cfg.KDFWorkers)
			deps := server.Deps{
				Store:       st,
				Hasher:      hasher,
				Tokens:      auth.NewIssuer(secret, cfg.TokenTTL),
				CORSOrigins: cfg.CORSOrigins,
			}
			if cfg.Metrics {
				deps.Metrics = metrics.New()
				hasher.Observe(deps.Metrics.ObserveKDF)
			}
			return httpserver.Serve(ctx, cfg.Bind, server.AsHandler(ctx, deps))
		},
	}
}
