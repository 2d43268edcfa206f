package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/example/foodapp/internal/config"
	"github.com/example/foodapp/internal/logger"
	"github.com/example/foodapp/internal/payment"
	"github.com/example/foodapp/internal/storage"
)

// Main loads configuration, builds the App and runs the command in args.
func Main(ctx context.Context, args []string, streams Streams) int {
	fs := pflag.NewFlagSet("foodapp", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(streams.Err)
	ephemeral := fs.Bool("ephemeral", false, "keep the session in memory only")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(streams.Err, "config: %v\n", err)
		return 1
	}
	if *ephemeral {
		cfg.SessionBackend = "memory"
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(streams.Err, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	store, closeStore, err := OpenStorage(ctx, cfg)
	if err != nil {
		log.Error("open session storage", zap.Error(err))
		fmt.Fprintf(streams.Err, "%s: %v\n", defaultAlertTitle, err)
		return 1
	}
	defer closeStore()

	app, err := New(cfg, streams, Deps{
		Storage: store,
		Gateway: GatewayFor(cfg, log),
		Logger:  log,
	})
	if err != nil {
		fmt.Fprintf(streams.Err, "%s: %v\n", defaultAlertTitle, err)
		return 1
	}
	return app.Run(ctx, fs.Args())
}

// OpenStorage returns the session backend named by cfg and its closer.
func OpenStorage(ctx context.Context, cfg *config.Client) (storage.Store, func(), error) {
	switch cfg.SessionBackend {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "redis":
		rdb, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(rdb, cfg.RedisKeyPrefix, 0), func() { _ = rdb.Close() }, nil
	case "file", "":
		return storage.NewFileStore(cfg.SessionPath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// GatewayFor picks the payment handoff for cfg.PaymentMode. Anything but
// sandbox falls back to the interactive prompt.
func GatewayFor(cfg *config.Client, log *zap.Logger) payment.Gateway {
	if cfg.PaymentMode == "sandbox" {
		return payment.NewSandbox(cfg.RazorpayKeySecret, log)
	}
	return nil
}
