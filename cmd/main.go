package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hybridcrypt/hybridcrypt/auth"
	"github.com/hybridcrypt/hybridcrypt/codec"
	"github.com/hybridcrypt/hybridcrypt/config"
	"github.com/hybridcrypt/hybridcrypt/crypto"
	"github.com/hybridcrypt/hybridcrypt/metrics"
	"github.com/hybridcrypt/hybridcrypt/shell"
	"github.com/hybridcrypt/hybridcrypt/transport"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "hybridcrypt",
		Usage: "RSA + AES hybrid text encryption",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    config.ConfigPathFlag,
				Usage:   "config file",
				Aliases: []string{"c"},
				Value:   config.DefaultConfigPath,
			},
			&cli.StringFlag{
				Name:  config.LogLevelFlag,
				Usage: "log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the HTTP API",
				Flags:  []cli.Flag{schemeFlag()},
				Action: serve,
			},
			{
				Name:   "shell",
				Usage:  "start an interactive shell",
				Flags:  []cli.Flag{schemeFlag()},
				Action: runShell,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func schemeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  config.SchemeFlag,
		Usage: "encryption scheme (legacy, sealed); overrides the config file",
	}
}

func serve(c *cli.Context) error {
	app := fx.New(
		fx.Supply(c),
		fx.Provide(func() (*zap.Logger, error) {
			return newLogger(c.String(config.LogLevelFlag))
		}),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		config.Module,
		metrics.Module,
		codec.Module,
		auth.Module,
		transport.Module,
		fx.Invoke(func(transport.TransportProvider, metrics.MetricsProvider) {}),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(c.Context, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()

	return app.Stop(stopCtx)
}

func runShell(c *cli.Context) error {
	cfg, err := config.LoadConfigFromContext(c)
	if err != nil {
		return err
	}

	logger, err := newLogger(c.String(config.LogLevelFlag))
	if err != nil {
		return err
	}
	defer logger.Sync()

	scheme, err := crypto.ParseScheme(cfg.Encryption.Scheme)
	if err != nil {
		return err
	}

	keys, err := codec.GenerateKeyMaterial(logger, nil)
	if err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}

	hybridCipher, err := crypto.NewHybridCipher(keys, crypto.WithScheme(scheme))
	if err != nil {
		return err
	}
	info, err := hybridCipher.Info()
	if err != nil {
		return err
	}

	prompter := shell.NewLinerPrompter()
	defer prompter.Close()

	return shell.New(codec.NewTextCodec(hybridCipher, nil, logger), info, prompter, os.Stdout).Run(c.Context)
}
