package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clinaccel/reponav/internal/config"
	"github.com/clinaccel/reponav/internal/logger"
	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/internal/session"
	"github.com/clinaccel/reponav/pkg/action"
	"github.com/clinaccel/reponav/pkg/nav"
	"github.com/clinaccel/reponav/pkg/notify"
	"github.com/clinaccel/reponav/pkg/repository"
)

// app holds the wired session shared by all subcommands.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	client    *repository.Client
	navigator *nav.Navigator
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string
	var endpoint string

	cmd := &cobra.Command{
		Use:           "reponav",
		Short:         "Browse a remote clinical document repository",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if endpoint != "" {
				cfg.Endpoint = endpoint
			}
			a.cfg = cfg

			log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			a.log = log

			tokens := session.NewProvider(cfg.TokenPath, 0)
			client, err := repository.New(repository.Config{
				BaseURL:  cfg.Endpoint,
				Tokens:   tokens,
				Notifier: consoleNotifier(cmd),
				Logger:   log,
				Timeout:  cfg.RequestTimeout,
				PageSize: cfg.PageSize,
			})
			if err != nil {
				return err
			}
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}
			a.client = client

			poller := action.New(client,
				action.WithInterval(cfg.PollInterval),
				action.WithLogger(log))
			a.navigator = nav.NewNavigator(client, poller,
				nav.WithNotifier(consoleNotifier(cmd)),
				nav.WithNavigatorLogger(log))

			if cfg.MetricsAddr != "" {
				go serveMetrics(cfg.MetricsAddr, log)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Repository service base URL (overrides config)")

	cmd.AddCommand(
		newLsCmd(a),
		newStatCmd(a),
		newCatCmd(a),
		newMkdirCmd(a),
		newRenameCmd(a),
		newRmCmd(a),
		newUploadCmd(a),
		newDownloadCmd(a),
		newVersionsCmd(a),
		newEnableVersioningCmd(a),
		newDisableVersioningCmd(a),
		newPropertiesCmd(a),
	)
	return cmd
}

// consoleNotifier prints notifications as timestamped log-channel lines.
func consoleNotifier(cmd *cobra.Command) notify.Notifier {
	return notify.Func(func(level notify.Level, message string) {
		out := cmd.OutOrStdout()
		if level == notify.LevelError || level == notify.LevelWarn {
			out = cmd.ErrOrStderr()
		}
		fmt.Fprintln(out, nav.LogLine(timeNow(), message))
	})
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}
