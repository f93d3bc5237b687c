package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/blackboard"
	"pkt.systems/blackboard/internal/appconfig"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/tui"
	"pkt.systems/pslog"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var noControl bool
	var noPreview bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the editor in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if noControl {
				cfg.Control.Enabled = false
			}
			if noPreview {
				cfg.Editor.Preview = false
			}

			// The terminal belongs to the editor, so logs go to a file.
			logger, closeLog, err := fileLogger(cfg.Logging.File)
			if err != nil {
				return err
			}
			defer closeLog()
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			server, err := blackboard.New(serverConfig(cfg, render.FormatTerminal), blackboard.ServerDeps{Logger: logger}, serverOptions(cfg)...)
			if err != nil {
				return err
			}
			if err := server.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()

			return tui.Run(ctx, server.Service(), server.Events(), server.Linker(), tui.Options{
				Preview: cfg.Editor.Preview,
			})
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&noControl, "no-control", false, "do not start the loopback control plane")
	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "hide the rendered preview pane")
	return cmd
}

func fileLogger(path string) (pslog.Logger, func(), error) {
	if path == "" {
		return pslog.NewWithOptions(nopWriter{}, pslog.Options{Mode: pslog.ModeStructured, NoColor: true}), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(f),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, NoColor: true}),
	)
	return logger, func() { _ = f.Close() }, nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
