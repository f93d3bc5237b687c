package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/blackboard"
	"pkt.systems/blackboard/httpapi"
	"pkt.systems/blackboard/internal/appconfig"
	"pkt.systems/blackboard/internal/kv"
	"pkt.systems/blackboard/internal/render"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var path string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := appconfig.WriteDefault(path, force)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// serverConfig maps the application config onto the compositor.
func serverConfig(cfg appconfig.Config, format render.Format) blackboard.ServerConfig {
	return blackboard.ServerConfig{
		Service: cfg.ServiceConfig(),
		HTTP:    httpapi.Config{Addr: cfg.Control.Addr},
		Storage: blackboard.StorageConfig{
			Driver: kv.Driver(cfg.Storage.Driver),
			Path:   cfg.Storage.Path,
		},
		Render: blackboard.RenderConfig{
			Format: format,
			Style:  cfg.Editor.HighlightStyle,
		},
		Formatters: cfg.FormatterConfig(),
	}
}

func serverOptions(cfg appconfig.Config) []blackboard.ServerOption {
	opts := []blackboard.ServerOption{blackboard.WithFormatterProbe()}
	if cfg.Control.Enabled {
		opts = append(opts, blackboard.WithControl())
	}
	return opts
}
