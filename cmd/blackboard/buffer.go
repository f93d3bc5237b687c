package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkt.systems/blackboard/httpapi"
	"pkt.systems/blackboard/internal/appconfig"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

type bufferFlags struct {
	cfgPath string
	addr    string
}

func newBufferCmd() *cobra.Command {
	flags := &bufferFlags{}
	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Read or write the active buffer of a running editor",
	}
	cmd.PersistentFlags().StringVarP(&flags.cfgPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().StringVar(&flags.addr, "addr", "", "control plane address (default from config)")
	cmd.AddCommand(newBufferGetCmd(flags))
	cmd.AddCommand(newBufferWriteCmd(flags, "put", "Replace the active buffer with stdin or the arguments", schema.WriteReplace))
	cmd.AddCommand(newBufferWriteCmd(flags, "append", "Append stdin or the arguments to the active buffer", schema.WriteAppend))
	cmd.AddCommand(newBufferPingCmd(flags))
	return cmd
}

// client resolves the control plane address: flag, then config, then the
// built-in default.
func (f *bufferFlags) client(cmd *cobra.Command) *httpapi.Client {
	addr := strings.TrimSpace(f.addr)
	if addr == "" {
		if cfg, err := appconfig.Load(f.cfgPath); err == nil {
			addr = cfg.Control.Addr
		} else {
			pslog.Ctx(cmd.Context()).Debug("buffer config unavailable", "err", err)
		}
	}
	if addr == "" {
		addr = appconfig.DefaultControlAddr
	}
	return httpapi.NewClient(addr)
}

func newBufferGetCmd(flags *bufferFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the active buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := flags.client(cmd).Buffer(cmd.Context())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newBufferWriteCmd(flags *bufferFlags, use, short string, mode schema.WriteMode) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [text...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var body io.Reader = cmd.InOrStdin()
			if len(args) > 0 {
				body = strings.NewReader(strings.Join(args, " "))
			}
			counter := &countingReader{r: body}
			if err := flags.client(cmd).Write(cmd.Context(), counter, mode); err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Info("buffer written", "mode", mode, "size", humanize.Bytes(uint64(counter.n)))
			return nil
		},
	}
}

func newBufferPingCmd(flags *bufferFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that an editor is listening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.client(cmd).Ping(cmd.Context()); err != nil {
				return fmt.Errorf("no editor listening: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "pong")
			return err
		},
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
