package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	args := applyArgv0Alias(os.Args)
	root := newRootCmd()
	root.SetArgs(args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("blackboard command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blackboard",
		Short:         "Scratchpad editor with language detection and a loopback control plane",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newBufferCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// argv0Alias maps helper binary names (usually symlinks) onto subcommands.
func argv0Alias(base string) []string {
	switch base {
	case "bb-get", "bbget":
		return []string{"buffer", "get"}
	case "bb-put", "bbput":
		return []string{"buffer", "put"}
	case "bb-append", "bbappend":
		return []string{"buffer", "append"}
	case "bb-ping":
		return []string{"buffer", "ping"}
	default:
		return nil
	}
}

func applyArgv0Alias(args []string) []string {
	if len(args) == 0 {
		return args
	}
	alias := argv0Alias(filepath.Base(args[0]))
	if len(alias) == 0 {
		return args
	}
	out := make([]string, 0, len(args)+len(alias))
	out = append(out, args[0])
	out = append(out, alias...)
	out = append(out, args[1:]...)
	return out
}
