// Command tendon loads rig files, solves them and prints the resulting pose.
//
//	tendon inspect arm.yaml
//	tendon solve arm.yaml --target wrist=8,12,0 --frames 30 --output posed.yaml
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tendon",
		Short:         "Multi-effector inverse kinematics for skeletal rigs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log solver statistics to stderr")

	cmd.AddCommand(newSolveCmd(opts), newInspectCmd(opts), newPlayCmd(opts))
	return cmd
}

// newLogger returns a text logger on w. verbose lowers the level to debug,
// which also turns on the armature's debug mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
