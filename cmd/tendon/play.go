package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/tendon/rig"
)

type playOptions struct {
	tps       int
	maxFrames int
	output    string
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play RIG SCRIPT",
		Short: "Run a pin animation script against a rig without a window",
		Long: `Play steps a script one frame at a time, solving the rig after every
frame, and prints the final pose. Screenshot steps are logged.

Examples:
  tendon play arm.yaml wave.yaml
  tendon play arm.yaml wave.yaml --tps 30 --output end.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadArmature(args[0])
			if err != nil {
				return err
			}
			a.SetLogger(root.logger)
			a.SetDebugMode(root.verbose)

			script, err := loadScript(args[1])
			if err != nil {
				return err
			}
			runner, err := rig.NewRunner(script, a)
			if err != nil {
				return err
			}
			runner.OnScreenshot = func(label string) {
				root.logger.Info("screenshot", "label", label, "error", a.Error())
			}
			runner.Logger = root.logger
			if opts.tps <= 0 {
				return fmt.Errorf("tps must be positive, got %d", opts.tps)
			}

			dt := float32(1) / float32(opts.tps)
			frames := 0
			for !runner.Done() {
				if frames >= opts.maxFrames {
					return fmt.Errorf("script still running after %d frames", frames)
				}
				runner.Step(dt)
				a.SolveAll()
				frames++
			}
			root.logger.Info("played", "rig", a.Name, "frames", frames, "error", a.Error())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.Title.Render(a.Name))
			fmt.Fprintln(out, poseTable(a))
			if pins := a.Pins(); len(pins) > 0 {
				fmt.Fprintln(out, pinTable(pins))
			}
			fmt.Fprintf(out, "frames: %d  error: %s\n", frames, formatFloat(a.Error()))

			if opts.output != "" {
				return saveArmature(opts.output, a)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.tps, "tps", 60, "frames per simulated second")
	f.IntVar(&opts.maxFrames, "max-frames", 100000, "give up after this many frames")
	f.StringVarP(&opts.output, "output", "o", "", "write the final rig to this file")
	return cmd
}

func loadScript(path string) (*rig.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := rig.DecodeScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
