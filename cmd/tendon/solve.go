package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/phanxgames/tendon"
	"github.com/phanxgames/tendon/promsink"
	"github.com/phanxgames/tendon/rig"
)

type solveOptions struct {
	iterations    int
	damping       float64
	stabilization int
	frames        int
	targets       []string
	output        string
	metrics       string
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	opts := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve RIG",
		Short: "Solve a rig and print the resulting pose",
		Long: `Solve loads a rig file, optionally moves pin targets, runs the solver
for a number of frames and prints every bone's position and every pin's
remaining error.

Flags override the rig's solver block. Targets are given as
BONE=X,Y,Z; a bone without a pin gets one.

Examples:
  tendon solve arm.yaml
  tendon solve arm.yaml --target wrist=8,12,0 --frames 30
  tendon solve arm.yaml --damping 0.05 --output posed.yaml
  tendon solve arm.yaml --frames 100 --metrics tendon.prom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, root, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.iterations, "iterations", 0, "solver iterations per frame (0 keeps the rig's value)")
	f.Float64Var(&opts.damping, "damping", 0, "maximum rotation per bone and iteration in radians (0 keeps the rig's value)")
	f.IntVar(&opts.stabilization, "stabilization", -1, "stabilization passes per frame (-1 keeps the rig's value)")
	f.IntVar(&opts.frames, "frames", 1, "number of Solve calls")
	f.StringArrayVar(&opts.targets, "target", nil, "pin target as BONE=X,Y,Z (repeatable)")
	f.StringVarP(&opts.output, "output", "o", "", "write the solved rig to this file")
	f.StringVar(&opts.metrics, "metrics", "", "write solve metrics to this file in the Prometheus text format")
	return cmd
}

func runSolve(cmd *cobra.Command, root *rootOptions, opts *solveOptions, path string) error {
	a, err := loadArmature(path)
	if err != nil {
		return err
	}
	a.SetLogger(root.logger)
	a.SetDebugMode(root.verbose)

	var reg *prometheus.Registry
	if opts.metrics != "" {
		reg = prometheus.NewRegistry()
		a.SetEventSink(promsink.New(reg))
	}

	if err := applySolverFlags(a, opts); err != nil {
		return err
	}
	for _, arg := range opts.targets {
		name, pos, err := parseTarget(arg)
		if err != nil {
			return err
		}
		b := a.Bone(name)
		if b == nil {
			return fmt.Errorf("target %q: no bone named %q", arg, name)
		}
		pin := b.Pin()
		if pin == nil {
			pin = b.EnablePin()
		}
		pin.SetEnabled(true)
		pin.SetTargetPosition(pos)
	}
	if opts.frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", opts.frames)
	}

	for i := 0; i < opts.frames; i++ {
		a.SolveAll()
	}
	root.logger.Info("solved", "rig", a.Name, "frames", opts.frames, "error", a.Error())

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Title.Render(a.Name))
	fmt.Fprintln(out, poseTable(a))
	if pins := a.Pins(); len(pins) > 0 {
		fmt.Fprintln(out, pinTable(pins))
	}
	fmt.Fprintf(out, "%s %s\n", styles.Muted.Render("error:"), formatFloat(a.Error()))

	if opts.output != "" {
		if err := saveArmature(opts.output, a); err != nil {
			return err
		}
	}
	if reg != nil {
		return prometheus.WriteToTextfile(opts.metrics, reg)
	}
	return nil
}

func applySolverFlags(a *tendon.Armature, opts *solveOptions) error {
	cfg := a.Config()
	if opts.iterations != 0 {
		cfg.Iterations = opts.iterations
	}
	if opts.damping != 0 {
		cfg.Damping = opts.damping
	}
	if opts.stabilization >= 0 {
		cfg.StabilizationPasses = opts.stabilization
	}
	return a.SetConfig(cfg)
}

// parseTarget splits "name=x,y,z".
func parseTarget(arg string) (string, mgl64.Vec3, error) {
	name, coords, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", mgl64.Vec3{}, fmt.Errorf("target %q: want BONE=X,Y,Z", arg)
	}
	parts := strings.Split(coords, ",")
	if len(parts) != 3 {
		return "", mgl64.Vec3{}, fmt.Errorf("target %q: want three coordinates", arg)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", mgl64.Vec3{}, fmt.Errorf("target %q: %w", arg, err)
		}
		v[i] = f
	}
	return name, v, nil
}

func loadArmature(path string) (*tendon.Armature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	def, err := rig.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a, err := rig.Build(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func saveArmature(path string, a *tendon.Armature) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rig.Encode(f, rig.Capture(a)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
