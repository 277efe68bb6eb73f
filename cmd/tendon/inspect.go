package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/tendon"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect RIG",
		Short: "Show a rig's bones, constraints and segmentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadArmature(args[0])
			if err != nil {
				return err
			}
			a.SetLogger(root.logger)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.Title.Render(a.Name))
			fmt.Fprintf(out, "%s iterations=%d damping=%s stabilization=%d\n",
				styles.Muted.Render("solver:"), a.Config().Iterations,
				formatFloat(a.Config().Damping), a.Config().StabilizationPasses)
			fmt.Fprintln(out, boneTable(a))

			seg := a.Segments()
			if seg == nil {
				fmt.Fprintln(out, styles.Muted.Render("no pinned bones"))
				return nil
			}
			fmt.Fprintln(out, styles.Subtitle.Render("segments"))
			writeSegments(out, seg, 0)
			return nil
		},
	}
}

// writeSegments prints the segment tree, one indented line per segment.
func writeSegments(w io.Writer, s *tendon.Segment, depth int) {
	names := make([]string, 0, len(s.Bones()))
	for _, b := range s.Bones() {
		names = append(names, b.Name)
	}
	fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), styles.Highlight.Render(s.Root().Name), strings.Join(names, " > "))
	for _, c := range s.Children() {
		writeSegments(w, c, depth+1)
	}
}
