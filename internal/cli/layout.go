package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
	"github.com/matzehuels/avatarstack/pkg/scene"
)

type layoutOpts struct {
	count   int
	size    int
	padding int
	fit     string
	gap     float64
	asJSON  bool
}

// layoutCommand creates the layout command for printing slot geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{count: 3, size: scene.DefaultSize, gap: ring.DefaultGap}

	cmd := &cobra.Command{
		Use:   "layout [scene.toml]",
		Short: "Print the slot geometry of a composition",
		Long: `Print the slot geometry of a composition.

With a scene file, the scene is loaded (images included, so bounds reflect
their aspect ratio) and laid out. Without one, --count placeholder avatars
are laid out in a --size square. Flags given explicitly override the scene.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := layoutScene(args, opts, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), os.Stdout, s, opts.asJSON)
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of placeholder avatars (no scene)")
	cmd.Flags().IntVar(&opts.size, "size", opts.size, "frame size in pixels")
	cmd.Flags().IntVar(&opts.padding, "padding", 0, "frame padding in pixels")
	cmd.Flags().StringVar(&opts.fit, "fit", "", "fit policy: fit, center (default), start, end")
	cmd.Flags().Float64Var(&opts.gap, "gap", opts.gap, "gap fraction in [0, 1]")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the layout as JSON")

	return cmd
}

// layoutScene resolves the scene to lay out. changed reports whether a flag
// was set on the command line.
func layoutScene(args []string, opts layoutOpts, changed func(string) bool) (*scene.Scene, error) {
	var s *scene.Scene
	if len(args) == 1 {
		loaded, err := scene.Load(args[0])
		if err != nil {
			return nil, err
		}
		s = loaded
	} else {
		s = scene.Placeholder(opts.count, opts.size)
	}

	if changed("size") {
		s.Size = opts.size
	}
	if changed("padding") {
		s.Padding = opts.padding
	}
	if opts.fit != "" {
		s.Fit = opts.fit
	}
	if changed("gap") || len(args) == 0 {
		gap := opts.gap
		s.Gap = &gap
	}
	return s, s.Validate()
}

func (c *CLI) runLayout(ctx context.Context, w io.Writer, s *scene.Scene, asJSON bool) error {
	logger := loggerFromContext(ctx)

	comp, err := s.Build()
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	snap := comp.Snapshot()
	logger.Debugf("Laid out %d slots, radius %.2f", len(snap.Slots), snap.Radius)

	if asJSON {
		data, err := sink.RenderJSON(snap, sink.WithIndent())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	l := sink.BuildLayout(snap)
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%dx%d", l.Width, l.Height))+" "+
		StyleDim.Render(fmt.Sprintf("radius %.2f · offset %.2f · gap %.2f · %s", l.Radius, l.OffsetY, l.Gap, l.Fit)))
	if len(l.Slots) == 0 {
		fmt.Fprintln(w, StyleDim.Render("no slots"))
		return nil
	}
	fmt.Fprintln(w, slotTable(l).Render())
	return nil
}

var slotHeaders = []string{"#", "ID", "Label", "Centre", "Bounds", "Notch"}

func slotRows(l sink.Layout) [][]string {
	rows := make([][]string, 0, len(l.Slots))
	for _, s := range l.Slots {
		id := "-"
		if s.ID != nil {
			id = strconv.Itoa(*s.ID)
		}
		notch := "-"
		if s.Notch != nil {
			notch = fmt.Sprintf("(%.1f, %.1f) r%.1f", s.Notch.X, s.Notch.Y, s.Notch.Radius)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			id,
			s.Label,
			fmt.Sprintf("(%.1f, %.1f)", s.X, s.Y),
			fmt.Sprintf("%gx%g+%g+%g", s.Bounds.Width, s.Bounds.Height, s.Bounds.X, s.Bounds.Y),
			notch,
		})
	}
	return rows
}

func slotTable(l sink.Layout) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(slotHeaders...).
		Rows(slotRows(l)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return slotStyle(row).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
}
