package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/avatarstack/pkg/observability"
	"github.com/matzehuels/avatarstack/pkg/pipeline"
	"github.com/matzehuels/avatarstack/pkg/scene"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file (single format) or base path
	formats    string  // comma-separated formats
	scale      float64 // PNG scale factor
	precision  int     // SVG coordinate precision
	debug      bool    // draw slot outlines and notch circles
	noCache    bool    // bypass the local cache entirely
	refresh    bool    // re-render even when cached
	skipImages bool    // draw image slots as their colour
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <scene.toml>",
		Short: "Render a scene to SVG, PNG, JSON, DOT or a graph diagram",
		Long: `Render a scene to one or more output formats.

Formats: svg (default), png, json (slot geometry), dot (graphviz source of
the notch graph) and graph (the notch graph rendered by graphviz).

With a single format, -o names the output file. With several, -o is a base
path and each format adds its own extension. Results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().IntVar(&opts.precision, "precision", 0, "SVG coordinate precision (units per pixel)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "draw slot outlines and notch circles")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().BoolVar(&opts.skipImages, "no-images", false, "draw image slots as solid colour")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, formats []string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := scene.Load(input)
	elements := 0
	if s != nil {
		elements = len(s.Elements)
	}
	observability.Pipeline().OnSceneLoad(ctx, input, elements, time.Since(prog.start), err)
	if err != nil {
		return err
	}
	if opts.skipImages {
		for i := range s.Elements {
			s.Elements[i].Image = ""
		}
	}
	logger.Debugf("Loaded scene: %d elements, %d slots", len(s.Elements), s.SlotCount())

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering "+strings.Join(formats, ", ")+"...")
	spinner.Start()
	result, err := runner.Render(ctx, s, pipeline.Options{
		Formats:   formats,
		Scale:     opts.scale,
		Precision: opts.precision,
		Debug:     opts.debug,
		Refresh:   opts.refresh,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, opts.output, formats)
	for _, format := range formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %s", result.ID))

	printSuccess("Render complete")
	for _, format := range formats {
		printFile(paths[format])
	}
	printStats(s.SlotCount(), len(formats), result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Inspect geometry", appName+" layout "+input)

	return nil
}

// basePath derives the base output path. An empty output strips the
// extension from input; a known format extension is stripped from output.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, f := range pipeline.FormatNames() {
		if ext := pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputPaths maps each format to the file it is written to.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
