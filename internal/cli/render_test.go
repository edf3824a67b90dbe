package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

const teamTOML = `
size = 96
fit = "start"

[[elements]]
id = 1
label = "Ada Lovelace"
color = "#d33"

[[elements]]
label = "Grace Hopper"

[[elements]]
label = "Alan Turing"
`

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "team.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietCLI() *CLI {
	return New(&bytes.Buffer{}, log.InfoLevel)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png,json", []string{"svg", "png", "json"}},
		{" png , dot ,", []string{"png", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "scenes/team.toml", "scenes/team"},
		{"out/avatar.svg", "team.toml", "out/avatar"},
		{"out/avatar.graph.svg", "team.toml", "out/avatar"},
		{"out/avatar", "team.toml", "out/avatar"},
		{"out/avatar.gif", "team.toml", "out/avatar.gif"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	single := outputPaths("team.toml", "me.svg", []string{"svg"})
	if single["svg"] != "me.svg" {
		t.Errorf("single format should use -o verbatim, got %q", single["svg"])
	}

	multi := outputPaths("team.toml", "", []string{"svg", "png", "graph"})
	want := map[string]string{"svg": "team.svg", "png": "team.png", "graph": "team.graph.svg"}
	for f, p := range want {
		if multi[f] != p {
			t.Errorf("outputPaths[%s] = %q, want %q", f, multi[f], p)
		}
	}
}

func TestRunRender(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeScene(t, teamTOML)
	out := filepath.Join(t.TempDir(), "nested", "avatar")

	err := quietCLI().runRender(context.Background(), input, []string{"svg", "png", "json"}, renderOpts{output: out, scale: 1})
	if err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	checks := map[string]string{
		out + ".svg":  "<svg",
		out + ".png":  "\x89PNG",
		out + ".json": `"slots"`,
	}
	for path, marker := range checks {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("missing output %s: %v", path, err)
			continue
		}
		if !strings.Contains(string(data), marker) {
			t.Errorf("%s does not contain %q", path, marker)
		}
	}
}

func TestRunRenderSkipImages(t *testing.T) {
	input := writeScene(t, teamTOML+`
[[elements]]
label = "Barbara Liskov"
image = "missing.png"
`)
	out := filepath.Join(t.TempDir(), "avatar.svg")
	c := quietCLI()

	if err := c.runRender(context.Background(), input, []string{"svg"}, renderOpts{output: out, noCache: true}); err == nil {
		t.Fatal("missing image should fail the render")
	}
	if err := c.runRender(context.Background(), input, []string{"svg"}, renderOpts{output: out, noCache: true, skipImages: true}); err != nil {
		t.Fatalf("--no-images render error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRunRenderMissingScene(t *testing.T) {
	err := quietCLI().runRender(context.Background(), filepath.Join(t.TempDir(), "nope.toml"), []string{"svg"}, renderOpts{noCache: true})
	if err == nil {
		t.Error("missing scene should fail")
	}
}
