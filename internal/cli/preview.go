package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/layout"
	"github.com/matzehuels/avatarstack/pkg/scene"
)

const (
	previewMinRows     = 8
	previewDefaultRows = 18
	gapStep            = 0.05
	animateInterval    = 60 * time.Millisecond
)

var previewNames = []string{
	"Ada Lovelace", "Grace Hopper", "Alan Turing", "Barbara Liskov",
	"Edsger Dijkstra", "Frances Allen", "Ken Thompson", "Radia Perlman",
}

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		count int
		fit   string
		gap   float64
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Interactively add and remove avatars in the terminal",
		Long: `Interactively add and remove avatars in the terminal.

Keys:
  a      add an avatar           r      remove the last avatar
  x      remove the selected     tab    select the next avatar
  i      replace the avatar id 1 c      clear
  f      cycle the fit policy    +/-    widen/narrow the gap
  g      animate the gap         q      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := layout.DefaultFit
			if fit != "" {
				parsed, err := layout.ParseFit(fit)
				if err != nil {
					return err
				}
				f = parsed
			}
			m := newPreviewModel(count, f, gap)
			c.Logger.Debug("starting preview", "count", count, "fit", f, "gap", gap)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of avatars to start with")
	cmd.Flags().StringVar(&fit, "fit", "", "initial fit policy")
	cmd.Flags().Float64Var(&gap, "gap", ring.DefaultGap, "initial gap fraction")

	return cmd
}

type animateMsg time.Time

// previewModel is the bubbletea model behind the preview command. It owns
// its composition; all mutation happens in Update.
type previewModel struct {
	comp      *ring.Composition
	rows      int
	selected  int
	added     int
	redraws   int
	animating bool
	phase     float64
	status    string
}

func newPreviewModel(count int, fit layout.Fit, gap float64) *previewModel {
	m := &previewModel{rows: previewDefaultRows}
	m.comp = ring.New(
		ring.WithHost(ring.HostFunc(func() { m.redraws++ })),
		ring.WithFit(fit),
		ring.WithGap(gap),
	)
	m.comp.SetContentSize(float64(m.rows))
	for i := 0; i < count; i++ {
		m.add()
	}
	m.status = ""
	return m
}

func (m *previewModel) Init() tea.Cmd { return nil }

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case animateMsg:
		if !m.animating {
			return m, nil
		}
		m.phase += 0.15
		m.comp.SetGap(0.5 + 0.5*math.Sin(m.phase))
		return m, animate()
	}
	return m, nil
}

func (m *previewModel) handleKey(key string) tea.Cmd {
	m.status = ""
	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "a":
		m.add()
	case "r":
		if n := m.comp.Len(); n > 0 {
			m.comp.RemoveAt(n - 1)
		}
	case "x":
		if m.comp.Len() > 0 {
			m.comp.RemoveAt(m.selected)
		}
	case "tab":
		if n := m.comp.Len(); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case "i":
		if m.comp.AddWithID(1, scene.NewItem(m.nextName(), nil)) {
			m.added++
		} else {
			m.status = "composition is full"
		}
	case "f":
		m.comp.SetFit(m.comp.Fit().Next())
	case "+", "=":
		m.comp.SetGap(m.comp.Gap() + gapStep)
	case "-":
		m.comp.SetGap(m.comp.Gap() - gapStep)
	case "g":
		m.animating = !m.animating
		if m.animating {
			m.phase = math.Asin(2*m.comp.Gap() - 1)
			return animate()
		}
	case "c":
		m.comp.Clear()
	}
	m.clampSelection()
	return nil
}

func animate() tea.Cmd {
	return tea.Tick(animateInterval, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func (m *previewModel) add() {
	if !m.comp.Add(scene.NewItem(m.nextName(), nil)) {
		m.status = "composition is full"
		return
	}
	m.added++
}

func (m *previewModel) nextName() string {
	return previewNames[m.added%len(previewNames)]
}

func (m *previewModel) clampSelection() {
	if m.selected >= m.comp.Len() {
		m.selected = max(0, m.comp.Len()-1)
	}
}

// resize fits the canvas to the terminal. Cells are roughly twice as tall
// as wide, so the canvas is 2*rows columns wide.
func (m *previewModel) resize(width, height int) {
	rows := min(height-8, width/2)
	m.rows = max(rows, previewMinRows)
	m.comp.SetContentSize(float64(m.rows))
}

func (m *previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("avatarstack preview"))
	b.WriteString("\n\n")
	b.WriteString(renderCanvas(m.comp.Snapshot(), m.rows, m.selected))
	b.WriteString("\n")

	for i := 0; i < m.comp.Len(); i++ {
		slot := m.comp.Slot(i)
		cursor := "  "
		if i == m.selected {
			cursor = "▸ "
		}
		id := ""
		if slot.ID != ring.NoID {
			id = fmt.Sprintf(" #%d", slot.ID)
		}
		label := ""
		if it, ok := slot.Element.(*scene.Item); ok {
			label = it.Label()
		}
		b.WriteString(cursor + slotStyle(i).Render("●") + " " + StyleValue.Render(label) + StyleDim.Render(id) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("fit %s · gap %.2f · radius %.2f · %d/%d · redraws %d",
		m.comp.Fit(), m.comp.Gap(), m.comp.Radius(), m.comp.Len(), ring.MaxSlots, m.redraws)))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status) + "\n")
	}
	b.WriteString(StyleDim.Render("a add  r remove  x remove selected  tab select  i replace #1  f fit  +/- gap  g animate  c clear  q quit"))
	return b.String()
}

// cellGrid samples s at the centre of each terminal cell and returns the
// visible slot index per cell, -1 for background.
func cellGrid(s ring.Snapshot, rows int) [][]int {
	cols := rows * 2
	origin := s.Origin()
	grid := make([][]int, rows)
	for y := range grid {
		grid[y] = make([]int, cols)
		for x := range grid[y] {
			p := layout.Point{X: (float64(x) + 0.5) / 2, Y: float64(y) + 0.5}
			grid[y][x] = s.SlotAt(layout.Point{X: p.X - origin.X, Y: p.Y - origin.Y})
		}
	}
	return grid
}

func renderCanvas(s ring.Snapshot, rows, selected int) string {
	var b strings.Builder
	for _, row := range cellGrid(s, rows) {
		for _, i := range row {
			switch {
			case i < 0:
				b.WriteByte(' ')
			case i == selected:
				b.WriteString(slotStyle(i).Render("▓"))
			default:
				b.WriteString(slotStyle(i).Render("█"))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
