// Command roomctl is a debug/inspection front-end for the engine: it
// builds a small shoebox-room scene, drives engine.Context's public API
// once per tick, and renders a live view of the elapsed time, the number
// of active image-source slots, and the latest IEM cycle tag. It does not
// list individual paths or FDN channel levels, and it is not a
// room-editing GUI.
package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/jmannall/roomacoustigo/engine"
	"github.com/jmannall/roomacoustigo/fdn"
	"github.com/jmannall/roomacoustigo/spatial"
)

var (
	flagConfig = pflag.StringP("config", "c", "", "path to an engine config YAML file (defaults built in)")
	flagVolume = pflag.Float64P("volume", "v", 60.0, "shoebox room volume in cubic metres, for the late-reverb estimate")
	flagTick   = pflag.DurationP("tick", "t", 100*time.Millisecond, "UI refresh period")
)

func main() {
	pflag.Parse()

	cfg := engine.DefaultConfig()
	if *flagConfig != "" {
		loaded, err := engine.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "roomctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx := engine.New(cfg)
	ctx.UseRenderer(&inspectingRenderer{})
	if !ctx.Init() {
		fmt.Fprintln(os.Stderr, "roomctl: engine init failed, check config")
		os.Exit(1)
	}
	defer ctx.Exit()

	buildShoebox(ctx, cfg.NumBands(), 4, 5, 3)
	ctx.UpdateListener(spatial.NewVec3(2, 1.5, 1.5), spatial.IdentityQuat)
	srcID := ctx.InitSource()
	ctx.UpdateSource(srcID, spatial.NewVec3(3, 1.5, 2), spatial.IdentityQuat)

	if !ctx.InitLateReverb(*flagVolume, []float64{4, 5, 3}, fdn.MatrixHouseholder) {
		fmt.Fprintln(os.Stderr, "roomctl: init_late_reverb failed")
		os.Exit(1)
	}
	ctx.UpdateReverbTime(engine.ReverbFormulaSabine)

	m := newModel(ctx, *flagTick)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "roomctl: %v\n", err)
		os.Exit(1)
	}
}

// buildShoebox adds six rectangular walls bounding a w x d x h room, each
// with a flat mid-range-absorptive finish, exercising InitWall's polygon
// area derivation across a mix of floor/ceiling/wall orientations.
func buildShoebox(ctx *engine.Context, numBands int, w, d, h float64) {
	absorb := make([]float64, numBands)
	for i := range absorb {
		absorb[i] = 0.15
	}

	v := func(x, y, z float64) spatial.Vec3 { return spatial.NewVec3(x, y, z) }
	faces := [][]spatial.Vec3{
		{v(0, 0, 0), v(w, 0, 0), v(w, 0, d), v(0, 0, d)},             // floor
		{v(0, h, d), v(w, h, d), v(w, h, 0), v(0, h, 0)},             // ceiling
		{v(0, 0, 0), v(0, h, 0), v(w, h, 0), v(w, 0, 0)},             // front wall
		{v(w, 0, d), v(w, h, d), v(0, h, d), v(0, 0, d)},             // back wall
		{v(0, 0, d), v(0, h, d), v(0, h, 0), v(0, 0, 0)},             // left wall
		{v(w, 0, 0), v(w, h, 0), v(w, h, d), v(w, 0, d)},             // right wall
	}
	for _, face := range faces {
		ctx.InitWall(face, absorb)
	}
	ctx.UpdatePlanesAndEdges()
}

type tickMsg time.Time

type model struct {
	ctx  *engine.Context
	tick time.Duration

	stats   engine.Stats
	elapsed time.Duration
	start   time.Time
}

func newModel(ctx *engine.Context, tick time.Duration) model {
	return model{ctx: ctx, tick: tick, start: time.Now()}
}

func (m model) Init() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.stats = m.ctx.Stats()
		m.elapsed = time.Since(m.start)
		return m, tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("roomctl — live scene inspector") + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("elapsed:"), valueStyle.Render(m.elapsed.Round(time.Second).String()))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("active image sources:"), valueStyle.Render(fmt.Sprint(m.stats.ActiveImageSources)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("latest IEM cycle:"), valueStyle.Render(fmt.Sprint(m.stats.LatestCycleTag)))
	b.WriteString("\n" + labelStyle.Render("press q to quit") + "\n")
	return b.String()
}

// inspectingRenderer is a DirectionalRenderer stub: it never loads real
// HRTF data, and renders an equal-power pan purely so roomctl has
// something audible to report on; it exists for inspection, not production
// spatialisation (that remains a third-party collaborator per spec §1).
type inspectingRenderer struct{}

func (inspectingRenderer) LoadSpatialisationFiles(int, [3]string) bool { return true }

func (inspectingRenderer) Spatialise(direction spatial.Vec3, _ engine.SpatialisationMode, x float64) (float64, float64) {
	d := direction.Normalized()
	pan := (d.X + 1) / 2
	if pan < 0 {
		pan = 0
	}
	if pan > 1 {
		pan = 1
	}
	return x * math.Cos(math.Pi/2*pan), x * math.Sin(math.Pi/2*pan)
}
