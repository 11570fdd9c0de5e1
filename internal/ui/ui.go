// Package ui renders human-readable resolution output on stderr.
package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/meridian/internal/ansi"
	"github.com/papapumpkin/meridian/internal/bodies"
	"github.com/papapumpkin/meridian/internal/provenance"
	"github.com/papapumpkin/meridian/internal/simulation"
	"github.com/papapumpkin/meridian/internal/spice"
)

// Printer writes formatted output. The zero value is not usable; call New.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewTo returns a Printer writing to w.
func NewTo(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Banner prints the program banner.
func (p *Printer) Banner() {
	fmt.Fprintln(p.w, ansi.Bold+ansi.Cyan+"  ╔═══════════════════════════════════╗"+ansi.Reset)
	fmt.Fprintln(p.w, ansi.Bold+ansi.Cyan+"  ║"+ansi.Reset+ansi.Bold+"  MERIDIAN  "+ansi.Dim+"settings resolver"+ansi.Reset+ansi.Bold+ansi.Cyan+"      ║"+ansi.Reset)
	fmt.Fprintln(p.w, ansi.Bold+ansi.Cyan+"  ╚═══════════════════════════════════╝"+ansi.Reset)
	fmt.Fprintln(p.w)
}

// Error prints msg as an error.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, ansi.Wrap("error: ", ansi.Red, ansi.Bold)+msg)
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}

// PassStarted announces a resolution pass for source.
func (p *Printer) PassStarted(source string) {
	fmt.Fprintf(p.w, "\n"+ansi.Bold+ansi.Magenta+"── resolving %s ──"+ansi.Reset+"\n", source)
}

// PassReady summarizes a successful pass.
func (p *Printer) PassReady(c *simulation.Context, took time.Duration) {
	fmt.Fprintf(p.w, ansi.Green+ansi.Bold+"✓ ready"+ansi.Reset+ansi.Dim+" (%s, pass %s)"+ansi.Reset+"\n", took.Round(time.Microsecond), c.PassID)
	fmt.Fprintf(p.w, "  epochs:      [%g, %g] s since J2000\n", c.StartEpoch, c.EndEpoch)
	fmt.Fprintf(p.w, "  frame:       %s / %s\n", c.GlobalFrameOrigin, c.GlobalFrameOrientation)
	if c.Window.Defined() {
		lo, hi := c.Window.Expand(c.StartEpoch, c.EndEpoch)
		fmt.Fprintf(p.w, "  kernels:     %d, preloaded over [%g, %g]\n", len(c.LoadedKernels), lo, hi)
	} else {
		fmt.Fprintf(p.w, "  kernels:     %d, queried on demand\n", len(c.LoadedKernels))
	}
	fmt.Fprintf(p.w, "  bodies:      %d\n", len(c.Bodies))
	fmt.Fprintf(p.w, "  arcs:        %d\n", c.Arcs)
	if c.Integrator != nil {
		fmt.Fprintf(p.w, "  integrator:  %s\n", c.Integrator)
	}
}

// PassFailed reports a failed pass.
func (p *Printer) PassFailed(err error) {
	fmt.Fprintf(p.w, "%s: %v\n", ansi.Wrap("✗ resolution failed", ansi.Red, ansi.Bold), err)
}

// Table colors, matching the ansi palette used elsewhere.
const (
	colorHeader = lipgloss.Color("#00BFFF")
	colorBorder = lipgloss.Color("#636363")
)

// Bodies lists each body's resolved models as a table.
func (p *Printer) Bodies(m bodies.Map) {
	fmt.Fprintln(p.w, "\n"+ansi.Bold+"bodies:"+ansi.Reset)
	if len(m) == 0 {
		fmt.Fprintln(p.w, ansi.Dim+"  (none)"+ansi.Reset)
		return
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("NAME", "EPHEMERIS", "ORIGIN", "ROTATION", "GRAVITY", "MASS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, name := range m.Names() {
		t.Row(bodyRow(name, m[name])...)
	}
	fmt.Fprintln(p.w, t.Render())
}

func bodyRow(name string, s *bodies.Settings) []string {
	eph, origin, rot, grav, mass := "-", "-", "-", "-", "-"
	if s.Ephemeris != nil && s.Ephemeris.Model != nil {
		eph = string(s.Ephemeris.Model.EphemerisKind())
		origin = s.Ephemeris.FrameOrigin
	}
	if s.Rotation != nil && s.Rotation.Model != nil {
		rot = string(s.Rotation.Model.RotationKind())
	}
	if s.Gravity != nil && s.Gravity.Model != nil {
		grav = string(s.Gravity.Model.GravityKind())
	}
	if s.Mass != nil {
		mass = fmt.Sprintf("%.4g kg", *s.Mass)
	}
	return []string{name, eph, origin, rot, grav, mass}
}

// Kernels lists the active kernel set.
func (p *Printer) Kernels(ks []spice.Kernel) {
	if len(ks) == 0 {
		fmt.Fprintln(p.w, ansi.Dim+"no kernels loaded"+ansi.Reset)
		return
	}
	for i, k := range ks {
		fmt.Fprintf(p.w, "  "+ansi.Cyan+"%2d"+ansi.Reset+" %-5s %s "+ansi.Dim+"(%d bytes)"+ansi.Reset+"\n", i, k.Type, k.Path, k.Size)
	}
}

// OrientationData is one row of Earth orientation output. Angles are radians.
type OrientationData struct {
	Time       time.Time
	JulianDay  float64
	Convention string
	ERA        float64
	GMST       float64
	X, Y, S    float64
}

// Orientation prints Earth orientation angles, in radians and degrees.
func (p *Printer) Orientation(d OrientationData) {
	fmt.Fprintf(p.w, ansi.Bold+"%s"+ansi.Reset+ansi.Dim+" (JD %.6f, %s)"+ansi.Reset+"\n", d.Time.UTC().Format(time.RFC3339), d.JulianDay, d.Convention)
	angle := func(label string, rad float64) {
		fmt.Fprintf(p.w, "  %-6s %+.12e rad  %+14.9f°\n", label, rad, rad*180/math.Pi)
	}
	angle("ERA", d.ERA)
	angle("GMST", d.GMST)
	angle("X", d.X)
	angle("Y", d.Y)
	angle("s", d.S)
}

// History lists recorded passes, newest first.
func (p *Printer) History(passes []provenance.Pass) {
	if len(passes) == 0 {
		fmt.Fprintln(p.w, ansi.Dim+"no recorded passes"+ansi.Reset)
		return
	}
	for _, ps := range passes {
		mark, color := "✓", ansi.Green
		if ps.Outcome != provenance.OutcomeReady {
			mark, color = "✗", ansi.Red
		}
		fmt.Fprintf(p.w, "  "+color+"%s"+ansi.Reset+" %s "+ansi.Dim+"%s"+ansi.Reset+" %s", mark, ps.CreatedAt.Format(time.DateTime), ps.PassID, ps.Source)
		if ps.Error != "" {
			fmt.Fprint(p.w, " "+ansi.Wrap("("+ps.Error+")", ansi.Yellow))
		}
		fmt.Fprintln(p.w)
	}
}
