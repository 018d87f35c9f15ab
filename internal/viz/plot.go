// Package viz renders diagnostic terminal plots of simulated tracks. These
// are for eyeballing a run; the real visualizer consumes the JSON export.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/stellarsim/internal/star"
)

const (
	defaultHeight = 16
	defaultWidth  = 80
)

// LuminosityTrack plots log10 luminosity against step index. Log scale keeps
// the pre-main-sequence dip and the giant-branch rise on one axis.
func LuminosityTrack(t *star.Trajectory) string {
	series := make([]float64, 0, t.Len())
	for _, s := range t.States {
		series = append(series, safeLog10(s.Luminosity))
	}
	caption := fmt.Sprintf("%s  log10(L/Lsun)  final: %s", t.StarID, t.FinalPhase())
	return plot(series, caption)
}

// TemperatureTrack plots surface temperature against step index.
func TemperatureTrack(t *star.Trajectory) string {
	series := make([]float64, 0, t.Len())
	for _, s := range t.States {
		series = append(series, s.SurfaceTemperature)
	}
	caption := fmt.Sprintf("%s  Teff [K]  final: %s", t.StarID, t.FinalPhase())
	return plot(series, caption)
}

// PhaseTimeline lists each phase with its entry step and age, one line per
// phase visited.
func PhaseTimeline(t *star.Trajectory) string {
	var b strings.Builder
	var last star.Phase
	for _, s := range t.States {
		if s.Phase == last {
			continue
		}
		last = s.Phase
		fmt.Fprintf(&b, "step %5d  age %12.3f Myr  %s\n", s.TimeStepIndex, s.Age, s.Phase)
	}
	return b.String()
}

func plot(series []float64, caption string) string {
	if len(series) < 2 {
		return caption + "\n(not enough states to plot)\n"
	}
	return asciigraph.Plot(series,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(caption),
	)
}

func safeLog10(v float64) float64 {
	if v <= 0 {
		return math.Log10(1e-10)
	}
	return math.Log10(v)
}
