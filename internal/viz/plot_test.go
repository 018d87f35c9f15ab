package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/stellarsim/internal/star"
)

func testTrajectory() *star.Trajectory {
	t := &star.Trajectory{StarID: "sun", InitialMass: 1.0, TerminationReason: star.ReasonTerminalPhase}
	phases := []star.Phase{
		star.PreMainSequence, star.MainSequence, star.MainSequence,
		star.RedGiant, star.WhiteDwarf,
	}
	for i, p := range phases {
		t.Append(star.StateVector{
			StarID: "sun", TimeStepIndex: i, Age: float64(i) * 100,
			Mass: 1.0, Luminosity: float64(i + 1), Radius: 1.0,
			SurfaceTemperature: 5000 + float64(i)*100, Phase: p,
		})
	}
	return t
}

func TestLuminosityTrack(t *testing.T) {
	out := LuminosityTrack(testTrajectory())
	if !strings.Contains(out, "log10(L/Lsun)") {
		t.Errorf("missing caption: %q", out)
	}
	if !strings.Contains(out, "white_dwarf") {
		t.Errorf("missing final phase: %q", out)
	}
}

func TestLuminosityTrack_ZeroLuminosity(t *testing.T) {
	traj := &star.Trajectory{StarID: "bh"}
	traj.Append(star.StateVector{StarID: "bh", Luminosity: 1.0, Phase: star.Supernova})
	traj.Append(star.StateVector{StarID: "bh", TimeStepIndex: 1, Luminosity: 0, Phase: star.BlackHole})

	// A dark remnant must not produce -Inf in the series.
	out := LuminosityTrack(traj)
	if strings.Contains(out, "Inf") || strings.Contains(out, "NaN") {
		t.Errorf("non-finite values leaked into the plot: %q", out)
	}
}

func TestTemperatureTrack(t *testing.T) {
	out := TemperatureTrack(testTrajectory())
	if !strings.Contains(out, "Teff") {
		t.Errorf("missing caption: %q", out)
	}
}

func TestPlot_TooShort(t *testing.T) {
	traj := &star.Trajectory{StarID: "stub"}
	traj.Append(star.StateVector{StarID: "stub", Luminosity: 1.0})

	out := LuminosityTrack(traj)
	if !strings.Contains(out, "not enough states") {
		t.Errorf("expected the short-series notice, got %q", out)
	}
}

func TestPhaseTimeline(t *testing.T) {
	out := PhaseTimeline(testTrajectory())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 phase entries, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "pre_main_sequence") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[3], "white_dwarf") {
		t.Errorf("last line = %q", lines[3])
	}
}
