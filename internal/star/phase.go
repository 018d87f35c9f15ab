package star

import "fmt"

// Phase is a discrete stage in a star's life cycle. Values use the
// snake_case spelling that appears in exported trajectory documents.
type Phase string

const (
	PreMainSequence       Phase = "pre_main_sequence"
	MainSequence          Phase = "main_sequence"
	RedGiant              Phase = "red_giant"
	HorizontalBranch      Phase = "horizontal_branch"
	AsymptoticGiantBranch Phase = "asymptotic_giant_branch"
	PlanetaryNebula       Phase = "planetary_nebula"
	WhiteDwarf            Phase = "white_dwarf"
	Supernova             Phase = "supernova"
	NeutronStar           Phase = "neutron_star"
	BlackHole             Phase = "black_hole"
)

// Phases lists every phase in evolutionary order. The enumeration is closed:
// a Phase outside this list is rejected by the table and the integrator.
var Phases = []Phase{
	PreMainSequence,
	MainSequence,
	RedGiant,
	HorizontalBranch,
	AsymptoticGiantBranch,
	PlanetaryNebula,
	WhiteDwarf,
	Supernova,
	NeutronStar,
	BlackHole,
}

// Valid reports whether p is a member of the closed enumeration.
func (p Phase) Valid() bool {
	switch p {
	case PreMainSequence, MainSequence, RedGiant, HorizontalBranch,
		AsymptoticGiantBranch, PlanetaryNebula, WhiteDwarf,
		Supernova, NeutronStar, BlackHole:
		return true
	}
	return false
}

// Terminal reports whether p has no outgoing transition. A run ends the
// moment its current state enters a terminal phase.
func (p Phase) Terminal() bool {
	switch p {
	case WhiteDwarf, NeutronStar, BlackHole:
		return true
	}
	return false
}

func (p Phase) String() string { return string(p) }

// ParsePhase converts a stage name into a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
	}
	return p, nil
}
