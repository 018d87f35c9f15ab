package phasetable

import (
	"math"

	"github.com/san-kum/stellarsim/internal/star"
)

// Parametrized physical relations in solar units (M☉, L☉, R☉, Kelvin, Myr).
// These are the classical coarse fits, not stellar structure: good enough to
// place a star on a believable track, cheap enough to run for a whole
// catalog.

// SolarTeff is the effective temperature of the Sun in Kelvin.
const SolarTeff = 5772.0

// solarLifetime is the solar nuclear (main-sequence) lifetime in Myr.
const solarLifetime = 1e4

// ZAMSLuminosity returns the zero-age main-sequence luminosity for a star of
// mass m, using the piecewise mass-luminosity power law.
func ZAMSLuminosity(m float64) float64 {
	switch {
	case m < 0.43:
		return 0.23 * math.Pow(m, 2.3)
	case m < 2:
		return math.Pow(m, 4)
	case m < 20:
		return 1.4 * math.Pow(m, 3.5)
	default:
		// Near-linear regime for very massive stars, matched at 20 M☉.
		return 2500 * m
	}
}

// ZAMSRadius returns the zero-age main-sequence radius for a star of mass m.
func ZAMSRadius(m float64) float64 {
	if m < 1 {
		return math.Pow(m, 0.8)
	}
	return math.Pow(m, 0.57)
}

// EffectiveTemp derives surface temperature from luminosity and radius via
// Stefan-Boltzmann in solar units: T/T☉ = (L / R²)^(1/4). Temperature is
// always derived, never integrated, so L, R and T stay mutually consistent.
func EffectiveTemp(lum, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	return SolarTeff * math.Pow(lum/(radius*radius), 0.25)
}

// NuclearLifetime returns the nuclear-burning lifetime in Myr for a star of
// mass m and metallicity z: t ∝ M/L, scaled linearly in metallicity around
// solar Z = 0.02 (metal-rich stars burn slightly longer).
func NuclearLifetime(m, z float64) float64 {
	base := solarLifetime * m / ZAMSLuminosity(m)
	metal := 1 + 2*(z-0.02)
	if metal < 0.1 {
		metal = 0.1
	}
	return base * metal
}

// InitialState builds the time-step-zero StateVector for a newly formed
// star: a contracting protostar, oversized and overluminous relative to its
// ZAMS values, entering the pre-main-sequence phase.
func InitialState(id string, mass, metallicity, seedAge float64) star.StateVector {
	lum := 2 * ZAMSLuminosity(mass)
	radius := 4 * ZAMSRadius(mass)
	return star.StateVector{
		StarID:             id,
		TimeStepIndex:      0,
		Age:                seedAge,
		Mass:               mass,
		Luminosity:         lum,
		Radius:             radius,
		SurfaceTemperature: EffectiveTemp(lum, radius),
		Phase:              star.PreMainSequence,
		InitialMass:        mass,
		Metallicity:        metallicity,
		PhaseStart:         seedAge,
	}
}
