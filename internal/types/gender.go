// Package types provides type definitions for structured data used throughout the salon-copy system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Gender selects the catalog section and copy register.
type Gender string

const (
	// GenderLadies is the ladies catalog
	GenderLadies Gender = "ladies"
	// GenderMens is the mens catalog
	GenderMens Gender = "mens"
)

// DefaultGender is used when a request omits the gender.
const DefaultGender = GenderLadies

// ParseGender parses a gender string. An empty string yields DefaultGender.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case "":
		return DefaultGender, nil
	case GenderLadies, GenderMens:
		return Gender(s), nil
	default:
		return "", fmt.Errorf("invalid gender %q: must be %q or %q", s, GenderLadies, GenderMens)
	}
}

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == GenderLadies || g == GenderMens
}

// DisplayName returns the Japanese label used in prompts.
func (g Gender) DisplayName() string {
	if g == GenderMens {
		return "メンズ"
	}
	return "レディース"
}
