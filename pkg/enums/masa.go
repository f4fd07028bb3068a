package enums

import "fmt"

// Masa describes the dough selection for a pupusa line. It is purely
// descriptive and never participates in pricing. The empty value means
// the product has no dough dimension (drinks, sides).
type Masa string

const (
	MasaMaiz  Masa = "maíz"
	MasaArroz Masa = "arroz"
	MasaNone  Masa = ""
)

var validMasas = []Masa{
	MasaMaiz,
	MasaArroz,
	MasaNone,
}

// IsValid reports whether the value matches the canonical masa enum.
func (m Masa) IsValid() bool {
	for _, candidate := range validMasas {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMasa converts the raw string to Masa.
func ParseMasa(value string) (Masa, error) {
	for _, candidate := range validMasas {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid masa %q", value)
}
