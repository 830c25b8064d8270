package enums

import (
	"fmt"
	"strings"
)

// Variant is a bulk-size option for a product; every variant is a multiple of
// the 10kg reference weight.
type Variant string

const (
	Variant10kg Variant = "10kg"
	Variant20kg Variant = "20kg"
	Variant30kg Variant = "30kg"
)

var validVariants = []Variant{
	Variant10kg,
	Variant20kg,
	Variant30kg,
}

// Variants returns the closed set in display order.
func Variants() []Variant {
	out := make([]Variant, len(validVariants))
	copy(out, validVariants)
	return out
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// IsValid reports whether the value is a known Variant.
func (v Variant) IsValid() bool {
	for _, candidate := range validVariants {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariant converts raw input into a Variant. The catalog's display form
// ("10 kg") is accepted alongside the canonical one.
func ParseVariant(value string) (Variant, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	for _, candidate := range validVariants {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant %q", value)
}
