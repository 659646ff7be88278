package utils

import (
	"fmt"
	"unicode"

	"github.com/gaugesuite/emission-gauge-server/constdef"
)

func IsBlank(str string) bool {
	if str == "" {
		return true
	}

	for _, c := range str {
		if !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

func isIdentRune(c rune) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '.', '_', '-', ':', '@':
		return true
	}
	return false
}

// CheckGaugeIDValidity reports whether the given gauge identifier is
// acceptable: letters, digits and ._-:@ up to the column width.
func CheckGaugeIDValidity(gaugeID string) error {
	if IsBlank(gaugeID) || len(gaugeID) > constdef.MaxGaugeIDLength {
		return fmt.Errorf("invalid gauge id %q: blank or exceeds max length", gaugeID)
	}
	for _, c := range gaugeID {
		if !isIdentRune(c) {
			return fmt.Errorf("invalid gauge id %q: illegal character %q", gaugeID, c)
		}
	}
	return nil
}

// CheckStakerIDValidity reports whether a staker identifier (address) is
// acceptable, with the same character set as gauge ids.
func CheckStakerIDValidity(staker string) error {
	if IsBlank(staker) || len(staker) > constdef.MaxStakerIDLength {
		return fmt.Errorf("invalid staker id %q: blank or exceeds max length", staker)
	}
	for _, c := range staker {
		if !isIdentRune(c) {
			return fmt.Errorf("invalid staker id %q: illegal character %q", staker, c)
		}
	}
	return nil
}

// CheckTypeNameValidity reports whether a gauge type name is acceptable.
func CheckTypeNameValidity(name string) error {
	if IsBlank(name) || len(name) > constdef.MaxTypeNameLength {
		return fmt.Errorf("invalid type name %q: blank or exceeds max length", name)
	}
	return nil
}
