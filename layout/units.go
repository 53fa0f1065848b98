package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe helpers for lengths. The layout core works in
// millimeters; frontends parse author-facing strings like "12pt" or "0.75in"
// through these helpers at the boundary.

// Unit represents the unit a length value was authored in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// Length preserves a numeric value with its authored unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// IsZero reports whether the length has a zero value.
func (l Length) IsZero() bool { return l.Value == 0 }

// MM converts the length to millimeters. Unit-less values are taken as mm.
func (l Length) MM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ParseLengthValue parses a length string preserving its unit.
// Returns ok=false when the numeric part does not parse.
func ParseLengthValue(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// ParseLength parses a length string and returns millimeters; invalid input
// yields 0.
func ParseLength(value string) float64 {
	l, ok := ParseLengthValue(value)
	if !ok {
		return 0
	}
	return l.MM()
}

// ParseDimension parses a length that may also be a percentage of reference.
func ParseDimension(value string, reference float64) float64 {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return reference * f / 100
	}
	return ParseLength(v)
}

// ParseFraction parses either a percentage ("40%") or a bare fraction ("0.4")
// into the 0..1 range. Invalid input yields 0.
func ParseFraction(value string) float64 {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return f / 100
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa hex colors (alpha ignored).
func ParseColor(value string) (Color, bool) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		r, ok1 := hexByte(strings.Repeat(v[0:1], 2))
		g, ok2 := hexByte(strings.Repeat(v[1:2], 2))
		b, ok3 := hexByte(strings.Repeat(v[2:3], 2))
		return Color{R: r, G: g, B: b}, ok1 && ok2 && ok3
	case 6, 8:
		r, ok1 := hexByte(v[0:2])
		g, ok2 := hexByte(v[2:4])
		b, ok3 := hexByte(v[4:6])
		return Color{R: r, G: g, B: b}, ok1 && ok2 && ok3
	default:
		return Color{}, false
	}
}

func hexByte(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
