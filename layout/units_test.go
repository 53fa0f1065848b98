package layout

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParseLengthValue(t *testing.T) {
	cases := []struct {
		in   string
		want Length
		ok   bool
	}{
		{"12pt", Length{12, UnitPT}, true},
		{"0.75in", Length{0.75, UnitIN}, true},
		{"2.5cm", Length{2.5, UnitCM}, true},
		{"10mm", Length{10, UnitMM}, true},
		{"42", Length{42, UnitNone}, true},
		{" 6 pt ", Length{6, UnitPT}, true},
		{"12PT", Length{12, UnitPT}, true},
		{"", Length{}, false},
		{"abc", Length{}, false},
		{"12px", Length{}, false},
	}
	for _, c := range cases {
		got, ok := ParseLengthValue(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseLengthValue(%q) = %+v, %v; want %+v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestLengthMM(t *testing.T) {
	cases := []struct {
		in   Length
		want float64
	}{
		{Length{10, UnitMM}, 10},
		{Length{2, UnitCM}, 20},
		{Length{1, UnitIN}, 25.4},
		{Length{12, UnitPT}, 12 * PtToMm},
		{Length{7, UnitNone}, 7},
	}
	for _, c := range cases {
		if got := c.in.MM(); !approx(got, c.want) {
			t.Errorf("%+v.MM() = %g; want %g", c.in, got, c.want)
		}
	}
}

func TestParseLength(t *testing.T) {
	if got := ParseLength("0.75in"); !approx(got, 19.05) {
		t.Errorf("ParseLength(0.75in) = %g", got)
	}
	if got := ParseLength("junk"); got != 0 {
		t.Errorf("invalid input should yield 0, got %g", got)
	}
}

func TestParseDimension(t *testing.T) {
	if got := ParseDimension("40%", 200); !approx(got, 80) {
		t.Errorf("ParseDimension(40%%, 200) = %g", got)
	}
	if got := ParseDimension("1in", 200); !approx(got, 25.4) {
		t.Errorf("ParseDimension(1in) = %g", got)
	}
	if got := ParseDimension("x%", 200); got != 0 {
		t.Errorf("invalid percentage should yield 0, got %g", got)
	}
}

func TestParseFraction(t *testing.T) {
	if got := ParseFraction("40%"); !approx(got, 0.4) {
		t.Errorf("ParseFraction(40%%) = %g", got)
	}
	if got := ParseFraction("0.4"); !approx(got, 0.4) {
		t.Errorf("ParseFraction(0.4) = %g", got)
	}
	if got := ParseFraction("wide"); got != 0 {
		t.Errorf("invalid fraction should yield 0, got %g", got)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#1f2937", Color{0x1f, 0x29, 0x37}, true},
		{"#abc", Color{0xaa, 0xbb, 0xcc}, true},
		{"#11223344", Color{0x11, 0x22, 0x33}, true},
		{"1f2937", Color{0x1f, 0x29, 0x37}, true},
		{"#12", Color{}, false},
		{"#gggggg", Color{}, false},
	}
	for _, c := range cases {
		got, ok := ParseColor(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseColor(%q) = %+v, %v; want %+v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
