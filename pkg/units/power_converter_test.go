package units

import "testing"

func TestKwToW(t *testing.T) {
	cases := []struct {
		in   float64
		want uint32
	}{
		{0, 0},
		{1.5, 1500},
		{0.0004, 0},
		{0.0005, 1},
		{-2, 0},
	}
	for _, c := range cases {
		if got := KwToW(c.in); got != c.want {
			t.Errorf("KwToW(%v): got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestWToKw(t *testing.T) {
	if got := WToKw(1500); got != 1.5 {
		t.Errorf("WToKw(1500): got %v", got)
	}
}

func TestKwhToWhRoundTrip(t *testing.T) {
	if got := KwhToWh(12345.6); got != 12345600 {
		t.Errorf("KwhToWh(12345.6): got %d", got)
	}
	if got := WhToKwh(12345600); got != 12345.6 {
		t.Errorf("WhToKwh(12345600): got %v", got)
	}
	if got := KwhToWh(-1); got != 0 {
		t.Errorf("KwhToWh(-1): got %d, want 0", got)
	}
}

func TestSigned16(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1500, 1500},
		{32767, 32767},
		{32768, -32768},
		{64736, -800},
		{65535, -1},
	}
	for _, c := range cases {
		if got := Signed16(c.in); got != c.want {
			t.Errorf("Signed16(%v): got %v, want %v", c.in, got, c.want)
		}
	}
}
