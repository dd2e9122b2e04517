package units

import "math"

// No negative values
func KwToW(kw float64) uint32 {
	if kw < 0 {
		return 0
	}
	return uint32(math.Round(kw * 1000))
}

func WToKw(w uint32) float64 {
	return float64(w) / 1000
}

// Convert kWh to Wh for storage - No negative values
func KwhToWh(kwh float64) uint32 {
	if kwh < 0 {
		return 0
	}
	return uint32(math.Round(kwh * 1000))
}

func WhToKwh(wh uint32) float64 {
	return float64(wh) / 1000
}

// The inverter reports power registers as unsigned 16-bit values.
// Values above 32767 wrap around and represent negative power.
func Signed16(raw float64) float64 {
	if raw >= 32768 {
		return raw - 65536
	}
	return raw
}
