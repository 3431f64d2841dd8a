package util

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", 0.0, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

func FormatOmega(omega float64) string {
	switch {
	case omega >= 1e6:
		return fmt.Sprintf("%7.3f Mrad/s", omega/1e6)
	case omega >= 1e3:
		return fmt.Sprintf("%7.3f krad/s", omega/1e3)
	default:
		return fmt.Sprintf("%7.3f rad/s ", omega)
	}
}

func FormatMagnitudePhase(name string, value, phase float64) string {
	return fmt.Sprintf("%s=%s<%sdeg", name, FormatMagnitude(value), FormatPhase(phase))
}

func FormatMagnitude(value float64) string {
	if value >= 1000 || (value < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value) // "1.00e+03" or "5.43e-05"
	}
	return fmt.Sprintf("%8.3g", value) // "  732.5 "
}

func FormatPhase(value float64) string {
	return fmt.Sprintf("%6.1f", value) // "  90.0"
}

// FormatPhasor prints a phasor as magnitude<phase in degrees.
func FormatPhasor(value complex128) string {
	phase := 0.0
	if value != 0 {
		phase = cmplx.Phase(value) * 180 / math.Pi
	}
	return fmt.Sprintf("%s<%sdeg", FormatMagnitude(cmplx.Abs(value)), FormatPhase(phase))
}

// FormatWaveform writes dc + |ac|·sin(ωt + arg ac), leaving out the parts
// that are implicit: a zero term, a unit magnitude, a unit omega, a zero
// phase. Both zero gives "0".
func FormatWaveform(dc float64, ac complex128, omega float64) string {
	var sb strings.Builder
	if dc != 0 {
		sb.WriteString(formatNumber(dc))
	}

	mag := cmplx.Abs(ac)
	if mag != 0 {
		if dc != 0 {
			sb.WriteString(" + ")
		}
		if mag != 1 {
			sb.WriteString(formatNumber(mag) + "⋅")
		}
		sb.WriteString("sin(")
		if omega != 1 {
			sb.WriteString(formatNumber(omega))
		}
		sb.WriteString("t")
		switch phase := cmplx.Phase(ac); {
		case phase > 0:
			sb.WriteString(" + " + formatNumber(phase))
		case phase < 0:
			sb.WriteString(" - " + formatNumber(-phase))
		}
		sb.WriteString(")")
	}

	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}

// formatNumber keeps at most 5 decimals, without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e5)/1e5, 'f', -1, 64)
}
