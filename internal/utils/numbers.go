package utils

import "strconv"

// Float32ToFloat64 widens f without exposing float32 rounding noise, so
// 0.8 becomes 0.8 rather than 0.800000011920929.
func Float32ToFloat64(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'f', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}
