package util

import (
	"fmt"
	"strconv"

	"github.com/sgrayson/netreach/internal/models"
)

// FormatValue renders a parameter value with its unit for display
// (e.g. "3000ms", "5s", "3").
func FormatValue(unit models.Unit, v float64) string {
	switch unit {
	case models.UnitMillis:
		return trimFloat(v) + "ms"
	case models.UnitSeconds:
		return trimFloat(v) + "s"
	case models.UnitCount:
		return strconv.Itoa(int(v))
	default:
		return trimFloat(v)
	}
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%g", v)
}
