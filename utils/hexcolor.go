package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHexColor converts a "#RRGGBB" string into RGB components normalized
// to [0, 1].
func ParseHexColor(s string) (r, g, b float64, err error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
	}

	channels := make([]float64, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
		}
		channels[i] = float64(v) / 255
	}

	return channels[0], channels[1], channels[2], nil
}
