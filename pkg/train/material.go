package train

import (
	"fmt"
	"strconv"
	"strings"
)

// Material is a named surface colour shared by any number of gears.
type Material struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// DefaultMaterial is assigned to gears created without one.
var DefaultMaterial = &Material{Name: "default", Color: "#B0B0B0"}

// RGB parses Color as #RRGGBB and returns components in [0,1].
func (m *Material) RGB() (r, g, b float64, err error) {
	hex := strings.TrimPrefix(m.Color, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("material %s: color %q is not #RRGGBB", m.Name, m.Color)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("material %s: parse color %q: %w", m.Name, m.Color, err)
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255, nil
}
