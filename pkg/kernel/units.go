package kernel

import (
	"fmt"
	"strings"
)

// unitTable maps a unit name to millimetres per unit.
var unitTable = map[string]float64{
	"um":   0.001,
	"mm":   1,
	"cm":   10,
	"m":    1000,
	"km":   1e6,
	"in":   25.4,
	"ft":   304.8,
	"yd":   914.4,
	"mil":  0.0254,
	"inch": 25.4,
	"feet": 304.8,
}

// Local2mm returns the number of millimetres in one unit of the named unit
// system. Names are case-insensitive.
func Local2mm(name string) (float64, error) {
	f, ok := unitTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", name)
	}
	return f, nil
}
