// Package lights drives Hue fixtures through team color sequences.
package lights

import (
	"fmt"
	"sort"
	"strings"
)

// Color is a named hue/saturation/brightness triple in Hue bridge units.
type Color struct {
	Name string `json:"name"`
	Hue  uint16 `json:"hue"`
	Sat  uint8  `json:"sat"`
	Bri  uint8  `json:"bri"`
}

// Hue is 0-65535; Sat and Bri are 0-254.
var (
	Gold      = Color{Name: "gold", Hue: 6926, Sat: 89, Bri: 254}
	Blue      = Color{Name: "blue", Hue: 46000, Sat: 254, Bri: 254}
	Red       = Color{Name: "red", Hue: 63708, Sat: 237, Bri: 254}
	DarkGreen = Color{Name: "dark-green", Hue: 25500, Sat: 254, Bri: 120}
	Silver    = Color{Name: "silver", Hue: 8418, Sat: 20, Bri: 200}
)

var namedColors = map[string]Color{
	Gold.Name:      Gold,
	Blue.Name:      Blue,
	Red.Name:       Red,
	DarkGreen.Name: DarkGreen,
	Silver.Name:    Silver,
}

// ColorByName looks up a named color, ignoring case.
func ColorByName(name string) (Color, error) {
	c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Color{}, fmt.Errorf("unknown color %q (known: %s)", name, strings.Join(ColorNames(), ", "))
	}
	return c, nil
}

func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State is the body of a fixture state PUT.
type State struct {
	On  bool   `json:"on"`
	Hue uint16 `json:"hue"`
	Sat uint8  `json:"sat"`
	Bri uint8  `json:"bri"`
}

// State returns the "on" state for the color.
func (c Color) State() State {
	return State{On: true, Hue: c.Hue, Sat: c.Sat, Bri: c.Bri}
}
