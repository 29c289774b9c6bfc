package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TemperatureUnit is the scale an oven temperature is written in
type TemperatureUnit string

const (
	Fahrenheit TemperatureUnit = "F"
	Celsius    TemperatureUnit = "C"
)

// OvenTemperature is a recipe's baking temperature
type OvenTemperature struct {
	Value float64         `json:"value"`
	Unit  TemperatureUnit `json:"unit"`
}

var ovenTempPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*(?:°|º|deg(?:rees)?)?\s*([FfCc])?\s*$`)

// ParseOvenTemperature reads values like "350°F", "175 C" or "350".
// A bare number is taken as Fahrenheit.
func ParseOvenTemperature(s string) (OvenTemperature, error) {
	m := ovenTempPattern.FindStringSubmatch(s)
	if m == nil {
		return OvenTemperature{}, fmt.Errorf("invalid oven temperature %q", s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return OvenTemperature{}, fmt.Errorf("invalid oven temperature %q: %w", s, err)
	}
	unit := Fahrenheit
	if strings.EqualFold(m[2], "C") {
		unit = Celsius
	}
	return OvenTemperature{Value: v, Unit: unit}, nil
}

// Fahrenheit returns the temperature in degrees Fahrenheit
func (t OvenTemperature) Fahrenheit() float64 {
	if t.Unit == Celsius {
		return t.Value*9/5 + 32
	}
	return t.Value
}

// Celsius returns the temperature in degrees Celsius
func (t OvenTemperature) Celsius() float64 {
	if t.Unit == Celsius {
		return t.Value
	}
	return (t.Value - 32) * 5 / 9
}

// String renders both scales rounded to whole degrees, e.g. "350°F / 177°C"
func (t OvenTemperature) String() string {
	return fmt.Sprintf("%d°F / %d°C", int(math.Round(t.Fahrenheit())), int(math.Round(t.Celsius())))
}
