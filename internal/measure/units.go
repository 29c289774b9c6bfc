package measure

// Unit identifies a measurement unit by its short code (e.g. "g", "cup").
type Unit string

const (
	// Weight units
	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Ounce    Unit = "oz"
	Pound    Unit = "lb"

	// Volume units
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Cup        Unit = "cup"
	Tablespoon Unit = "tbsp"
	Teaspoon   Unit = "tsp"
	FluidOunce Unit = "fl_oz"

	// Count units
	Each Unit = "each"
)

// Category groups units that share a base unit
type Category int

const (
	Weight Category = iota + 1
	Volume
	Count
)

// String returns the lower-case category name
func (c Category) String() string {
	switch c {
	case Weight:
		return "weight"
	case Volume:
		return "volume"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// MarshalText lets categories appear by name in JSON
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnitInfo describes a unit. ToBase converts one of the unit into grams for
// weight, milliliters for volume, and is 1 for count units.
type UnitInfo struct {
	Unit       Unit     `json:"unit"`
	Label      string   `json:"label"`
	ShortLabel string   `json:"shortLabel"`
	Category   Category `json:"category"`
	ToBase     float64  `json:"toBase"`
}

// table is in declaration order; CompatibleUnits relies on it.
var table = []UnitInfo{
	{Gram, "Grams", "g", Weight, 1},
	{Kilogram, "Kilograms", "kg", Weight, 1000},
	{Ounce, "Ounces", "oz", Weight, 28.3495},
	{Pound, "Pounds", "lb", Weight, 453.592},

	{Milliliter, "Milliliters", "ml", Volume, 1},
	{Liter, "Liters", "L", Volume, 1000},
	{Cup, "Cups", "cup", Volume, 236.588},
	{Tablespoon, "Tablespoons", "tbsp", Volume, 14.787},
	{Teaspoon, "Teaspoons", "tsp", Volume, 4.929},
	{FluidOunce, "Fluid Ounces", "fl oz", Volume, 29.5735},

	{Each, "Each", "ea", Count, 1},
}

var index = func() map[Unit]int {
	m := make(map[Unit]int, len(table))
	for i, info := range table {
		m[info.Unit] = i
	}
	return m
}()

// Lookup returns the table entry for a unit
func Lookup(u Unit) (UnitInfo, bool) {
	i, ok := index[u]
	if !ok {
		return UnitInfo{}, false
	}
	return table[i], true
}

// ParseUnit resolves a unit code as stored on ingredients or sent by clients.
func ParseUnit(s string) (Unit, bool) {
	u := Unit(s)
	_, ok := index[u]
	return u, ok
}

// Units returns every defined unit in declaration order
func Units() []UnitInfo {
	out := make([]UnitInfo, len(table))
	copy(out, table)
	return out
}

// CompatibleUnits returns every unit sharing u's category, in table order.
// An unknown unit has no compatible units.
func CompatibleUnits(u Unit) []Unit {
	info, ok := Lookup(u)
	if !ok {
		return nil
	}
	var out []Unit
	for _, candidate := range table {
		if candidate.Category == info.Category {
			out = append(out, candidate.Unit)
		}
	}
	return out
}

// DisplayUnits is the order unit pickers list units in
func DisplayUnits() []Unit {
	return []Unit{Gram, Ounce, Pound, Kilogram, Cup, Tablespoon, Teaspoon, Milliliter, FluidOunce, Each}
}

// Option is one entry of a unit selector
type Option struct {
	Value Unit   `json:"value"`
	Label string `json:"label"`
}

// OptionGroup is a labelled group of selector options
type OptionGroup struct {
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

// OptionGroups returns unit selector options grouped by category
func OptionGroups() []OptionGroup {
	return []OptionGroup{
		{
			Label: "Weight",
			Options: []Option{
				{Gram, "Grams (g)"},
				{Ounce, "Ounces (oz)"},
				{Pound, "Pounds (lb)"},
				{Kilogram, "Kilograms (kg)"},
			},
		},
		{
			Label: "Volume",
			Options: []Option{
				{Cup, "Cups"},
				{Tablespoon, "Tablespoons (tbsp)"},
				{Teaspoon, "Teaspoons (tsp)"},
				{FluidOunce, "Fluid Ounces (fl oz)"},
				{Milliliter, "Milliliters (ml)"},
				{Liter, "Liters (L)"},
			},
		},
		{
			Label: "Count",
			Options: []Option{
				{Each, "Each"},
			},
		},
	}
}
