package measure

// DefaultDensity is the grams-per-milliliter ratio used to bridge weight and
// volume when no ingredient-specific density is known (water).
const DefaultDensity = 1.0

// Convert converts amount between two units using DefaultDensity for
// weight/volume conversions.
func Convert(amount float64, from, to Unit) float64 {
	return ConvertWithDensity(amount, from, to, DefaultDensity)
}

// ConvertWithDensity converts amount between any two units. density is in
// g/ml and only matters when one unit measures weight and the other volume.
//
// Conversion never fails: zero stays zero, identical units return amount
// untouched, and count units, unknown units and unsupported category pairs
// return amount unchanged.
func ConvertWithDensity(amount float64, from, to Unit, density float64) float64 {
	if amount == 0 {
		return 0
	}
	if from == to {
		return amount
	}

	fromInfo, ok := Lookup(from)
	if !ok {
		return amount
	}
	toInfo, ok := Lookup(to)
	if !ok {
		return amount
	}

	if fromInfo.Category == Count || toInfo.Category == Count {
		return amount
	}

	switch {
	case fromInfo.Category == toInfo.Category:
		return amount * fromInfo.ToBase / toInfo.ToBase
	case fromInfo.Category == Weight && toInfo.Category == Volume:
		grams := amount * fromInfo.ToBase
		ml := grams / density
		return ml / toInfo.ToBase
	case fromInfo.Category == Volume && toInfo.Category == Weight:
		ml := amount * fromInfo.ToBase
		grams := ml * density
		return grams / toInfo.ToBase
	default:
		return amount
	}
}
