package airquality

// Category is one of the six ordered VOC advisory bands.
type Category string

const (
	CategoryExcellent Category = "Excellent"
	CategoryGood      Category = "Good"
	CategoryModerate  Category = "Moderate"
	CategoryPoor      Category = "Poor"
	CategoryBad       Category = "Bad"
	CategoryHazardous Category = "Hazardous"
)

// Band upper bounds; each band is inclusive of its upper bound, the last band
// is open-ended above the highest finite bound.
var bounds = []struct {
	upper    float64
	category Category
}{
	{50, CategoryExcellent},
	{100, CategoryGood},
	{200, CategoryModerate},
	{300, CategoryPoor},
	{450, CategoryBad},
}

// Classify maps a VOC index value to its advisory band. Boundary values
// belong to the lower band: Classify(50) is Excellent, Classify(100) is Good.
func Classify(voc float64) Category {
	for _, b := range bounds {
		if voc <= b.upper {
			return b.category
		}
	}
	return CategoryHazardous
}

// Band returns the zero-based band index of the category, used to look up the
// matching advisory string in the settings snapshot.
func (c Category) Band() int {
	switch c {
	case CategoryExcellent:
		return 0
	case CategoryGood:
		return 1
	case CategoryModerate:
		return 2
	case CategoryPoor:
		return 3
	case CategoryBad:
		return 4
	default:
		return 5
	}
}

// Valid returns true when the category is one of the six known bands.
func (c Category) Valid() bool {
	switch c {
	case CategoryExcellent, CategoryGood, CategoryModerate, CategoryPoor, CategoryBad, CategoryHazardous:
		return true
	default:
		return false
	}
}
