package prices

import "strings"

var unitSpellings = map[string]string{
	"M3": "m3",
	"M2": "m2",
	"M":  "m",
	"Ml": "m",
	"ml": "m",
	"ML": "m",
	"Ud": "ud",
	"UD": "ud",
	"Kg": "kg",
	"KG": "kg",
	"Tn": "t",
	"tn": "t",
	"Tm": "t",
	"tm": "t",
	"H":  "h",
}

// NormalizeUnit maps common spellings of measurement units to a canonical
// form and drops a trailing period.
func NormalizeUnit(unit string) string {
	u := strings.TrimSuffix(strings.TrimSpace(unit), ".")
	if fixed, ok := unitSpellings[u]; ok {
		return fixed
	}
	return u
}
