package prices

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceType classifies elementary prices. The numeric values match the BC3
// concept type digits.
type PriceType int

const (
	Unclassified PriceType = iota
	Labour
	Machinery
	Material
	AdditionalWasteComponent
	WasteClassification
)

var priceTypeNames = map[PriceType]string{
	Unclassified:             "unclassified",
	Labour:                   "labour",
	Machinery:                "machinery",
	Material:                 "material",
	AdditionalWasteComponent: "additional_waste_component",
	WasteClassification:      "waste_classification",
}

func (t PriceType) String() string {
	if name, ok := priceTypeNames[t]; ok {
		return name
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the known classifications.
func (t PriceType) Valid() bool {
	_, ok := priceTypeNames[t]
	return ok
}

// ParsePriceType accepts either the BC3 digit or the lower-case name.
func ParsePriceType(raw string) (PriceType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return Unclassified, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		t := PriceType(n)
		if !t.Valid() {
			return Unclassified, fmt.Errorf("unknown price type %d", n)
		}
		return t, nil
	}
	for t, name := range priceTypeNames {
		if name == value {
			return t, nil
		}
	}
	return Unclassified, fmt.Errorf("unknown price type %q", raw)
}
