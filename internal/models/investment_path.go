package models

import (
	"slices"
	"strings"
)

// InvestmentPath is a free-form category grouping assets.
type InvestmentPath struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// realEstatePathNames are the path names whose assets carry a composite
// rental + appreciation yield.
var realEstatePathNames = []string{
	"real estate",
	"domestic real estate",
	"overseas real estate",
	"房地产",
	"房产",
	"国内房产",
	"海外房产",
}

// IsRealEstatePath reports whether a path with the given name is a real
// estate category. Matching is exact after trimming and lower-casing.
func IsRealEstatePath(name string) bool {
	return slices.Contains(realEstatePathNames, strings.ToLower(strings.TrimSpace(name)))
}

// IsRealEstate reports whether p is a real estate category.
func (p InvestmentPath) IsRealEstate() bool {
	return IsRealEstatePath(p.Name)
}
