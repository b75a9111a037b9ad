// Package catalog models the per-vendor service catalog: a closed set of
// service categories, each with its own item detail shape.
package catalog

import (
	"errors"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown service category")

type Category string

const (
	Homestay      Category = "homestay"
	Camping       Category = "camping"
	Trekking      Category = "trekking"
	Rafting       Category = "rafting"
	BungeeJumping Category = "bungeeJumping"
	VehicleRental Category = "vehicleRental"
	ChardhamTour  Category = "chardhamTour"
)

// Categories lists every category key in display order.
var Categories = []Category{
	Homestay,
	Camping,
	Trekking,
	Rafting,
	BungeeJumping,
	VehicleRental,
	ChardhamTour,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory accepts only the exact category keys.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// vendorLabels maps the business categories a vendor declares on its profile
// to catalog keys. Keys are lower-case with single spaces.
var vendorLabels = map[string]Category{
	"homestay":          Homestay,
	"homestays":         Homestay,
	"home stay":         Homestay,
	"hotel":             Homestay,
	"camping":           Camping,
	"camp":              Camping,
	"camps":             Camping,
	"trekking":          Trekking,
	"trek":              Trekking,
	"treks":             Trekking,
	"rafting":           Rafting,
	"river rafting":     Rafting,
	"bungee":            BungeeJumping,
	"bungee jumping":    BungeeJumping,
	"bungeejumping":     BungeeJumping,
	"vehicle rental":    VehicleRental,
	"vehicle rentals":   VehicleRental,
	"vehiclerental":     VehicleRental,
	"car rental":        VehicleRental,
	"bike rental":       VehicleRental,
	"chardham":          ChardhamTour,
	"chardham tour":     ChardhamTour,
	"chardhamtour":      ChardhamTour,
	"char dham":         ChardhamTour,
	"char dham yatra":   ChardhamTour,
	"chardham yatra":    ChardhamTour,
	"chardham packages": ChardhamTour,
}

// KeysForVendorCategories resolves declared business categories to catalog
// keys. Unrecognised labels are ignored and duplicates collapse; the result
// keeps the order of Categories.
func KeysForVendorCategories(declared []string) []Category {
	seen := make(map[Category]bool, len(declared))
	for _, label := range declared {
		norm := strings.ToLower(strings.Join(strings.Fields(label), " "))
		if c, ok := vendorLabels[norm]; ok {
			seen[c] = true
			continue
		}
		if c := Category(strings.TrimSpace(label)); c.Valid() {
			seen[c] = true
		}
	}

	keys := make([]Category, 0, len(seen))
	for _, c := range Categories {
		if seen[c] {
			keys = append(keys, c)
		}
	}
	return keys
}
