package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidItem = errors.New("invalid catalog item")

// Details is the category specific payload of a catalog item.
type Details interface {
	Category() Category
	Title() string
	UnitPrice() float64
	Validate() error
}

type HomestayDetails struct {
	Name          string   `json:"name"`
	RoomType      string   `json:"roomType"`
	PricePerNight float64  `json:"pricePerNight"`
	MaxGuests     int      `json:"maxGuests,omitempty"`
	Location      string   `json:"location,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Description   string   `json:"description,omitempty"`
	Images        []string `json:"images,omitempty"`
}

func (d *HomestayDetails) Category() Category { return Homestay }
func (d *HomestayDetails) UnitPrice() float64 { return d.PricePerNight }

func (d *HomestayDetails) Title() string {
	if d.Name != "" {
		return d.Name + " (" + d.RoomType + ")"
	}
	return d.RoomType
}

func (d *HomestayDetails) Validate() error {
	return check(
		required("roomType", d.RoomType),
		positive("pricePerNight", d.PricePerNight),
		nonNegative("maxGuests", float64(d.MaxGuests)),
	)
}

type CampingDetails struct {
	CampName       string   `json:"campName"`
	Location       string   `json:"location,omitempty"`
	TentType       string   `json:"tentType,omitempty"`
	PricePerPerson float64  `json:"pricePerPerson"`
	DurationNights int      `json:"durationNights,omitempty"`
	Capacity       int      `json:"capacity,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images,omitempty"`
}

func (d *CampingDetails) Category() Category { return Camping }
func (d *CampingDetails) Title() string      { return d.CampName }
func (d *CampingDetails) UnitPrice() float64 { return d.PricePerPerson }

func (d *CampingDetails) Validate() error {
	return check(
		required("campName", d.CampName),
		positive("pricePerPerson", d.PricePerPerson),
	)
}

type TrekkingDetails struct {
	TrekkingName   string   `json:"trekkingName"`
	Difficulty     string   `json:"difficulty,omitempty"`
	DurationDays   int      `json:"durationDays,omitempty"`
	MaxAltitude    int      `json:"maxAltitude,omitempty"`
	PricePerPerson float64  `json:"pricePerPerson"`
	GroupSize      int      `json:"groupSize,omitempty"`
	Itinerary      []string `json:"itinerary,omitempty"`
	Inclusions     []string `json:"inclusions,omitempty"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images,omitempty"`
}

func (d *TrekkingDetails) Category() Category { return Trekking }
func (d *TrekkingDetails) Title() string      { return d.TrekkingName }
func (d *TrekkingDetails) UnitPrice() float64 { return d.PricePerPerson }

func (d *TrekkingDetails) Validate() error {
	errs := []string{
		required("trekkingName", d.TrekkingName),
		positive("pricePerPerson", d.PricePerPerson),
	}
	if d.Difficulty != "" {
		switch strings.ToLower(d.Difficulty) {
		case "easy", "moderate", "difficult", "challenging":
		default:
			errs = append(errs, "difficulty must be easy, moderate, difficult or challenging")
		}
	}
	return check(errs...)
}

type RaftingDetails struct {
	RiverName      string   `json:"riverName"`
	Stretch        string   `json:"stretch,omitempty"`
	DistanceKm     float64  `json:"distanceKm,omitempty"`
	Grade          string   `json:"grade,omitempty"`
	PricePerPerson float64  `json:"pricePerPerson"`
	DurationHours  float64  `json:"durationHours,omitempty"`
	MinAge         int      `json:"minAge,omitempty"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images,omitempty"`
}

func (d *RaftingDetails) Category() Category { return Rafting }
func (d *RaftingDetails) UnitPrice() float64 { return d.PricePerPerson }

func (d *RaftingDetails) Title() string {
	if d.Stretch != "" {
		return d.RiverName + " - " + d.Stretch
	}
	return d.RiverName
}

func (d *RaftingDetails) Validate() error {
	return check(
		required("riverName", d.RiverName),
		positive("pricePerPerson", d.PricePerPerson),
	)
}

type BungeeJumpingDetails struct {
	LocationName   string   `json:"locationName"`
	HeightMeters   float64  `json:"heightMeters,omitempty"`
	PricePerPerson float64  `json:"pricePerPerson"`
	MinAge         int      `json:"minAge,omitempty"`
	MaxWeightKg    int      `json:"maxWeightKg,omitempty"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images,omitempty"`
}

func (d *BungeeJumpingDetails) Category() Category { return BungeeJumping }
func (d *BungeeJumpingDetails) Title() string      { return d.LocationName }
func (d *BungeeJumpingDetails) UnitPrice() float64 { return d.PricePerPerson }

func (d *BungeeJumpingDetails) Validate() error {
	return check(
		required("locationName", d.LocationName),
		positive("pricePerPerson", d.PricePerPerson),
	)
}

type VehicleRentalDetails struct {
	VehicleType     string   `json:"vehicleType"`
	VehicleModel    string   `json:"vehicleModel,omitempty"`
	SeatingCapacity int      `json:"seatingCapacity,omitempty"`
	FuelType        string   `json:"fuelType,omitempty"`
	WithDriver      bool     `json:"withDriver"`
	PricePerDay     float64  `json:"pricePerDay"`
	Description     string   `json:"description,omitempty"`
	Images          []string `json:"images,omitempty"`
}

func (d *VehicleRentalDetails) Category() Category { return VehicleRental }
func (d *VehicleRentalDetails) UnitPrice() float64 { return d.PricePerDay }

func (d *VehicleRentalDetails) Title() string {
	if d.VehicleModel != "" {
		return d.VehicleType + " " + d.VehicleModel
	}
	return d.VehicleType
}

func (d *VehicleRentalDetails) Validate() error {
	return check(
		required("vehicleType", d.VehicleType),
		positive("pricePerDay", d.PricePerDay),
	)
}

type ChardhamTourDetails struct {
	PackageName    string   `json:"packageName"`
	DurationDays   int      `json:"durationDays,omitempty"`
	Dhams          []string `json:"dhams,omitempty"`
	Transport      string   `json:"transport,omitempty"`
	Accommodation  string   `json:"accommodation,omitempty"`
	PricePerPerson float64  `json:"pricePerPerson"`
	Inclusions     []string `json:"inclusions,omitempty"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images,omitempty"`
}

func (d *ChardhamTourDetails) Category() Category { return ChardhamTour }
func (d *ChardhamTourDetails) Title() string      { return d.PackageName }
func (d *ChardhamTourDetails) UnitPrice() float64 { return d.PricePerPerson }

func (d *ChardhamTourDetails) Validate() error {
	return check(
		required("packageName", d.PackageName),
		positive("pricePerPerson", d.PricePerPerson),
	)
}

// NewDetails returns an empty payload for the category.
func NewDetails(c Category) (Details, error) {
	switch c {
	case Homestay:
		return &HomestayDetails{}, nil
	case Camping:
		return &CampingDetails{}, nil
	case Trekking:
		return &TrekkingDetails{}, nil
	case Rafting:
		return &RaftingDetails{}, nil
	case BungeeJumping:
		return &BungeeJumpingDetails{}, nil
	case VehicleRental:
		return &VehicleRentalDetails{}, nil
	case ChardhamTour:
		return &ChardhamTourDetails{}, nil
	}
	return nil, ErrUnknownCategory
}

// DecodeDetails decodes raw JSON into the payload type for the category.
// Keys belonging to the item envelope (_id, isActive) are ignored.
func DecodeDetails(c Category, raw []byte) (Details, error) {
	d, err := NewDetails(c)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}
	}
	return d, nil
}

// MergeDetails applies a partial JSON update on top of existing details.
// Fields absent from the patch keep their current values.
func MergeDetails(existing Details, patch []byte) (Details, error) {
	base, err := json.Marshal(existing)
	if err != nil {
		return nil, err
	}
	merged, err := DecodeDetails(existing.Category(), base)
	if err != nil {
		return nil, err
	}
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, merged); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}
	}
	return merged, nil
}

type fieldErrors []string

func (f fieldErrors) Error() string { return strings.Join(f, "; ") }

func (f fieldErrors) Unwrap() error { return ErrInvalidItem }

// Fields returns each individual validation message.
func (f fieldErrors) Fields() []string { return f }

func check(msgs ...string) error {
	var out fieldErrors
	for _, m := range msgs {
		if m != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func required(field, v string) string {
	if strings.TrimSpace(v) == "" {
		return field + " is required"
	}
	return ""
}

func positive(field string, v float64) string {
	if v <= 0 {
		return field + " must be greater than zero"
	}
	return ""
}

func nonNegative(field string, v float64) string {
	if v < 0 {
		return field + " must not be negative"
	}
	return ""
}
