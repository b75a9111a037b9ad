package catalog

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

var ErrItemNotFound = errors.New("catalog item not found")

// Item is one entry in a category list. It serialises flat: the detail
// fields plus _id and isActive.
type Item struct {
	ID       uuid.UUID
	IsActive bool
	Details  Details
}

func (i Item) Category() Category {
	if i.Details == nil {
		return ""
	}
	return i.Details.Category()
}

func (i Item) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if i.Details != nil {
		raw, err := json.Marshal(i.Details)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	fields["_id"] = i.ID
	fields["isActive"] = i.IsActive
	return json.Marshal(fields)
}

// View is a catalog keyed by category.
type View map[Category][]Item

// NewView returns a view with every category present and empty.
func NewView() View {
	v := make(View, len(Categories))
	for _, c := range Categories {
		v[c] = []Item{}
	}
	return v
}

// Add appends an item under its own category.
func (v View) Add(item Item) {
	c := item.Category()
	v[c] = append(v[c], item)
}

// Only returns a view restricted to the given keys. Keys not in the
// restriction are absent from the result, not merely empty.
func (v View) Only(keys []Category) View {
	out := make(View, len(keys))
	for _, k := range keys {
		items := v[k]
		if items == nil {
			items = []Item{}
		}
		out[k] = items
	}
	return out
}
