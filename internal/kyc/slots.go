// Package kyc holds the vendor verification document map: a fixed set of
// named slots, each singular or repeatable, with a per-record review state.
package kyc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownSlot       = errors.New("unknown document slot")
	ErrSingularSlot      = errors.New("document slot accepts a single file")
	ErrInvalidFieldKey   = errors.New("invalid document field name")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrIndexRequired     = errors.New("index is required for this document slot")
	ErrInvalidStatus     = errors.New("status must be verified or rejected")
	ErrInvalidTransition = errors.New("only pending documents can be reviewed")
	ErrReasonRequired    = errors.New("reason is required when rejecting a document")
)

type Slot string

const (
	PanCard              Slot = "panCard"
	BusinessRegistration Slot = "businessRegistration"
	GSTRegistration      Slot = "gstRegistration"
	AadharCard           Slot = "aadharCard"
	TravelAgentPermit    Slot = "travelAgentPermit"
	RaftingPermit        Slot = "raftingPermit"
	RaftingInsurance     Slot = "raftingInsurance"
	TrekkingPermit       Slot = "trekkingPermit"
	TrekkingInsurance    Slot = "trekkingInsurance"
	BungeeCertificate    Slot = "bungeeCertificate"
	BungeeInsurance      Slot = "bungeeInsurance"
	VehicleRegistration  Slot = "vehicleRegistration"
	SafetyCertificates   Slot = "safetyCertificates"
)

type slotSpec struct {
	repeatable bool
	mandatory  bool
}

var slots = map[Slot]slotSpec{
	PanCard:              {mandatory: true},
	BusinessRegistration: {mandatory: true},
	GSTRegistration:      {mandatory: true},
	AadharCard:           {repeatable: true, mandatory: true},
	TravelAgentPermit:    {repeatable: true},
	RaftingPermit:        {repeatable: true},
	RaftingInsurance:     {repeatable: true},
	TrekkingPermit:       {repeatable: true},
	TrekkingInsurance:    {repeatable: true},
	BungeeCertificate:    {repeatable: true},
	BungeeInsurance:      {repeatable: true},
	VehicleRegistration:  {repeatable: true},
	SafetyCertificates:   {repeatable: true},
}

// MandatorySlots must all be non-empty before a profile counts as complete.
var MandatorySlots = []Slot{AadharCard, PanCard, BusinessRegistration, GSTRegistration}

func ParseSlot(s string) (Slot, error) {
	slot := Slot(strings.TrimSpace(s))
	if _, ok := slots[slot]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSlot, s)
	}
	return slot, nil
}

func (s Slot) Repeatable() bool { return slots[s].repeatable }
func (s Slot) Mandatory() bool  { return slots[s].mandatory }

// ParseFieldKey splits a multipart field name such as "aadharCard[1]" into
// its slot and index. A bare slot name has index 0.
func ParseFieldKey(key string) (Slot, int, error) {
	name, idx := key, 0
	if open := strings.IndexByte(key, '['); open >= 0 {
		if !strings.HasSuffix(key, "]") {
			return "", 0, fmt.Errorf("%w: %s", ErrInvalidFieldKey, key)
		}
		n, err := strconv.Atoi(key[open+1 : len(key)-1])
		if err != nil || n < 0 {
			return "", 0, fmt.Errorf("%w: %s", ErrInvalidFieldKey, key)
		}
		name, idx = key[:open], n
	}
	slot, err := ParseSlot(name)
	if err != nil {
		return "", 0, err
	}
	return slot, idx, nil
}
