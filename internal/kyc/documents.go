package kyc

import (
	"encoding/json"
	"sort"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

type Record struct {
	URL        string     `json:"url"`
	StorageID  string     `json:"storageId,omitempty"`
	Status     Status     `json:"status"`
	Reason     *string    `json:"reason"`
	UploadedAt time.Time  `json:"uploadedAt"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
}

// NewRecord returns a freshly uploaded, unreviewed record.
func NewRecord(url, storageID string, at time.Time) Record {
	return Record{URL: url, StorageID: storageID, Status: StatusPending, UploadedAt: at}
}

// Documents maps each slot to its records. Singular slots hold at most one
// record and serialise as an object; repeatable slots serialise as arrays.
type Documents map[Slot][]Record

func (d Documents) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d))
	for slot, recs := range d {
		if len(recs) == 0 {
			continue
		}
		if slot.Repeatable() {
			out[string(slot)] = recs
		} else {
			out[string(slot)] = recs[0]
		}
	}
	return json.Marshal(out)
}

func (d *Documents) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	docs := make(Documents, len(raw))
	for name, value := range raw {
		slot, err := ParseSlot(name)
		if err != nil {
			continue
		}
		if string(value) == "null" {
			continue
		}
		if slot.Repeatable() {
			var recs []Record
			if err := json.Unmarshal(value, &recs); err != nil {
				return err
			}
			docs[slot] = recs
		} else {
			var rec Record
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			if rec.URL != "" {
				docs[slot] = []Record{rec}
			}
		}
	}
	*d = docs
	return nil
}

func (d Documents) Populated(slot Slot) bool { return len(d[slot]) > 0 }

// Clone returns a deep copy safe to mutate.
func (d Documents) Clone() Documents {
	out := make(Documents, len(d))
	for slot, recs := range d {
		cp := make([]Record, len(recs))
		copy(cp, recs)
		out[slot] = cp
	}
	return out
}

// Replace sets the records of a slot and returns what was there before.
func (d Documents) Replace(slot Slot, recs []Record) []Record {
	prev := d[slot]
	d[slot] = recs
	return prev
}

// MissingMandatory lists the mandatory slots that are neither stored nor
// about to be supplied.
func (d Documents) MissingMandatory(incoming ...Slot) []Slot {
	supplied := make(map[Slot]bool, len(incoming))
	for _, s := range incoming {
		supplied[s] = true
	}
	var missing []Slot
	for _, s := range MandatorySlots {
		if !supplied[s] && !d.Populated(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// MandatoryVerified reports whether every record in every mandatory slot has
// been verified.
func (d Documents) MandatoryVerified() bool {
	for _, s := range MandatorySlots {
		recs := d[s]
		if len(recs) == 0 {
			return false
		}
		for _, r := range recs {
			if r.Status != StatusVerified {
				return false
			}
		}
	}
	return true
}

// AllVerified reports whether at least one document exists and none are
// pending or rejected.
func (d Documents) AllVerified() bool {
	n := 0
	for _, recs := range d {
		for _, r := range recs {
			if r.Status != StatusVerified {
				return false
			}
			n++
		}
	}
	return n > 0
}

// Review moves a pending record to verified or rejected. Array slots need an
// index; singular slots ignore it.
func (d Documents) Review(slot Slot, index *int, status Status, reason string, at time.Time) error {
	if status != StatusVerified && status != StatusRejected {
		return ErrInvalidStatus
	}
	if status == StatusRejected && reason == "" {
		return ErrReasonRequired
	}

	recs := d[slot]
	i := 0
	if slot.Repeatable() {
		if index == nil {
			return ErrIndexRequired
		}
		i = *index
	}
	if i < 0 || i >= len(recs) {
		return ErrDocumentNotFound
	}
	if recs[i].Status != StatusPending {
		return ErrInvalidTransition
	}

	recs[i].Status = status
	recs[i].ReviewedAt = &at
	if status == StatusRejected {
		recs[i].Reason = &reason
	} else {
		recs[i].Reason = nil
	}
	return nil
}

// Summary counts records by status.
func (d Documents) Summary() map[Status]int {
	out := map[Status]int{StatusPending: 0, StatusVerified: 0, StatusRejected: 0}
	for _, recs := range d {
		for _, r := range recs {
			out[r.Status]++
		}
	}
	return out
}

// SortedSlots returns populated slots in a stable order.
func (d Documents) SortedSlots() []Slot {
	out := make([]Slot, 0, len(d))
	for s, recs := range d {
		if len(recs) > 0 {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
