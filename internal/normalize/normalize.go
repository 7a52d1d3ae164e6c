// SPDX-License-Identifier: Apache-2.0

// Package normalize converts raw record payloads into the current record
// shape. Normalization is a pure function of its input: it coerces absent
// optional fields into explicit empty values, upgrades recognized legacy
// shapes, and reports whether it changed anything so callers can persist
// the corrected form (self-healing write-back).
//
// Normalization is idempotent: normalizing an already-normalized record is
// a no-op with changed=false. A record that is in neither the current nor a
// recognized legacy shape is a data error and fails loudly with
// [ErrUnrecognizedShape].
package normalize

import (
	"fmt"

	"github.com/tripkeep/go-trip-keeper/models"
)

// Normalizer upgrades raw record payloads to the current shape. The zero
// value is not usable; construct with [New].
type Normalizer struct {
	ids IDGenerator
}

// New returns a Normalizer that assigns fresh sub-identifiers with ids.
// Passing nil uses the default UUID generator.
func New(ids IDGenerator) *Normalizer {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &Normalizer{ids: ids}
}

// Normalize coerces raw into the current record shape.
//
// It reports changed=true when any coercion or upgrade was applied, so the
// caller can decide to persist the corrected form. Recognized upgrades:
//
//   - a legacy single "lodging" object becomes a one-element "lodgings"
//     list, with a freshly assigned sub-identifier if it had none;
//   - absent collections become explicit empty lists;
//   - an absent status defaults to [models.StatusIncomplete];
//   - sub-objects missing their own identifier get one assigned.
func (n *Normalizer) Normalize(raw models.RawRecord) (models.Record, bool, error) {
	if raw.ID == "" {
		return models.Record{}, false, fmt.Errorf("%w: record has no id", ErrUnrecognizedShape)
	}
	if raw.LegacyLodging != nil && len(raw.Lodgings) > 0 {
		return models.Record{}, false, fmt.Errorf(
			"%w: record %s carries both legacy and current lodging fields", ErrUnrecognizedShape, raw.ID)
	}

	record := raw.Record
	changed := false

	if raw.LegacyLodging != nil {
		lodging := *raw.LegacyLodging
		record.Lodgings = []models.Lodging{lodging}
		changed = true
	}

	if record.Status == "" {
		record.Status = models.StatusIncomplete
		changed = true
	}

	if record.FlightSegments == nil {
		record.FlightSegments = []models.FlightSegment{}
		changed = true
	}
	if record.Lodgings == nil {
		record.Lodgings = []models.Lodging{}
		changed = true
	}
	if record.Checklist == nil {
		record.Checklist = []models.ChecklistItem{}
		changed = true
	}
	if record.People == nil {
		record.People = []models.Person{}
		changed = true
	}
	if record.Photos == nil {
		record.Photos = []models.Photo{}
		changed = true
	}

	if n.assignSubIDs(&record) {
		changed = true
	}

	return record, changed, nil
}

// assignSubIDs fills in missing sub-object identifiers and reports whether
// any were assigned.
func (n *Normalizer) assignSubIDs(record *models.Record) bool {
	assigned := false

	for i := range record.FlightSegments {
		if record.FlightSegments[i].ID == "" {
			record.FlightSegments[i].ID = n.ids.Generate()
			assigned = true
		}
	}
	for i := range record.Lodgings {
		if record.Lodgings[i].ID == "" {
			record.Lodgings[i].ID = n.ids.Generate()
			assigned = true
		}
	}
	for i := range record.Checklist {
		if record.Checklist[i].ID == "" {
			record.Checklist[i].ID = n.ids.Generate()
			assigned = true
		}
	}
	for i := range record.People {
		if record.People[i].ID == "" {
			record.People[i].ID = n.ids.Generate()
			assigned = true
		}
	}
	for i := range record.Photos {
		if record.Photos[i].ID == "" {
			record.Photos[i].ID = n.ids.Generate()
			assigned = true
		}
	}

	return assigned
}
