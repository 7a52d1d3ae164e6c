// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// RecordPatch is a typed partial update for one record. Every named field is
// a complete replacement value, never a delta, so re-applying the same patch
// twice is idempotent at the field level. Nil means "field not named".
//
// Scalar fields use pointers; collection fields are named when non-nil.
type RecordPatch struct {
	Title       *string `json:"title,omitempty"`
	Destination *string `json:"destination,omitempty"`
	Status      *string `json:"status,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	FlightSegments []FlightSegment `json:"flight_segments,omitempty"`
	Lodgings       []Lodging       `json:"lodgings,omitempty"`
	Venue          *Venue          `json:"venue,omitempty"`
	Checklist      []ChecklistItem `json:"checklist,omitempty"`
	People         []Person        `json:"people,omitempty"`
	Photos         []Photo         `json:"photos,omitempty"`

	Notes *string `json:"notes,omitempty"`

	Deleted *bool `json:"deleted,omitempty"`
}

// Apply overlays the patch on base and returns the merged record. Only
// fields the patch names are replaced; everything else is carried over
// unchanged. Apply never mutates base's slices.
func (p RecordPatch) Apply(base Record) Record {
	merged := base

	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Destination != nil {
		merged.Destination = *p.Destination
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.StartDate != nil {
		merged.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		merged.EndDate = p.EndDate
	}
	if p.FlightSegments != nil {
		merged.FlightSegments = append([]FlightSegment(nil), p.FlightSegments...)
	}
	if p.Lodgings != nil {
		merged.Lodgings = append([]Lodging(nil), p.Lodgings...)
	}
	if p.Venue != nil {
		merged.Venue = p.Venue
	}
	if p.Checklist != nil {
		merged.Checklist = append([]ChecklistItem(nil), p.Checklist...)
	}
	if p.People != nil {
		merged.People = append([]Person(nil), p.People...)
	}
	if p.Photos != nil {
		merged.Photos = append([]Photo(nil), p.Photos...)
	}
	if p.Notes != nil {
		merged.Notes = *p.Notes
	}
	if p.Deleted != nil {
		merged.Deleted = *p.Deleted
	}

	return merged
}

// Overlay merges a later patch over the receiver: fields the later patch
// names win, fields only the receiver names survive. Used by the write
// scheduler to coalesce rapid edits into a single outgoing patch.
func (p RecordPatch) Overlay(later RecordPatch) RecordPatch {
	out := p

	if later.Title != nil {
		out.Title = later.Title
	}
	if later.Destination != nil {
		out.Destination = later.Destination
	}
	if later.Status != nil {
		out.Status = later.Status
	}
	if later.StartDate != nil {
		out.StartDate = later.StartDate
	}
	if later.EndDate != nil {
		out.EndDate = later.EndDate
	}
	if later.FlightSegments != nil {
		out.FlightSegments = later.FlightSegments
	}
	if later.Lodgings != nil {
		out.Lodgings = later.Lodgings
	}
	if later.Venue != nil {
		out.Venue = later.Venue
	}
	if later.Checklist != nil {
		out.Checklist = later.Checklist
	}
	if later.People != nil {
		out.People = later.People
	}
	if later.Photos != nil {
		out.Photos = later.Photos
	}
	if later.Notes != nil {
		out.Notes = later.Notes
	}
	if later.Deleted != nil {
		out.Deleted = later.Deleted
	}

	return out
}

// IsZero reports whether the patch names no fields at all.
func (p RecordPatch) IsZero() bool {
	return p.Title == nil &&
		p.Destination == nil &&
		p.Status == nil &&
		p.StartDate == nil &&
		p.EndDate == nil &&
		p.FlightSegments == nil &&
		p.Lodgings == nil &&
		p.Venue == nil &&
		p.Checklist == nil &&
		p.People == nil &&
		p.Photos == nil &&
		p.Notes == nil &&
		p.Deleted == nil
}

// PatchFromRecord builds a patch that names every populated field of r.
// Used when a record created offline has to be replayed through the
// pending-write queue as a field-replacement update.
func PatchFromRecord(r Record) RecordPatch {
	p := RecordPatch{}

	if r.Title != "" {
		p.Title = ptr(r.Title)
	}
	if r.Destination != "" {
		p.Destination = ptr(r.Destination)
	}
	if r.Status != "" {
		p.Status = ptr(r.Status)
	}
	p.StartDate = r.StartDate
	p.EndDate = r.EndDate
	if len(r.FlightSegments) > 0 {
		p.FlightSegments = r.FlightSegments
	}
	if len(r.Lodgings) > 0 {
		p.Lodgings = r.Lodgings
	}
	p.Venue = r.Venue
	if len(r.Checklist) > 0 {
		p.Checklist = r.Checklist
	}
	if len(r.People) > 0 {
		p.People = r.People
	}
	if len(r.Photos) > 0 {
		p.Photos = r.Photos
	}
	if r.Notes != "" {
		p.Notes = ptr(r.Notes)
	}
	if r.Deleted {
		p.Deleted = ptr(true)
	}

	return p
}

func ptr[T any](v T) *T { return &v }
