// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// Record statuses. A record starts as [StatusIncomplete] and is promoted to
// [StatusReady] by the reconciliation engine once the minimum set of fields
// is populated (title, destination, at least one lodging).
const (
	StatusIncomplete = "incomplete"
	StatusReady      = "ready"
)

// Record is the unit of synchronization: one trip folder with its nested
// sub-objects. Records carry no explicit revision number; currency is
// defined by "most recently written" (last-writer-wins per field).
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Status      string `json:"status"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	FlightSegments []FlightSegment `json:"flight_segments"`
	Lodgings       []Lodging       `json:"lodgings"`
	Venue          *Venue          `json:"venue,omitempty"`
	Checklist      []ChecklistItem `json:"checklist"`
	People         []Person        `json:"people"`
	Photos         []Photo         `json:"photos"`

	Notes string `json:"notes"`

	// Deleted marks a record soft-deleted. A tombstone patch carrying
	// Deleted=true stands in for a DELETE that could not reach the remote.
	Deleted bool `json:"deleted,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FlightSegment is one leg of the trip's air travel.
type FlightSegment struct {
	ID           string     `json:"id"`
	Airline      string     `json:"airline"`
	FlightNumber string     `json:"flight_number"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	Departure    *time.Time `json:"departure,omitempty"`
	Arrival      *time.Time `json:"arrival,omitempty"`
}

// Lodging is one place the traveller stays. Historically a record held a
// single lodging object; the current shape is an ordered list.
type Lodging struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// Venue is the primary event location for job-type records.
type Venue struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// ChecklistItem is a single to-do entry attached to a record.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Person is a traveller or contact attached to a record.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Photo is a reference to an uploaded image.
type Photo struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// RawRecord is the wire shape of a record before normalization. It carries
// the current fields plus every recognized legacy field, so the normalizer
// can upgrade old payloads in one pass.
type RawRecord struct {
	Record

	// LegacyLodging holds the pre-migration single-lodging shape. Current
	// payloads use Lodgings instead.
	LegacyLodging *Lodging `json:"lodging,omitempty"`
}

// CacheEntry is the last known good local copy of one record.
type CacheEntry struct {
	Record      Record    `json:"record"`
	LastWriteAt time.Time `json:"last_write_at"`
}
