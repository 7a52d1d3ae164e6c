// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// Diagnostics is the lightweight health record the engine persists alongside
// the cached data. Advisory only; the UI surfaces it in an "about" screen.
type Diagnostics struct {
	LastHealthCheck time.Time `json:"last_health_check"`
	RecordCount     int       `json:"record_count"`
	PendingWrites   int       `json:"pending_writes"`

	// Degraded is set when the durable local store could not be opened and
	// the engine is running memory-only for the current session.
	Degraded bool `json:"degraded"`
}
