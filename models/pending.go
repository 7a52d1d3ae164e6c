// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// PendingWrite is one queued, not-yet-confirmed field-replacement update.
// Items for the same record may appear more than once, each representing a
// separate debounced write; replay order is append order.
type PendingWrite struct {
	RecordID   string      `json:"record_id"`
	Patch      RecordPatch `json:"patch"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
}
