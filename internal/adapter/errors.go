// SPDX-License-Identifier: Apache-2.0

package adapter

import "errors"

var (
	// ErrNotFound is returned when the remote store has no record with the
	// requested id.
	ErrNotFound = errors.New("record not found on remote")

	// ErrRemoteUnavailable wraps every transport failure (network error,
	// timeout, or non-success HTTP status) so the engine can treat all of
	// them identically to an explicit offline signal.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)
