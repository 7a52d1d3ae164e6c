// SPDX-License-Identifier: Apache-2.0

// Package adapter provides transport-layer abstractions for communicating
// with the remote record store.
//
// The primary abstraction is [RemoteStore], which decouples the engine from
// the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteStore]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling ([ErrNotFound] for 404; every other transport failure is
// wrapped in [ErrRemoteUnavailable], which the engine treats identically to
// an explicit offline signal).
package adapter

import (
	"context"

	"github.com/tripkeep/go-trip-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore defines transport-agnostic communication with the remote
// record store, the durable system of record when reachable.
// Implementations are responsible for serialisation, normalization of
// inbound payloads, and mapping transport-level errors to the sentinel
// values defined in this package.
type RemoteStore interface {
	// List fetches the full ordered record collection.
	List(ctx context.Context) ([]models.Record, error)

	// Get fetches a single record by id. Returns [ErrNotFound] (wrapped)
	// when the record does not exist remotely.
	Get(ctx context.Context, id string) (models.Record, error)

	// Patch applies a partial update to the record and returns the merged,
	// normalized record as the new canonical value. Every field the patch
	// names is a complete replacement value, so retrying the same patch is
	// idempotent.
	Patch(ctx context.Context, id string, patch models.RecordPatch) (models.Record, error)

	// Create stores an initial record and returns the created record with
	// its server-acknowledged state.
	Create(ctx context.Context, record models.Record) (models.Record, error)

	// Delete removes the record by id. Deleting an absent record returns
	// [ErrNotFound] (wrapped).
	Delete(ctx context.Context, id string) error
}
