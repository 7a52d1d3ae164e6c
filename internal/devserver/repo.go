// SPDX-License-Identifier: Apache-2.0

package devserver

import (
	"errors"
	"sort"
	"sync"

	"github.com/tripkeep/go-trip-keeper/internal/normalize"
	"github.com/tripkeep/go-trip-keeper/models"
)

// ErrRecordNotFound is returned by the repository when no record exists
// for the requested ID.
var ErrRecordNotFound = errors.New("record not found")

// Repo is the in-memory record repository backing the development server.
// Records are stored in normalized form so every response the engine reads
// back is already canonical.
type Repo struct {
	mu         sync.RWMutex
	records    map[string]models.Record
	normalizer *normalize.Normalizer
}

func NewRepo(normalizer *normalize.Normalizer) *Repo {
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}
	return &Repo{
		records:    make(map[string]models.Record),
		normalizer: normalizer,
	}
}

// List returns every stored record ordered by ID for stable output.
func (r *Repo) List() []models.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Repo) Get(id string) (models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return models.Record{}, ErrRecordNotFound
	}
	return record, nil
}

// Create normalizes and stores the record, overwriting any existing one
// with the same ID.
func (r *Repo) Create(record models.Record) (models.Record, error) {
	normalized, _, err := r.normalizer.Normalize(models.RawRecord{Record: record})
	if err != nil {
		return models.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[normalized.ID] = normalized
	return normalized, nil
}

// Patch applies a field-replacement patch to the stored record and
// normalizes the result. An unknown ID is an upsert: the patch is applied
// to an empty record so offline-created records can arrive via queue
// replay. A patch carrying Deleted=true removes the record; the tombstoned
// value is still returned so the caller sees what was deleted.
func (r *Repo) Patch(id string, patch models.RecordPatch) (models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	base, ok := r.records[id]
	if !ok {
		base = models.Record{ID: id}
	}

	merged := patch.Apply(base)
	merged.ID = id

	normalized, _, err := r.normalizer.Normalize(models.RawRecord{Record: merged})
	if err != nil {
		return models.Record{}, err
	}

	if normalized.Deleted {
		delete(r.records, id)
		return normalized, nil
	}

	r.records[id] = normalized
	return normalized, nil
}

func (r *Repo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

// Seed replaces the whole collection. Test helper.
func (r *Repo) Seed(records ...models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string]models.Record, len(records))
	for _, record := range records {
		normalized, _, err := r.normalizer.Normalize(models.RawRecord{Record: record})
		if err != nil {
			return err
		}
		r.records[normalized.ID] = normalized
	}
	return nil
}
