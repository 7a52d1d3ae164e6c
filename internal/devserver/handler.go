// SPDX-License-Identifier: Apache-2.0

// Package devserver is a small in-memory record server used for local
// development and integration tests. It exposes the same HTTP surface the
// engine's remote adapter speaks, with server-side normalization so flush
// re-reads always observe canonical values.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

type Handler struct {
	repo *Repo

	logger *logger.Logger
}

func NewHandler(repo *Repo, logger *logger.Logger) *Handler {
	logger.Info().Msg("devserver handler created")
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.repo.List())
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id := recordID(r)
	record, err := h.repo.Get(id)
	if err != nil {
		log.Debug().Str("func", "*Handler.get").Str("record_id", id).Msg("record not found")
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, record)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Str("func", "*Handler.create").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	stored, err := h.repo.Create(record)
	if err != nil {
		log.Err(err).Str("func", "*Handler.create").Msg("error storing record")
		http.Error(w, "error storing record", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusCreated, stored)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var patch models.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Str("func", "*Handler.patch").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	id := recordID(r)
	stored, err := h.repo.Patch(id, patch)
	if err != nil {
		log.Err(err).Str("func", "*Handler.patch").Str("record_id", id).Msg("error applying patch")
		http.Error(w, "error applying patch", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, stored)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id := recordID(r)
	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		log.Err(err).Str("func", "*Handler.delete").Str("record_id", id).Msg("error deleting record")
		http.Error(w, "error deleting record", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "writeJSON").Msg("error encoding response")
	}
}
