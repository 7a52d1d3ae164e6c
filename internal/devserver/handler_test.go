// SPDX-License-Identifier: Apache-2.0

package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/internal/normalize"
	"github.com/tripkeep/go-trip-keeper/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *Repo) {
	t.Helper()

	repo := NewRepo(normalize.New(nil))
	handler := NewHandler(repo, logger.Nop())
	srv := httptest.NewServer(handler.Init())
	t.Cleanup(srv.Close)
	return srv, repo
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) models.Record {
	t.Helper()
	defer resp.Body.Close()

	var record models.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	return record
}

func TestHandler_CreateAndGet(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/records", models.Record{
		ID:    "rec-1",
		Title: "Naples",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeRecord(t, resp)

	// server-side normalization fills defaults
	assert.Equal(t, models.StatusIncomplete, created.Status)
	assert.NotNil(t, created.Lodgings)

	resp = doJSON(t, http.MethodGet, srv.URL+"/records/rec-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Naples", decodeRecord(t, resp).Title)
}

func TestHandler_GetUnknownIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/records/missing", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_List(t *testing.T) {
	srv, repo := newTestServer(t)
	require.NoError(t, repo.Seed(
		models.Record{ID: "b", Title: "B"},
		models.Record{ID: "a", Title: "A"},
	))

	resp := doJSON(t, http.MethodGet, srv.URL+"/records", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var records []models.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))

	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestHandler_PatchExisting(t *testing.T) {
	srv, repo := newTestServer(t)
	require.NoError(t, repo.Seed(models.Record{ID: "rec-1", Title: "old", Notes: "kept"}))

	title := "new"
	resp := doJSON(t, http.MethodPatch, srv.URL+"/records/rec-1", models.RecordPatch{Title: &title})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decodeRecord(t, resp)

	assert.Equal(t, "new", patched.Title)
	assert.Equal(t, "kept", patched.Notes)
}

func TestHandler_PatchUnknownIDUpserts(t *testing.T) {
	srv, repo := newTestServer(t)

	title := "born from a patch"
	resp := doJSON(t, http.MethodPatch, srv.URL+"/records/queued-1", models.RecordPatch{Title: &title})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeRecord(t, resp)

	assert.Equal(t, "queued-1", created.ID)
	assert.Equal(t, "born from a patch", created.Title)

	stored, err := repo.Get("queued-1")
	require.NoError(t, err)
	assert.Equal(t, "born from a patch", stored.Title)
}

func TestHandler_PatchTombstoneDeletes(t *testing.T) {
	srv, repo := newTestServer(t)
	require.NoError(t, repo.Seed(models.Record{ID: "rec-1", Title: "doomed"}))

	deleted := true
	resp := doJSON(t, http.MethodPatch, srv.URL+"/records/rec-1", models.RecordPatch{Deleted: &deleted})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	_, err := repo.Get("rec-1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	resp = doJSON(t, http.MethodGet, srv.URL+"/records/rec-1", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Delete(t *testing.T) {
	srv, repo := newTestServer(t)
	require.NoError(t, repo.Seed(models.Record{ID: "rec-1"}))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/records/rec-1", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/records/rec-1", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_InvalidJSONIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/records", "application/json", bytes.NewBufferString("{broken"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
