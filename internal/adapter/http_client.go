// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tripkeep/go-trip-keeper/internal/normalize"
	"github.com/tripkeep/go-trip-keeper/models"
)

type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpRemoteStore struct {
	client     *resty.Client
	normalizer *normalize.Normalizer
}

// NewHTTPRemoteStore builds the HTTP implementation of [RemoteStore].
// Inbound payloads run through the normalizer so callers only ever see
// current-shape records.
func NewHTTPRemoteStore(cfg HTTPClientConfig, normalizer *normalize.Normalizer) RemoteStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteStore{client: cli, normalizer: normalizer}
}

func (h *httpRemoteStore) List(ctx context.Context) ([]models.Record, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/records")
	if err != nil {
		return nil, fmt.Errorf("%w: list request: %w", ErrRemoteUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var raws []models.RawRecord
	if err = json.Unmarshal(resp.Body(), &raws); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	records := make([]models.Record, 0, len(raws))
	for _, raw := range raws {
		record, _, normErr := h.normalizer.Normalize(raw)
		if normErr != nil {
			return nil, fmt.Errorf("normalize listed record: %w", normErr)
		}
		records = append(records, record)
	}

	return records, nil
}

func (h *httpRemoteStore) Get(ctx context.Context, id string) (models.Record, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/records/" + id)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: get request: %w", ErrRemoteUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	return h.decodeRecord(resp.Body())
}

func (h *httpRemoteStore) Patch(ctx context.Context, id string, patch models.RecordPatch) (models.Record, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch).
		Patch("/records/" + id)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: patch request: %w", ErrRemoteUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	return h.decodeRecord(resp.Body())
}

func (h *httpRemoteStore) Create(ctx context.Context, record models.Record) (models.Record, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Post("/records")
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: create request: %w", ErrRemoteUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	return h.decodeRecord(resp.Body())
}

func (h *httpRemoteStore) Delete(ctx context.Context, id string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Delete("/records/" + id)
	if err != nil {
		return fmt.Errorf("%w: delete request: %w", ErrRemoteUnavailable, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) decodeRecord(body []byte) (models.Record, error) {
	var raw models.RawRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Record{}, fmt.Errorf("decode record response: %w", err)
	}

	record, _, err := h.normalizer.Normalize(raw)
	if err != nil {
		return models.Record{}, fmt.Errorf("normalize record response: %w", err)
	}
	return record, nil
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Request.URL)
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("%w: http %d: %s", ErrRemoteUnavailable, resp.StatusCode(), body)
}
