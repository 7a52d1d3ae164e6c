// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"

	"github.com/tripkeep/go-trip-keeper/internal/enrich"
	"github.com/tripkeep/go-trip-keeper/models"
)

// Enricher resolves free-form destinations to coordinates and fetches
// weather snapshots. Implemented by [enrich.Client].
type Enricher interface {
	Geocode(ctx context.Context, query string) (enrich.Place, error)
	Forecast(ctx context.Context, lat, lon float64) (enrich.Forecast, error)
}

// SetEnricher attaches the optional enrichment collaborator. Without one
// the enrichment operations report [ErrEnrichmentUnavailable].
func (e *Engine) SetEnricher(enricher Enricher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enricher = enricher
}

func (e *Engine) getEnricher() (Enricher, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enricher == nil || !e.monitor.IsOnline() {
		return nil, ErrEnrichmentUnavailable
	}
	return e.enricher, nil
}

// EnrichVenue geocodes the record's venue address, falling back to the
// record destination, and writes the resolved coordinates back through the
// regular write path. Enrichment is a pure lookup: nothing is cached on
// failure and the record is left untouched.
func (e *Engine) EnrichVenue(ctx context.Context, id string) error {
	enricher, err := e.getEnricher()
	if err != nil {
		return err
	}

	entry, ok, err := e.storages.RecordCache.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("read cache for enrichment: %w", err)
	}
	if !ok {
		return ErrNotFoundLocally
	}

	query := entry.Record.Destination
	if entry.Record.Venue != nil && entry.Record.Venue.Address != "" {
		query = entry.Record.Venue.Address
	}
	if query == "" {
		return fmt.Errorf("record %s: no address or destination to geocode", id)
	}

	place, err := enricher.Geocode(ctx, query)
	if err != nil {
		return fmt.Errorf("geocode %q: %w", query, err)
	}

	venue := models.Venue{}
	if entry.Record.Venue != nil {
		venue = *entry.Record.Venue
	}
	venue.Lat = place.Latitude
	venue.Lon = place.Longitude
	if venue.Name == "" {
		venue.Name = place.Name
	}

	e.logger.Debug().
		Str("func", "Engine.EnrichVenue").
		Str("record_id", id).
		Str("query", query).
		Msg("venue geocoded")

	return e.Write(ctx, id, models.RecordPatch{Venue: &venue})
}

// DestinationForecast returns a weather snapshot for the record's venue
// coordinates. When the venue has not been geocoded yet the destination is
// resolved on the fly, without persisting the coordinates.
func (e *Engine) DestinationForecast(ctx context.Context, id string) (enrich.Forecast, error) {
	enricher, err := e.getEnricher()
	if err != nil {
		return enrich.Forecast{}, err
	}

	entry, ok, err := e.storages.RecordCache.Get(ctx, id)
	if err != nil {
		return enrich.Forecast{}, fmt.Errorf("read cache for forecast: %w", err)
	}
	if !ok {
		return enrich.Forecast{}, ErrNotFoundLocally
	}

	lat, lon := 0.0, 0.0
	if v := entry.Record.Venue; v != nil && (v.Lat != 0 || v.Lon != 0) {
		lat, lon = v.Lat, v.Lon
	} else {
		if entry.Record.Destination == "" {
			return enrich.Forecast{}, fmt.Errorf("record %s: no destination to resolve", id)
		}
		place, geoErr := enricher.Geocode(ctx, entry.Record.Destination)
		if geoErr != nil {
			return enrich.Forecast{}, fmt.Errorf("geocode %q: %w", entry.Record.Destination, geoErr)
		}
		lat, lon = place.Latitude, place.Longitude
	}

	forecast, err := enricher.Forecast(ctx, lat, lon)
	if err != nil {
		return enrich.Forecast{}, fmt.Errorf("forecast for record %s: %w", id, err)
	}
	return forecast, nil
}
