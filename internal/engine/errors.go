// SPDX-License-Identifier: Apache-2.0

package engine

import "errors"

// ErrNotFoundLocally is returned by Read when no cache entry exists and the
// remote store could not produce the record either (offline, unreachable,
// or a remote miss). It is an outcome, not a transport error: there is
// nothing safe to show, and the presentation layer uses it to decide
// whether to abandon the view.
var ErrNotFoundLocally = errors.New("record not found locally")

// ErrEnrichmentUnavailable is returned by the enrichment operations when no
// enricher is configured or connectivity is down. Lookups are online-only
// and never queued.
var ErrEnrichmentUnavailable = errors.New("enrichment unavailable")
