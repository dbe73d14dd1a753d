// Package portal turns external procurement websites into streams of raw
// tender records. Fixed adapters carry pre-tuned selectors for known portals;
// the generic adapter discovers structure heuristically. Neither assigns
// record ids or categories; the pipeline does that uniformly.
package portal

import (
	"context"
	"fmt"

	"tender-scout/config"
	"tender-scout/internal/tender"
)

// Candidate is one discovered item location. Fixed adapters carry only the
// detail URL and fetch it during Extract; the generic adapter captures the
// listing element's text up front and never refetches.
type Candidate struct {
	URL  string
	Text string
}

// Session is one open crawl against a portal. DiscoverCandidates never fails
// past this boundary: internal faults reduce to an empty slice.
type Session interface {
	DiscoverCandidates(ctx context.Context) []Candidate
	Extract(ctx context.Context, c Candidate) (*tender.Raw, error)
	Close() error
}

// Adapter opens sessions for one portal family.
type Adapter interface {
	Name() string
	Open(ctx context.Context, cfg config.PortalConfig) (Session, error)
}

// AdapterError means the portal could not be crawled at all this cycle
// (session open failed). The cycle continues with the remaining portals.
type AdapterError struct {
	Portal string
	Err    error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("portal %s: adapter failed: %v", e.Portal, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// NavigationError is a timeout or network fault on one URL or listing path.
// Callers skip the step and continue.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError means one candidate yielded no usable record (missing
// title, too little text). The candidate is discarded, the crawl continues.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
}

// AuthError marks an unconfirmed login. It is advisory: sessions proceed
// without a confirmed login because public listings may still be readable.
type AuthError struct {
	Portal string
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("portal %s: login not confirmed: %s", e.Portal, e.Reason)
}
