package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Caches and stores return these
// (optionally wrapped) so services can decide whether to fall back or fail:
// - ErrNotFound: key absent, or present but past its TTL
// - ErrUnavailable: backing service cannot be reached
//
// Validation failures belong in pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
