package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and publishers return
// these (optionally wrapped) so services can translate them into domain errors.
// A replayed idempotency key is not an error: Claim reports it as false.
//
//   - ErrInvalidState: caller supplied an argument the store cannot honour
//   - ErrUnavailable: broker or cache temporarily unavailable
var (
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
