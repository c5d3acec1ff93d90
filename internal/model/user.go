package model

import (
	"time"

	"github.com/google/uuid"
)

// AppUser is the minimal identity anchor a sleep entry hangs off.
//
// The ID is NOT generated by this system — it arrives as the caller's
// claimed identity in the X-User-Id header and is trusted as-is (identity
// verification is explicitly out of scope). We only record when we first
// saw it.
//
// WHY uuid.UUID AND NOT string?
// Parsing the header once at the edge gives every layer below a value that
// is already known to be well-formed, and a canonical lowercase form for
// the database key.
type AppUser struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
