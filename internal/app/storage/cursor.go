package storage

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor marks a position in a keyset-paginated listing. Rows are ordered by
// (created_at, id) so the pair identifies a row uniquely even when two rows
// share a timestamp.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	payload, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(payload)
}

// DecodeCursor parses a client-provided token. A malformed or empty token
// yields ok=false, which callers treat as the first page.
func DecodeCursor(token string) (Cursor, bool) {
	if token == "" {
		return Cursor{}, false
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, false
	}
	if c.ID == "" {
		return Cursor{}, false
	}
	return c, true
}
