package storage

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), ID: "abc-123"}

	token := c.Encode()
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	decoded, ok := DecodeCursor(token)
	if !ok {
		t.Fatal("decode failed")
	}
	if !decoded.CreatedAt.Equal(c.CreatedAt) || decoded.ID != c.ID {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestDecodeCursorRejectsBadInput(t *testing.T) {
	for _, token := range []string{"", "not-base64!!", "aGVsbG8=", "eyJpZCI6IiJ9"} {
		if _, ok := DecodeCursor(token); ok {
			t.Fatalf("token %q decoded successfully", token)
		}
	}
}
