package utils_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/hannakang/schedhub/internal/utils"
)

func TestScheduleCursorRoundtrip(t *testing.T) {
	createdAt := time.Date(2026, 7, 4, 10, 30, 0, 0, time.UTC)
	id := "0d9aa1de-7a6f-4b08-9c3e-1f2a3b4c5d6e"

	enc, err := utils.EncodeScheduleCursor(createdAt, id)

	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := utils.DecodeScheduleCursor(enc)

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !got.CreatedAt.Equal(createdAt) || got.ID != id {
		t.Errorf("got %+v, want createdAt=%v id=%s", got, createdAt, id)
	}
}

func TestDecodeScheduleCursorRejectsBadInput(t *testing.T) {
	enc := func(raw string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(raw))
	}

	tests := []struct {
		name   string
		cursor string
	}{
		{name: "empty", cursor: ""},
		{name: "not_base64", cursor: "!!!"},
		{name: "not_json", cursor: enc("not-json")},
		{name: "missing_id", cursor: enc(`{"createdAt":"2026-07-04T10:30:00Z"}`)},
		{name: "zero_time", cursor: enc(`{"id":"abc"}`)},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if _, err := utils.DecodeScheduleCursor(tt.cursor); err == nil {
				t.Errorf("DecodeScheduleCursor(%q) should fail", tt.cursor)
			}
		})
	}
}
