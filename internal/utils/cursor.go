package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// ScheduleCursor is the opaque pagination token for the schedules list:
// base64(json) of the last row's sort key.
type ScheduleCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeScheduleCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(ScheduleCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeScheduleCursor(cursor string) (ScheduleCursor, error) {
	if cursor == "" {
		return ScheduleCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return ScheduleCursor{}, err
	}

	var c ScheduleCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return ScheduleCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return ScheduleCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
