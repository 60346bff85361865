package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Collection is a user-owned named group of items. The whole list of
// collections is stored as one JSON array.
type Collection struct {
	ID          int64     `json:"id" bson:"id"`
	UserID      *int64    `json:"userId" bson:"userId"`
	Title       string    `json:"title" bson:"title"`
	Tag         string    `json:"tag" bson:"tag"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
	// ItemCount is a display-only counter.
	ItemCount int `json:"itemCount" bson:"itemCount"`
	// Version is 0 for records written before versioning existed.
	Version int `json:"version,omitempty" bson:"version,omitempty"`
}

// timestampLayouts are tried in order when decoding a stored timestamp.
// Values without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp decodes one stored timestamp. null, "" and strings in no
// known layout give the zero time; a number is read as Unix milliseconds.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		s = strings.TrimSpace(s)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timestamp must be a string or number, got %s", raw)
}

// UnmarshalJSON decodes a record written by any earlier version of the app.
// A malformed timestamp does not reject the record.
func (c *Collection) UnmarshalJSON(b []byte) error {
	type plain Collection
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var err error
	if c.CreatedAt, err = ParseTimestamp(aux.CreatedAt); err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	if c.UpdatedAt, err = ParseTimestamp(aux.UpdatedAt); err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}
	return nil
}

// IDString is the form ids take in URLs and lookups.
func (c Collection) IDString() string {
	return strconv.FormatInt(c.ID, 10)
}

// OwnedBy reports whether userID is the owner. A nil userID owns nothing.
func (c Collection) OwnedBy(userID *int64) bool {
	return userID != nil && c.UserID != nil && *c.UserID == *userID
}

// Draft carries the editable fields of a create or update. On update only
// non-nil fields are merged over the stored record.
type Draft struct {
	Title       *string `json:"title,omitempty"`
	Tag         *string `json:"tag,omitempty"`
	Description *string `json:"description,omitempty"`
	// ExpectedVersion, when positive, must match the stored version on update.
	ExpectedVersion int `json:"version,omitempty"`
}

// FullDraft sets all three editable fields.
func FullDraft(title, tag, description string) Draft {
	return Draft{Title: &title, Tag: &tag, Description: &description}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Apply merges the non-nil fields of d into c.
func (d Draft) Apply(c *Collection) {
	if d.Title != nil {
		c.Title = *d.Title
	}
	if d.Tag != nil {
		c.Tag = *d.Tag
	}
	if d.Description != nil {
		c.Description = *d.Description
	}
}

// TitleValue returns the title, or "" when unset.
func (d Draft) TitleValue() string { return deref(d.Title) }
