package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	idProperty        = "id"
	publishedProperty = "published"
)

// Record is a JSON-like item addressed by its own id property
type Record map[string]any

// ID returns the record's primary key, or empty if it has none
func (r Record) ID() string {
	if s, ok := r[idProperty].(string); ok {
		return s
	}
	return ""
}

// Timestamp returns the published time if the record carries a parseable one
func (r Record) Timestamp() time.Time {
	if s, ok := r[publishedProperty].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (r Record) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// NewRecord decodes stored JSON back into a record
func NewRecord(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling record json: %w", err)
	}
	return r, nil
}
