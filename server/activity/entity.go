package activity

import "encoding/json"

// Entity is a generic ActivityPub object.
// Raw holds the decoded JSON it was parsed from, including properties the model does not interpret.
type Entity struct {
	Context      any      `json:"@context,omitempty"`
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Name         string   `json:"name,omitempty"`
	Content      string   `json:"content,omitempty"`
	AttributedTo string   `json:"attributedTo,omitempty"`
	Published    string   `json:"published,omitempty"`
	To           []string `json:"to,omitempty"`
	CC           []string `json:"cc,omitempty"`

	Raw map[string]any `json:"-"`
}

// Record returns the object as a JSON-like record suitable for storage.
func (e Entity) Record() map[string]any {
	if e.Raw != nil {
		return e.Raw
	}
	return toRecord(e)
}

// Actor is an addressable agent with delivery endpoints.
type Actor struct {
	Entity
	Inbox             string `json:"inbox"`
	Outbox            string `json:"outbox"`
	PreferredUsername string `json:"preferredUsername,omitempty"`
}

func (a Actor) Record() map[string]any {
	if a.Raw != nil {
		return a.Raw
	}
	return toRecord(a)
}

func toRecord(v any) map[string]any {
	decoded, err := Decode(v)
	if err != nil {
		return nil
	}
	m, _ := decoded.(map[string]any)
	return m
}

// Decode converts a value built in code into decoded JSON so it can be validated like received input.
func Decode(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
