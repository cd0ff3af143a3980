package activity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reason identifies why a field failed validation
type Reason string

const (
	ReasonMissing  Reason = "missing"
	ReasonType     Reason = "type"
	ReasonEmpty    Reason = "empty"
	ReasonURL      Reason = "url"
	ReasonDateTime Reason = "datetime"
	ReasonLiteral  Reason = "literal"
	ReasonUnion    Reason = "union"
)

// Path is a sequence of object keys (string) and array indices (int) from the root value.
type Path []any

// Key returns a copy of the path extended by an object key.
func (p Path) Key(key string) Path {
	return p.append(key)
}

// Index returns a copy of the path extended by an array index.
func (p Path) Index(i int) Path {
	return p.append(i)
}

func (p Path) append(elem any) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, elem)
}

// First returns the first element of the path, or nil for the root.
func (p Path) First() any {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var sb strings.Builder
	for i, elem := range p {
		switch e := elem.(type) {
		case int:
			sb.WriteString("[" + strconv.Itoa(e) + "]")
		default:
			if i > 0 {
				sb.WriteString(".")
			}
			sb.WriteString(fmt.Sprint(e))
		}
	}
	return sb.String()
}

// Issue is a single validation failure.
// Union failures keep the failure of each attempted branch in Branches.
type Issue struct {
	Path     Path     `json:"path"`
	Reason   Reason   `json:"reason"`
	Message  string   `json:"message"`
	Branches []Issues `json:"branches,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Path, i.Message, i.Reason)
}

// Issues is the ordered list of failures from one validation pass.
type Issues []Issue

func (is Issues) Error() string {
	s := make([]string, len(is))
	for i, issue := range is {
		s[i] = issue.String()
	}
	return "invalid: " + strings.Join(s, "; ")
}

// AsIssues extracts validation issues from an error chain.
func AsIssues(err error) (Issues, bool) {
	var issues Issues
	if errors.As(err, &issues) {
		return issues, true
	}
	return nil, false
}

func (is Issues) err() error {
	if len(is) == 0 {
		return nil
	}
	return is
}
