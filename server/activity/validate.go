package activity

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// rule is a set of ozzo rules applied to a string field, reported under a single reason
type rule struct {
	reason Reason
	rules  []validation.Rule
}

var (
	urlRule      = rule{ReasonURL, []validation.Rule{validation.Required, is.RequestURL, validation.By(hasHost)}}
	dateTimeRule = rule{ReasonDateTime, []validation.Rule{validation.Required, validation.By(isoDateTime)}}
	nonEmptyRule = rule{ReasonEmpty, []validation.Rule{validation.Required}}
	textRule     = rule{}
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// hasHost rejects hierarchical URLs without an authority, e.g. "https://"
func hasHost(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return validation.NewError("validation_url_invalid", "must be a valid URL")
	}
	hierarchical := strings.Contains(s, "://") || u.Scheme == "http" || u.Scheme == "https"
	if hierarchical && u.Host == "" {
		return validation.NewError("validation_url_no_host", "must have a host")
	}
	return nil
}

func isoDateTime(value interface{}) error {
	s, _ := value.(string)
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return validation.NewError("validation_datetime_invalid", "must be an ISO-8601 date-time")
}

// checker accumulates issues in field order while walking a decoded JSON value.
// A value is decoded JSON: map[string]any, []any, string, float64, bool or nil.
type checker struct {
	issues Issues
}

func (c *checker) fail(path Path, reason Reason, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Path:    path,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) check(path Path, s string, r rule) bool {
	if err := validation.Validate(s, r.rules...); err != nil {
		c.fail(path, r.reason, "%s", err.Error())
		return false
	}
	return true
}

func (c *checker) object(path Path, v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		c.fail(path, ReasonType, "expected object, got %s", typeName(v))
	}
	return m, ok
}

// str reads a string field. Absent optional fields are fine, anything present must be well-formed.
func (c *checker) str(m map[string]any, path Path, key string, required bool, r rule) string {
	p := path.Key(key)
	raw, ok := m[key]
	if !ok {
		if required {
			c.fail(p, ReasonMissing, "is required")
		}
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(p, ReasonType, "expected string, got %s", typeName(raw))
		return ""
	}
	c.check(p, s, r)
	return s
}

func (c *checker) literal(m map[string]any, path Path, key string, want string) string {
	p := path.Key(key)
	raw, ok := m[key]
	if !ok {
		c.fail(p, ReasonMissing, "is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(p, ReasonType, "expected string, got %s", typeName(raw))
		return ""
	}
	if s != want {
		c.fail(p, ReasonLiteral, "must be %q, got %q", want, s)
	}
	return s
}

func (c *checker) urls(m map[string]any, path Path, key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	p := path.Key(key)
	list, ok := raw.([]any)
	if !ok {
		c.fail(p, ReasonType, "expected array, got %s", typeName(raw))
		return nil
	}
	out := make([]string, 0, len(list))
	for i, elem := range list {
		ep := p.Index(i)
		s, ok := elem.(string)
		if !ok {
			c.fail(ep, ReasonType, "expected string, got %s", typeName(elem))
			continue
		}
		if c.check(ep, s, urlRule) {
			out = append(out, s)
		}
	}
	return out
}

// union resolves an entity-or-reference field: the embedded branch is tried first, then the bare reference.
// When both fail a single issue is reported at the field with each branch's failure attached.
func (c *checker) union(path Path, raw any, what string, embed func(*checker, map[string]any)) (ref string, embedded bool, ok bool) {
	branches := make([]Issues, 0, 2)

	sub := &checker{}
	if obj, isObject := raw.(map[string]any); isObject {
		embed(sub, obj)
		if len(sub.issues) == 0 {
			return "", true, true
		}
	} else {
		sub.fail(path, ReasonType, "expected %s object, got %s", what, typeName(raw))
	}
	branches = append(branches, sub.issues)

	sub = &checker{}
	if s, isString := raw.(string); isString {
		if sub.check(path, s, urlRule) {
			return s, false, true
		}
	} else {
		sub.fail(path, ReasonType, "expected reference URL, got %s", typeName(raw))
	}
	branches = append(branches, sub.issues)

	c.issues = append(c.issues, Issue{
		Path:     path,
		Reason:   ReasonUnion,
		Message:  fmt.Sprintf("must be an embedded %s or a reference URL", what),
		Branches: branches,
	})
	return "", false, false
}

func (c *checker) entity(m map[string]any, path Path, kind Kind) Entity {
	e := Entity{Context: m["@context"], Raw: m}
	e.ID = c.str(m, path, IDProperty, true, urlRule)
	if kind == "" {
		e.Type = c.str(m, path, TypeProperty, true, nonEmptyRule)
	} else {
		e.Type = c.literal(m, path, TypeProperty, string(kind))
	}
	e.Name = c.str(m, path, "name", false, textRule)
	e.Content = c.str(m, path, "content", false, textRule)
	e.AttributedTo = c.str(m, path, "attributedTo", false, urlRule)
	e.Published = c.str(m, path, PublishedProperty, false, dateTimeRule)
	e.To = c.urls(m, path, "to")
	e.CC = c.urls(m, path, "cc")
	return e
}

func (c *checker) actor(m map[string]any, path Path) Actor {
	a := Actor{Entity: c.entity(m, path, "")}
	a.Inbox = c.str(m, path, "inbox", true, urlRule)
	a.Outbox = c.str(m, path, "outbox", true, urlRule)
	a.PreferredUsername = c.str(m, path, "preferredUsername", false, textRule)
	return a
}

func (c *checker) actorRef(m map[string]any, path Path, key string) ActorRef {
	p := path.Key(key)
	raw, ok := m[key]
	if !ok {
		c.fail(p, ReasonMissing, "is required")
		return ActorRef{}
	}
	var a Actor
	ref, embedded, ok := c.union(p, raw, "actor", func(sub *checker, obj map[string]any) {
		a = sub.actor(obj, p)
	})
	switch {
	case !ok:
		return ActorRef{}
	case embedded:
		return ActorRef{Actor: &a}
	}
	return ActorRef{Ref: ref}
}

func (c *checker) objectRef(m map[string]any, path Path, key string) ObjectRef {
	p := path.Key(key)
	raw, ok := m[key]
	if !ok {
		c.fail(p, ReasonMissing, "is required")
		return ObjectRef{}
	}
	var e Entity
	ref, embedded, ok := c.union(p, raw, "object", func(sub *checker, obj map[string]any) {
		e = sub.entity(obj, p, "")
	})
	switch {
	case !ok:
		return ObjectRef{}
	case embedded:
		return ObjectRef{Object: &e}
	}
	return ObjectRef{Ref: ref}
}

func (c *checker) activity(m map[string]any, path Path, kind Kind) Activity {
	act := Activity{Entity: c.entity(m, path, kind)}
	act.Actor = c.actorRef(m, path, "actor")
	act.Object = c.objectRef(m, path, "object")
	return act
}

func (c *checker) follow(m map[string]any, path Path) Follow {
	f := Follow{Entity: c.entity(m, path, FollowType)}
	f.Actor = c.actorRef(m, path, "actor")
	f.Object = c.actorRef(m, path, "object")
	return f
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// ParseEntity validates a decoded JSON value as a generic ActivityPub object.
func ParseEntity(v any) (Entity, error) {
	c := &checker{}
	m, ok := c.object(nil, v)
	if !ok {
		return Entity{}, c.issues.err()
	}
	e := c.entity(m, nil, "")
	if err := c.issues.err(); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// ParseActor validates a decoded JSON value as an Actor.
func ParseActor(v any) (Actor, error) {
	c := &checker{}
	m, ok := c.object(nil, v)
	if !ok {
		return Actor{}, c.issues.err()
	}
	a := c.actor(m, nil)
	if err := c.issues.err(); err != nil {
		return Actor{}, err
	}
	return a, nil
}

// ParseActivity validates a decoded JSON value against the generic Activity shape.
// Any non-empty type is accepted, including types none of the named kinds recognize.
func ParseActivity(v any) (Activity, error) {
	c := &checker{}
	m, ok := c.object(nil, v)
	if !ok {
		return Activity{}, c.issues.err()
	}
	act := c.activity(m, nil, "")
	if err := c.issues.err(); err != nil {
		return Activity{}, err
	}
	return act, nil
}

// ParseKind validates a decoded JSON value against one of the named activity kinds,
// which requires the type to equal the kind exactly.
func ParseKind(kind Kind, v any) (Typed, error) {
	c := &checker{}
	m, ok := c.object(nil, v)
	if !ok {
		return nil, c.issues.err()
	}
	var typed Typed
	switch kind {
	case CreateType:
		typed = Create{c.activity(m, nil, kind)}
	case LikeType:
		typed = Like{c.activity(m, nil, kind)}
	case AnnounceType:
		typed = Announce{c.activity(m, nil, kind)}
	case FollowType:
		typed = c.follow(m, nil)
	default:
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}
	if err := c.issues.err(); err != nil {
		return nil, err
	}
	return typed, nil
}
