package activity

import "fmt"

// Schema names one of the shapes a decoded JSON value can be validated against.
type Schema string

const (
	EntitySchema        Schema = "Entity"
	ActorSchema         Schema = "Actor"
	ActivitySchema      Schema = "Activity"
	CreateSchema        Schema = Schema(CreateType)
	FollowSchema        Schema = Schema(FollowType)
	LikeSchema          Schema = Schema(LikeType)
	AnnounceSchema      Schema = Schema(AnnounceType)
	WebFingerLinkSchema Schema = "WebFingerLink"
	WebFingerSchema     Schema = "WebFinger"
)

// Validate checks v against a schema and returns the narrowed value
// (Entity, Actor, Activity, Typed, WebFingerLink or WebFinger).
// Validation failures are returned as Issues.
func Validate(schema Schema, v any) (any, error) {
	switch schema {
	case EntitySchema:
		return narrowed(ParseEntity(v))
	case ActorSchema:
		return narrowed(ParseActor(v))
	case ActivitySchema:
		return narrowed(ParseActivity(v))
	case CreateSchema, FollowSchema, LikeSchema, AnnounceSchema:
		return narrowed(ParseKind(Kind(schema), v))
	case WebFingerLinkSchema:
		return narrowed(ParseWebFingerLink(v))
	case WebFingerSchema:
		return narrowed(ParseWebFinger(v))
	}
	return nil, fmt.Errorf("unknown schema %q", schema)
}

func narrowed[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
