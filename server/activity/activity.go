package activity

import "encoding/json"

// ActorRef is either an embedded Actor or a bare reference URL.
// The zero value means the field was absent.
type ActorRef struct {
	Actor *Actor
	Ref   string
}

func (r ActorRef) IsEmbedded() bool {
	return r.Actor != nil
}

func (r ActorRef) IsReference() bool {
	return r.Actor == nil && r.Ref != ""
}

// ID returns the embedded actor's id or the reference itself.
func (r ActorRef) ID() string {
	if r.Actor != nil {
		return r.Actor.ID
	}
	return r.Ref
}

func (r ActorRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.Actor != nil:
		return json.Marshal(r.Actor)
	case r.Ref != "":
		return json.Marshal(r.Ref)
	}
	return []byte("null"), nil
}

// ObjectRef is either an embedded Entity or a bare reference URL.
type ObjectRef struct {
	Object *Entity
	Ref    string
}

func (r ObjectRef) IsEmbedded() bool {
	return r.Object != nil
}

func (r ObjectRef) IsReference() bool {
	return r.Object == nil && r.Ref != ""
}

func (r ObjectRef) ID() string {
	if r.Object != nil {
		return r.Object.ID
	}
	return r.Ref
}

func (r ObjectRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.Object != nil:
		return json.Marshal(r.Object)
	case r.Ref != "":
		return json.Marshal(r.Ref)
	}
	return []byte("null"), nil
}

// Activity is an action performed by an actor upon an object.
type Activity struct {
	Entity
	Actor  ActorRef  `json:"actor"`
	Object ObjectRef `json:"object"`
}

func (a Activity) Record() map[string]any {
	if a.Raw != nil {
		return a.Raw
	}
	return toRecord(a)
}

// Typed is one of the named activity refinements, selected by the literal value of type.
type Typed interface {
	Kind() Kind
	Base() Activity
}

type Create struct {
	Activity
}

func (Create) Kind() Kind       { return CreateType }
func (c Create) Base() Activity { return c.Activity }

type Like struct {
	Activity
}

func (Like) Kind() Kind       { return LikeType }
func (l Like) Base() Activity { return l.Activity }

type Announce struct {
	Activity
}

func (Announce) Kind() Kind       { return AnnounceType }
func (a Announce) Base() Activity { return a.Activity }

// Follow narrows its object to an actor or a reference to one.
type Follow struct {
	Entity
	Actor  ActorRef `json:"actor"`
	Object ActorRef `json:"object"`
}

func (Follow) Kind() Kind { return FollowType }

func (f Follow) Base() Activity {
	act := Activity{Entity: f.Entity, Actor: f.Actor}
	if f.Object.Actor != nil {
		target := f.Object.Actor.Entity
		act.Object = ObjectRef{Object: &target}
	} else {
		act.Object = ObjectRef{Ref: f.Object.Ref}
	}
	return act
}
