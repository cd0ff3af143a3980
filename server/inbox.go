package server

import (
	"context"
	"net/http"

	"github.com/tkrehbiel/activitynode/server/activity"
	"github.com/tkrehbiel/activitynode/server/storage"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

// ActivityInbox validates incoming activities and persists them through the storage gateway
type ActivityInbox struct {
	id    string // inbox URL, used in log messages
	table string
	store storage.Gateway
}

func NewInbox(id, table string, store storage.Gateway) *ActivityInbox {
	return &ActivityInbox{id: id, table: table, store: store}
}

// Ingest validates a decoded JSON value as an activity and stores it.
// The activity is written first, then its actor if the actor was embedded with an id.
// A failed actor write is reported but the activity write stays in place.
func (ai *ActivityInbox) Ingest(ctx context.Context, raw any) error {
	telemetry.Increment("inbox_activities", 1)

	act, err := activity.ParseActivity(raw)
	if err != nil {
		telemetry.Increment("inbox_rejected", 1)
		if issues, ok := activity.AsIssues(err); ok {
			telemetry.Warn(issues, "rejected activity at inbox [%s]", ai.id)
		}
		return newValidationError(err)
	}

	if err := ai.put(ctx, act.ID, act.Record()); err != nil {
		return err
	}
	telemetry.Log("stored %s activity [%s] by [%s] at inbox [%s]", act.Type, act.ID, act.Actor.ID(), ai.id)

	return ai.storeActor(ctx, act.Actor)
}

// storeActor writes an embedded actor under its own id.
// References are only noted, remote actors are never fetched.
func (ai *ActivityInbox) storeActor(ctx context.Context, actor activity.ActorRef) error {
	switch {
	case actor.IsReference():
		telemetry.Trace("actor [%s] is a reference, not stored", actor.Ref)
		return nil
	case actor.Actor == nil, actor.Actor.ID == "":
		telemetry.Trace("activity has no identifiable actor")
		return nil
	}
	return ai.put(ctx, actor.Actor.ID, actor.Actor.Record())
}

func (ai *ActivityInbox) put(ctx context.Context, key string, item storage.Record) error {
	if err := ai.store.Put(ctx, ai.table, item); err != nil {
		telemetry.Error(err, "storing [%s] in table [%s]", key, ai.table)
		return &StorageError{Op: "put", Table: ai.table, Key: key, Err: err}
	}
	return nil
}

// PostHTTP handles POST requests to the inbox.
// This is where activities from remote federated servers arrive.
func (ai *ActivityInbox) PostHTTP(w http.ResponseWriter, r *http.Request) {
	telemetry.Request(r, "ActivityInbox.PostHTTP [%s]", ai.id)
	telemetry.Increment("post_requests", 1)

	raw, err := readJSON(r)
	if err != nil {
		telemetry.Error(err, "reading inbox body")
		writeResult(w, err)
		return
	}
	writeResult(w, ai.Ingest(r.Context(), raw))
}
