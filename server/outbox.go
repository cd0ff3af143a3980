package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tkrehbiel/activitynode/server/activity"
	"github.com/tkrehbiel/activitynode/server/rss"
	"github.com/tkrehbiel/activitynode/server/storage"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

// how often a user's feed is checked for new posts
const feedPeriod = 5 * time.Minute

// ActivityOutbox validates outgoing activities and hands them to their targets.
// Delivery is simulated: the activity is logged rather than sent over the network.
type ActivityOutbox struct {
	username string
	id       string
	actorID  string
	rssURL   string
	targets  []string
	table    string
	store    storage.Gateway
	policy   *bluemonday.Policy
}

func NewOutbox(id, actorID string, targets []string, table string, store storage.Gateway) *ActivityOutbox {
	return &ActivityOutbox{
		id:      id,
		actorID: actorID,
		targets: targets,
		table:   table,
		store:   store,
		policy:  bluemonday.UGCPolicy(),
	}
}

// Dispatch validates an activity and reports it as sent to target
func (ao *ActivityOutbox) Dispatch(raw any, target string) error {
	act, err := activity.ParseActivity(raw)
	if err != nil {
		telemetry.Increment("outbox_rejected", 1)
		if issues, ok := activity.AsIssues(err); ok {
			telemetry.Warn(issues, "rejected activity at outbox [%s]", ao.id)
		}
		return newValidationError(err)
	}
	telemetry.Increment("outbox_dispatched", 1)
	telemetry.Log("sending activity [%s] to [%s]", act.ID, target)
	return nil
}

// PostHTTP handles POST requests to the outbox, the target inbox is given by the target query parameter
func (ao *ActivityOutbox) PostHTTP(w http.ResponseWriter, r *http.Request) {
	telemetry.Request(r, "ActivityOutbox.PostHTTP [%s]", ao.id)
	telemetry.Increment("post_requests", 1)

	target := r.URL.Query().Get("target")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, "application/json", errorResponse{Error: "missing target parameter"})
		return
	}
	raw, err := readJSON(r)
	if err != nil {
		telemetry.Error(err, "reading outbox body")
		writeResult(w, err)
		return
	}
	writeResult(w, ao.Dispatch(raw, target))
}

// NewItem is called when a new RSS item is detected by the watcher.
// The item becomes a Create activity that is stored and dispatched to every configured target.
func (ao *ActivityOutbox) NewItem(item rss.Item) {
	telemetry.Trace("new item [%s] for [%s]", item.Title, ao.username)
	telemetry.Increment("rss_newitems", 1)

	raw, err := activity.Decode(ao.createNote(item))
	if err != nil {
		telemetry.Error(err, "encoding item [%s] for [%s]", item.ID, ao.username)
		return
	}
	if _, err := activity.ParseActivity(raw); err != nil {
		telemetry.Increment("rss_rejected", 1)
		if issues, ok := activity.AsIssues(err); ok {
			telemetry.Warn(issues, "rejected item [%s] for [%s]", item.ID, ao.username)
		}
		return
	}
	if rec, ok := raw.(map[string]any); ok && ao.store != nil {
		if err := ao.store.Put(context.TODO(), ao.table, rec); err != nil {
			telemetry.Error(err, "storing item [%s] for [%s]", item.ID, ao.username)
		}
	}
	for _, target := range ao.targets {
		if err := ao.Dispatch(raw, target); err != nil {
			telemetry.Error(err, "dispatching item [%s] to [%s]", item.ID, target)
		}
	}
}

func (ao *ActivityOutbox) createNote(item rss.Item) activity.Create {
	published := item.Published.UTC().Format(activity.TimeFormat)
	noteID := item.URL
	if noteID == "" {
		noteID = item.ID
	}
	note := activity.Entity{
		ID:           noteID,
		Type:         activity.NoteType,
		Name:         item.Title,
		Content:      ao.policy.Sanitize(item.Content),
		AttributedTo: ao.actorID,
		Published:    published,
		To:           []string{activity.PublicAddress},
	}
	activityID, _ := url.JoinPath(ao.actorID, "activities", uuid.NewString())
	return activity.Create{Activity: activity.Activity{
		Entity: activity.Entity{
			Context:   activity.Context,
			ID:        activityID,
			Type:      string(activity.CreateType),
			Published: published,
			To:        []string{activity.PublicAddress},
		},
		Actor:  activity.ActorRef{Ref: ao.actorID},
		Object: activity.ObjectRef{Object: &note},
	}}
}

// StatusCode is called by the RSS watcher to report the latest fetch status code
func (ao *ActivityOutbox) StatusCode(code int) {
	telemetry.Trace("rss feed return code [%d]", code)
	telemetry.Increment("rss_fetches", 1)
}

// WatchRSS watches an RSS feed for new items and turns them into activities
func (ao *ActivityOutbox) WatchRSS(ctx context.Context) {
	watcher := rss.NewFeedWatcher(ao.rssURL, ao)
	telemetry.Log("watching %s", ao.rssURL)
	watcher.Watch(ctx, feedPeriod)
}
