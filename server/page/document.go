package page

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/tkrehbiel/activitynode/server/activity"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

// ActorPage serves the actor document of one local user.
// The document is built from typed values and checked against the actor rules before it is served.
type ActorPage struct {
	path     string
	rendered []byte
}

func NewActorPage(path string) *ActorPage {
	return &ActorPage{path: path}
}

func (p *ActorPage) Path() string   { return p.path }
func (p *ActorPage) Accept() string { return `application/(activity|ld)\+json` }

func (p *ActorPage) Init(meta any) error {
	user, ok := meta.(UserMetaData)
	if !ok {
		return fmt.Errorf("actor page needs user metadata, got %T", meta)
	}
	doc, err := activity.Decode(user.Actor())
	if err != nil {
		return err
	}
	if _, err := activity.ParseActor(doc); err != nil {
		return fmt.Errorf("actor [%s]: %w", user.UserName, err)
	}
	p.rendered, err = json.Marshal(doc)
	return err
}

func (p *ActorPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	telemetry.Request(r, "ActorPage.ServeHTTP")
	telemetry.Increment("actor_requests", 1)
	serveRendered(w, activity.ContentType, p.rendered)
}

// WebFingerPage resolves acct: resources for local users.
type WebFingerPage struct {
	meta  MetaData
	pages map[string][]byte
}

const WebFingerPath = "/.well-known/webfinger"

var acctRegex = regexp.MustCompile(`^acct:([^@]+)@(.+)$`)

func NewWebFingerPage(meta MetaData) *WebFingerPage {
	return &WebFingerPage{meta: meta, pages: make(map[string][]byte)}
}

// Add a user resource to be served
func (s *WebFingerPage) Add(user UserMetaData) error {
	jrd := user.WebFinger()
	if err := jrd.Validate(); err != nil {
		return fmt.Errorf("webfinger [%s]: %w", user.UserName, err)
	}
	b, err := json.Marshal(jrd)
	if err != nil {
		return err
	}
	s.pages[user.UserName] = b
	return nil
}

func (s *WebFingerPage) Path() string        { return WebFingerPath }
func (s *WebFingerPage) Accept() string      { return "*/*" }
func (s *WebFingerPage) Init(meta any) error { return nil }

func (s *WebFingerPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	telemetry.Request(r, "WebFingerPage.ServeHTTP")
	// This one specifically uses the resource query parameter to lookup webfinger resources.
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		telemetry.Increment("webfinger_missing", 1)
		http.Error(w, "missing resource parameter", http.StatusBadRequest)
		return
	}
	matches := acctRegex.FindStringSubmatch(resource)
	if matches == nil {
		telemetry.Log("WARNING: malformed webfinger resource request [%s]", resource)
		telemetry.Increment("webfinger_malformed", 1)
		http.Error(w, "malformed resource parameter", http.StatusBadRequest)
		return
	}
	username, hostname := matches[1], matches[2]
	page, ok := s.pages[username]
	if hostname != s.meta.HostName || !ok {
		telemetry.Log("WARNING: unrecognized webfinger resource request for [%s]", resource)
		telemetry.Increment("webfinger_unrecognized", 1)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	serveRendered(w, activity.ContentTypeJRD, page)
}
