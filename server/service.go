package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tkrehbiel/activitynode/server/page"
	"github.com/tkrehbiel/activitynode/server/storage"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

type ActivityService struct {
	Config Config
	Server http.Server
	router *mux.Router
	meta   page.MetaData
	store  storage.Gateway
	inbox  *ActivityInbox
	users  []ActivityUser
	cancel context.CancelFunc
}

type ActivityUser struct {
	name   string
	meta   page.UserMetaData
	outbox *ActivityOutbox
	inbox  *ActivityInbox
}

func (s *ActivityService) addHandlers() {
	s.router.HandleFunc("/", homeHandler).Methods("GET")
	s.router.HandleFunc("/health", healthHandler).Methods("GET")
	s.router.Handle("/metrics", telemetry.Handler()).Methods("GET")
	s.router.Handle("/objects", NewObjectReader(s.Config.Table(), s.store)).Methods("GET")
	s.router.HandleFunc("/inbox", RequestLogger{Handler: s.inbox.PostHTTP}.ServeHTTP).Methods("POST")

	s.addPageHandler(page.NewStaticPage(page.WellKnownHostMeta), s.meta)
	s.addPageHandler(page.NewStaticPage(page.WellKnownNodeInfo), s.meta)
	s.addPageHandler(page.NewStaticPage(page.NodeInfo), s.meta)

	webfinger := page.NewWebFingerPage(s.meta)
	for _, user := range s.users {
		if err := webfinger.Add(user.meta); err != nil {
			telemetry.Error(err, "adding webfinger resource for [%s]", user.name)
		}
	}
	s.addPageHandler(webfinger, s.meta)

	for _, user := range s.users {
		actorpath := fmt.Sprintf("/a/%s", user.name)
		s.addPageHandler(page.NewActorPage(actorpath), user.meta)

		inpath := fmt.Sprintf("/a/%s/inbox", user.name)
		s.router.HandleFunc(inpath, RequestLogger{Handler: user.inbox.PostHTTP}.ServeHTTP).Methods("POST")

		outpath := fmt.Sprintf("/a/%s/outbox", user.name)
		s.router.HandleFunc(outpath, RequestLogger{Handler: user.outbox.PostHTTP}.ServeHTTP).Methods("POST")
	}
}

func (s *ActivityService) addPageHandler(pg page.StaticPageHandler, meta any) {
	if err := pg.Init(meta); err != nil {
		telemetry.Error(err, "rendering page [%s]", pg.Path())
	}
	router := s.router.Handle(pg.Path(), pg).Methods("GET")
	if !s.Config.Server.AcceptAll && pg.Accept() != "" && pg.Accept() != "*/*" {
		router.HeadersRegexp("Accept", pg.Accept())
	}
}

// Close anything related to the service before exiting
func (s *ActivityService) Close() {
	s.store.Close()
	telemetry.LogCounters()
}

// Start spawns the listener and the feed watchers, both end when Stop is called
func (s *ActivityService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, user := range s.users {
		if user.outbox.rssURL != "" {
			go user.outbox.WatchRSS(ctx)
		}
	}
	go func() {
		if err := s.listenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error(err, "listener stopped")
		}
	}()
}

// Stop shuts the listener down gracefully and releases storage
func (s *ActivityService) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.Server.Shutdown(ctx); err != nil {
		telemetry.Error(err, "shutting down listener")
	}
	s.Close()
}

func (s *ActivityService) listenAndServe() error {
	if s.Config.Server.useTLS() {
		telemetry.Log("tls listener starting on port %d", s.Config.ListenPort())
		return s.Server.ListenAndServeTLS(s.Config.Server.Certificate, s.Config.Server.PrivateKey)
	}
	telemetry.Log("http listener starting on port %d", s.Config.ListenPort())
	return s.Server.ListenAndServe()
}

// NewService creates an http service to listen for ActivityPub requests.
// The store must already be open, the service closes it on Stop.
func NewService(cfg Config, store storage.Gateway) (*ActivityService, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing url [%s]: %w", cfg.URL, err)
	}

	svc := &ActivityService{
		Config: cfg,
		router: mux.NewRouter(),
		store:  store,
		users:  make([]ActivityUser, 0, len(cfg.Users)),
	}

	// metadata available to page templates
	svc.meta = page.NewMetaData(u)
	if cfg.Server.HostName != "" {
		svc.meta.HostName = cfg.Server.HostName
	}
	svc.meta.Port = cfg.ListenPort()

	table := cfg.Table()
	inboxID, _ := url.JoinPath(cfg.URL, "inbox")
	svc.inbox = NewInbox(inboxID, table, store)

	// configure inboxes and outboxes
	for _, usercfg := range cfg.Users {
		serverUser := ActivityUser{
			name: usercfg.Name,
			meta: svc.meta.NewUserMetaData(usercfg.Name),
		}
		serverUser.meta.UserDisplayName = usercfg.DisplayName
		if usercfg.Type != "" {
			serverUser.meta.UserType = usercfg.Type
		}

		serverUser.inbox = NewInbox(serverUser.meta.InboxURL(), table, store)
		serverUser.outbox = NewOutbox(serverUser.meta.OutboxURL(), serverUser.meta.UserID, cfg.Outbox.Targets, table, store)
		serverUser.outbox.username = usercfg.Name
		serverUser.outbox.rssURL = usercfg.SourceURL

		svc.users = append(svc.users, serverUser)
	}

	// configure web handlers
	svc.addHandlers()

	svc.Server = http.Server{
		Handler:      svc.router,
		Addr:         fmt.Sprintf(":%d", cfg.ListenPort()),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
	return svc, nil
}

type RequestLogger struct {
	Handler http.HandlerFunc
}

func (rl RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	headers := make([]string, 0)
	for k, v := range r.Header {
		s := fmt.Sprintf("%s: %s", k, strings.Join(v, ", "))
		headers = append(headers, s)
	}
	telemetry.Trace(strings.Join(headers, " | "))

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		telemetry.Error(err, "error reading body")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(buf) > 0 {
		telemetry.Trace(string(buf))
	}
	r.Body = io.NopCloser(bytes.NewBuffer(buf))
	rl.Handler(w, r)
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	telemetry.Request(r, "homeHandler")
	telemetry.Increment("home_requests", 1)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<html><title>activitynode</title>
<body>
<p>This is <a href="https://github.com/tkrehbiel/activitynode/">activitynode</a>,
an experimental ActivityPub inbox that validates and stores federated activities.
There's nothing to see here.</p>
</body>
</html>`)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	telemetry.Increment("health_requests", 1)
	writeJSON(w, http.StatusOK, "application/json", map[string]string{"status": "ok"})
}
