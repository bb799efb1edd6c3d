// Package bridge serves scaler layouts over HTTP. Browsers stream their
// viewport geometry over a WebSocket and receive the debounced layout back;
// one-shot layouts are available as JSON.
package bridge

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gamescale/profiles"
	"gamescale/scaler"
)

//go:embed static/*
var embeddedStatic embed.FS

// Options configures a Server.
type Options struct {
	Config   scaler.Config
	Profiles []profiles.Profile

	// MessageRate and MessageBurst bound how many client messages a
	// session processes. Excess messages are dropped.
	MessageRate  rate.Limit
	MessageBurst int

	ErrorLog *log.Logger
	DebugLog *log.Logger

	// Clock drives session debouncing; nil uses the system clock.
	Clock scaler.Clock
}

// Server hosts the layout endpoints and WebSocket sessions.
type Server struct {
	opts     Options
	upgrader websocket.Upgrader
	started  time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// New validates opts.Config and builds a server.
func New(opts Options) (*Server, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Profiles == nil {
		opts.Profiles = profiles.Default()
	}
	if opts.MessageRate == 0 {
		opts.MessageRate = rate.Every(10 * time.Millisecond)
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 20
	}
	if opts.Clock == nil {
		opts.Clock = scaler.SystemClock{}
	}
	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		started:  time.Now(),
		sessions: make(map[string]*session),
	}, nil
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", s.handleWS)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/layout", s.handleLayout)
		r.Get("/profiles", s.handleProfiles)
		r.Get("/sessions", s.handleSessions)
	})
	r.Handle("/*", http.FileServer(http.FS(staticFS)))
	return r
}

// ListenAndServe serves on addr until ctx ends, then closes live sessions
// and shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()
	s.logf("bridge listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.closeSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Sessions returns the IDs of live WebSocket sessions, sorted.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	list := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()
	for _, sess := range list {
		sess.close()
	}
}

func (s *Server) logf(format string, v ...interface{}) {
	if s.opts.ErrorLog != nil {
		s.opts.ErrorLog.Printf(format, v...)
	}
}

func (s *Server) debugf(format string, v ...interface{}) {
	if s.opts.DebugLog != nil {
		s.opts.DebugLog.Printf(format, v...)
	}
}
