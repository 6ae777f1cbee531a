package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/log"
)

const maxEmitBody = 64 << 10

type serveOptions struct {
	addr    string
	bufSize int
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve an HTTP endpoint that emits and streams messages",
		Long: `serve accepts messages with POST /emit?level=L (the body is the message)
and streams every dispatched message to GET /logs clients as server-sent
events. GET /status reports the subscriber table and PUT /quiet?enabled=B
toggles quiet mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().IntVar(&opts.bufSize, "stream-buffer", 64, "per-client entry buffer; older entries are dropped when full")

	return cmd
}

func (a *app) serve(ctx context.Context, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub := log.NewPublisher(log.WithBufferSize(opts.bufSize))

	handler, err := newServer(a.logger, pub)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.logger.Infof("listening on %s", opts.addr)

	select {
	case err := <-errCh:
		pub.Close() //nolint:errcheck // Always nil.

		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}

		return nil

	case <-ctx.Done():
	}

	a.logger.Infof("shutting down")

	// Ends every open /logs stream.
	pub.Close() //nolint:errcheck // Always nil.

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

// server exposes a logger over HTTP. Handlers run concurrently, so
// [newServer] installs a mutex lock hook on the logger.
type server struct {
	logger *ulog.Logger
	pub    *log.Publisher
}

// newServer serializes logger with a mutex, subscribes pub to every level,
// and returns the router.
func newServer(logger *ulog.Logger, pub *log.Publisher) (http.Handler, error) {
	var mu sync.Mutex

	logger.SetLock(ulog.LockerFunc(&mu))

	err := logger.Subscribe(pub, ulog.LevelTrace)
	if err != nil {
		return nil, fmt.Errorf("subscribing stream publisher: %w", err)
	}

	s := &server{logger: logger, pub: pub}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/emit", s.handleEmit)
	r.Get("/logs", s.handleLogs)
	r.Get("/status", s.handleStatus)
	r.Put("/quiet", s.handleQuiet)

	return r, nil
}

func (s *server) handleEmit(w http.ResponseWriter, r *http.Request) {
	level, ok := queryLevel(w, r, "level", ulog.LevelInfo)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEmitBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)

		return
	}

	s.logger.Notify(level, ulog.Source{}, "%s", body)

	w.WriteHeader(http.StatusNoContent)
}

// streamEntry is the JSON form of a [log.Entry] sent to /logs clients.
type streamEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	File    string    `json:"file,omitempty"`
	Line    int       `json:"line,omitempty"`
}

func (s *server) handleLogs(w http.ResponseWriter, r *http.Request) {
	minLevel, ok := queryLevel(w, r, "min_level", ulog.LevelTrace)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)

		return
	}

	sub := s.pub.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return

		case e, open := <-sub.C():
			if !open {
				return
			}

			if e.Level < minLevel {
				continue
			}

			data, err := json.Marshal(streamEntry{
				Time:    e.Time,
				Level:   ulog.LevelName(e.Level),
				Message: e.Message,
				File:    e.Source.File,
				Line:    e.Source.Line,
			})
			if err != nil {
				continue
			}

			_, err = fmt.Fprintf(w, "data: %s\n\n", data)
			if err != nil {
				return
			}

			flusher.Flush()
		}
	}
}

type statusResponse struct {
	Subscribers int  `json:"subscribers"`
	Capacity    int  `json:"capacity"`
	Quiet       bool `json:"quiet"`
}

func (s *server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Subscribers: s.logger.Len(),
		Capacity:    s.logger.Cap(),
		Quiet:       s.logger.Quiet(),
	})
}

func (s *server) handleQuiet(w http.ResponseWriter, r *http.Request) {
	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		http.Error(w, "enabled must be a boolean", http.StatusBadRequest)

		return
	}

	s.logger.SetQuiet(enabled)

	w.WriteHeader(http.StatusNoContent)
}

// queryLevel parses a level query parameter, writing a 400 response and
// returning false when it is invalid.
func queryLevel(w http.ResponseWriter, r *http.Request, key string, fallback ulog.Level) (ulog.Level, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}

	level, err := ulog.ParseLevel(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("%s: %v", key, err), http.StatusBadRequest)

		return 0, false
	}

	return level, true
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data) //nolint:errcheck,errchkjson // Headers already sent.
}
