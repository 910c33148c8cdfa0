package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sicsim/sicsim/debugger"
	"github.com/sicsim/sicsim/vm"
)

// Server exposes a single simulator instance over HTTP/WebSocket so an
// external front end can load a program, drive it command by command,
// and receive state snapshots without linking against the core
// packages directly.
type Server struct {
	Debugger    *debugger.Debugger
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	port        int
}

// NewServer creates an API server around a fresh VM.
func NewServer(port int) *Server {
	s := &Server{
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		port:        port,
	}

	machine := vm.NewWithIO(strings.NewReader(""), &outputSink{server: s})
	s.Debugger = debugger.New(machine)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server, blocking until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("api server listening on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and disconnects every client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleCommand executes a single verb and broadcasts whatever event
// results from it.
func (s *Server) handleCommand(cmd Command) {
	switch cmd.Verb {
	case "load":
		if err := s.Debugger.VM.Load(cmd.Source); err != nil {
			s.broadcastError(err)
			return
		}
		s.broadcastSnapshot()

	case "step":
		if _, err := s.Debugger.Step(); err != nil {
			s.broadcastError(err)
			return
		}
		s.afterRunOrStep()

	case "run":
		if err := s.Debugger.Run(nil); err != nil {
			s.broadcastError(err)
			return
		}
		s.afterRunOrStep()

	case "reset":
		s.Debugger.Reset()
		s.broadcastSnapshot()

	case "break":
		s.Debugger.SetBreakpoint(cmd.Address)
		s.broadcastSnapshot()

	case "clear":
		if err := s.Debugger.ClearBreakpointAt(cmd.Address); err != nil {
			s.broadcastError(err)
			return
		}
		s.broadcastSnapshot()

	default:
		s.broadcastError(fmt.Errorf("unknown command %q", cmd.Verb))
	}
}

func (s *Server) afterRunOrStep() {
	s.broadcastSnapshot()
	if s.Debugger.VM.State == vm.StateBreakpointHit {
		s.broadcaster.Broadcast(Event{Type: EventBreakpoint, Data: s.Debugger.VM.CPU.PC})
	}
}

func (s *Server) broadcastSnapshot() {
	s.broadcaster.Broadcast(Event{Type: EventSnapshot, Data: SnapshotOf(s.Debugger.VM)})
}

func (s *Server) broadcastError(err error) {
	s.broadcaster.Broadcast(Event{Type: EventError, Data: err.Error()})
}

// outputSink forwards WD-instruction output to subscribers instead of
// a process stream, since an API-driven session has no attached
// terminal.
type outputSink struct {
	server *Server
}

func (o *outputSink) Write(p []byte) (int, error) {
	o.server.broadcaster.Broadcast(Event{Type: EventOutput, Data: string(p)})
	return len(p), nil
}
