// Package tcp accepts note protocol connections and serves each one on a
// bounded pool of workers.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AlibekovAA/no-tion/internal/common/constants"
	"github.com/AlibekovAA/no-tion/internal/common/ids"
	"github.com/AlibekovAA/no-tion/internal/common/logger"
	"github.com/AlibekovAA/no-tion/internal/notes/metrics"
	"github.com/AlibekovAA/no-tion/internal/notes/session"
)

var ErrServerClosed = errors.New("tcp: server closed")

type Config struct {
	Addr       string
	MaxWorkers int
	QueueSize  int
	Session    session.Config
}

// Server owns the listener and the worker pool. Accepted connections wait in
// a bounded queue until a worker is free; when the queue is full the accept
// loop blocks and further clients wait in the kernel backlog.
type Server struct {
	cfg  Config
	deps session.Deps
	ids  ids.Generator
	log  *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	closing  bool

	queue   chan net.Conn
	active  atomic.Int64
	workers sync.WaitGroup
	done    chan struct{}
}

func NewServer(cfg Config, deps session.Deps, gen ids.Generator, log *logger.Logger) *Server {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = constants.DefaultMaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = constants.DefaultAcceptQueue
	}
	if gen == nil {
		gen = ids.NewUUIDGenerator()
	}
	if deps.Log == nil {
		deps.Log = log
	}

	return &Server{
		cfg:   cfg,
		deps:  deps,
		ids:   gen,
		log:   log,
		queue: make(chan net.Conn, cfg.QueueSize),
		done:  make(chan struct{}),
	}
}

func (s *Server) Name() string {
	return "notes"
}

// Listen binds the configured address. Serve calls it when needed; calling it
// first lets the caller learn the bound address of ":0" configurations.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr reports the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

func (s *Server) ActiveSessions() int {
	return int(s.active.Load())
}

// Serve accepts connections until ctx is cancelled or Shutdown is called. It
// returns after every worker has finished.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.closing || s.cancel != nil {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.cancel = cancel
	ln := s.listener
	s.mu.Unlock()

	defer close(s.done)

	go func() {
		<-sessCtx.Done()
		ln.Close()
	}()

	s.log.Infof("%s service listening on %s (workers=%d, queue=%d)",
		s.Name(), ln.Addr(), s.cfg.MaxWorkers, s.cfg.QueueSize)

	for i := 0; i < s.cfg.MaxWorkers; i++ {
		s.workers.Add(1)
		go s.worker(sessCtx)
	}

	err := s.acceptLoop(sessCtx, ln)

	close(s.queue)
	cancel()
	s.workers.Wait()
	metrics.SetQueuedConnections(0)

	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var backoff time.Duration

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || s.isClosing() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			// Anything else, EMFILE included, leaves the listener usable.
			backoff = nextBackoff(backoff)
			s.log.Warnf("accept error: %v; retrying in %v", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0

		metrics.IncrementAcceptedConnections()

		select {
		case s.queue <- conn:
			metrics.SetQueuedConnections(len(s.queue))
		case <-ctx.Done():
			conn.Close()
			return nil
		}
	}
}

func (s *Server) worker(ctx context.Context) {
	defer s.workers.Done()

	for conn := range s.queue {
		metrics.SetQueuedConnections(len(s.queue))
		if ctx.Err() != nil {
			conn.Close()
			continue
		}
		s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := s.ids.NewID()

	s.active.Add(1)
	defer s.active.Add(-1)

	defer func() {
		if rec := recover(); rec != nil {
			conn.Close()
			s.log.WithFields(context.WithValue(ctx, constants.TraceIDKey, id), logger.Fields{
				"remote_addr": conn.RemoteAddr().String(),
				"action":      "session_panic",
			}).Errorf("session panic recovered: %v", rec)
		}
	}()

	sess := session.New(id, conn, s.deps, s.cfg.Session)
	_ = sess.Run(ctx)
}

// Shutdown stops accepting, closes queued connections and ends live
// sessions, then waits for the workers until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	ln := s.listener
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		if ln != nil {
			return ln.Close()
		}
		return nil
	}

	cancel()

	select {
	case <-s.done:
		s.log.Infof("%s service stopped", s.Name())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s service shutdown: %w", s.Name(), ctx.Err())
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
