package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/AlibekovAA/no-tion/internal/common/clock"
	"github.com/AlibekovAA/no-tion/internal/common/constants"
	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	"github.com/AlibekovAA/no-tion/internal/common/logger"
	"github.com/AlibekovAA/no-tion/internal/note/scramble"
	"github.com/AlibekovAA/no-tion/internal/notes/metrics"
	"github.com/AlibekovAA/no-tion/internal/notes/protocol"
	userdomain "github.com/AlibekovAA/no-tion/internal/user/domain"
	"github.com/AlibekovAA/no-tion/internal/user/registry"
)

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	reasonDisconnect = "disconnect"
	reasonEOF        = "eof"
	reasonReadError  = "read_error"
	reasonWriteError = "write_error"
	reasonShutdown   = "shutdown"
	reasonPanic      = "panic"
)

type Deps struct {
	Registry  *registry.Registry
	Scrambler *scramble.Scrambler
	Log       *logger.Logger
	Clock     clock.Clock
}

type Config struct {
	MaxLineBytes int
	WriteTimeout time.Duration
}

type handlerFunc func(req protocol.Request) error

// Session runs the command loop of one client connection. It is confined to
// the goroutine calling Run.
type Session struct {
	id        string
	conn      net.Conn
	writer    *protocol.Writer
	registry  *registry.Registry
	scrambler *scramble.Scrambler
	log       *logger.Logger
	clock     clock.Clock
	cfg       Config
	ctx       context.Context

	state    State
	user     *userdomain.User
	handlers map[protocol.Command]handlerFunc
}

func New(id string, conn net.Conn, deps Deps, cfg Config) *Session {
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = constants.DefaultMaxLineBytes
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Scrambler == nil {
		deps.Scrambler = scramble.New()
	}

	s := &Session{
		id:        id,
		conn:      conn,
		writer:    protocol.NewWriter(conn),
		registry:  deps.Registry,
		scrambler: deps.Scrambler,
		log:       deps.Log,
		clock:     deps.Clock,
		cfg:       cfg,
		ctx:       context.WithValue(context.Background(), constants.TraceIDKey, id),
		state:     StateUnauthenticated,
	}

	s.handlers = map[protocol.Command]handlerFunc{
		protocol.CmdConnect:       s.handleConnect,
		protocol.CmdCreateNote:    s.handleCreateNote,
		protocol.CmdDeleteNote:    s.handleDeleteNote,
		protocol.CmdListNotes:     s.handleListNotes,
		protocol.CmdGetNote:       s.handleGetNote,
		protocol.CmdUpdateContent: s.handleUpdateContent,
		protocol.CmdUpdateTitle:   s.handleUpdateTitle,
	}

	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	return s.state
}

// User returns the user bound by CONNECT, or nil before that.
func (s *Session) User() *userdomain.User {
	return s.user
}

// Run serves commands until the peer disconnects, an I/O error occurs or ctx
// is cancelled. The connection is closed on return, including when a handler
// panics.
func (s *Session) Run(ctx context.Context) (err error) {
	start := s.clock.Now()
	metrics.IncrementActiveConnections()

	done := make(chan struct{})
	reason := reasonPanic
	defer func() {
		close(done)
		s.conn.Close()
		s.state = StateClosed

		metrics.DecrementActiveConnections()
		metrics.IncrementDisconnection(reason)
		metrics.ObserveSession(s.clock.Since(start))
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close()
		case <-done:
		}
	}()

	s.fields("session_start").Info("session started")

	reason, err = s.loop(ctx)

	entry := s.fields("session_end")
	if err != nil {
		entry.Warnf("session ended (%s): %v", reason, err)
	} else {
		entry.Infof("session ended (%s)", reason)
	}

	return err
}

func (s *Session) loop(ctx context.Context) (string, error) {
	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, min(4096, s.cfg.MaxLineBytes)), s.cfg.MaxLineBytes)

	for scanner.Scan() {
		req, ok := protocol.ParseRequest(scanner.Text())
		if !ok {
			continue
		}

		if err := s.Handle(req); err != nil {
			return reasonWriteError, err
		}
		if s.state == StateClosed {
			return reasonDisconnect, nil
		}
	}

	if ctx.Err() != nil {
		return reasonShutdown, nil
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
			return reasonEOF, nil
		}
		return reasonReadError, fmt.Errorf("read command: %w", err)
	}
	return reasonEOF, nil
}

// Handle executes one request and writes its response. Protocol failures
// are answered with "ERROR <code>"; only transport errors are returned.
func (s *Session) Handle(req protocol.Request) error {
	start := s.clock.Now()
	label := metricLabel(req.Command)

	if req.Command == protocol.CmdDisconnect {
		s.state = StateClosed
		metrics.ObserveCommand(label, nil, s.clock.Since(start))
		return nil
	}

	// Large responses reach the socket while the handler is still writing.
	if s.cfg.WriteTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	var cmdErr error
	handler, known := s.handlers[req.Command]
	switch {
	case !known:
		cmdErr = commonerrors.ErrUnknownCommand
	case s.state != StateAuthenticated && req.Command != protocol.CmdConnect:
		cmdErr = commonerrors.ErrNotAuthenticated
	default:
		cmdErr = handler(req)
	}

	if cmdErr != nil {
		if !commonerrors.IsDomainError(cmdErr) {
			return cmdErr
		}
		s.fields("command_rejected").Debugf("%s rejected: %v", label, cmdErr)
		if err := s.writer.Error(commonerrors.StatusOf(cmdErr)); err != nil {
			return err
		}
	}

	metrics.ObserveCommand(label, cmdErr, s.clock.Since(start))

	return s.flush()
}

func (s *Session) flush() error {
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (s *Session) fields(action string) *logger.Entry {
	f := logger.Fields{
		"action": action,
		"state":  s.state.String(),
	}
	if addr := s.conn.RemoteAddr(); addr != nil {
		f["remote_addr"] = addr.String()
	}
	if s.user != nil {
		f["user"] = s.user.Name
	}
	return s.log.WithFields(s.ctx, f)
}

func metricLabel(cmd protocol.Command) string {
	if cmd.IsValid() {
		return cmd.String()
	}
	return "unknown"
}
