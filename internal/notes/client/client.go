// Package client speaks the note protocol from the client side.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	"github.com/AlibekovAA/no-tion/internal/note/domain"
	"github.com/AlibekovAA/no-tion/internal/notes/protocol"
)

// Client issues one command at a time over a single connection. Server
// errors come back as commonerrors domain errors.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn), nil
}

func New(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Connect(ctx context.Context, name string) error {
	return c.command(ctx, protocol.CmdConnect, name)
}

// Disconnect asks the server to end the session and closes the connection.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.withDeadline(ctx, func() error {
		return c.send(protocol.Format(protocol.CmdDisconnect))
	})
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) CreateNote(ctx context.Context, title string) error {
	return c.command(ctx, protocol.CmdCreateNote, title)
}

func (c *Client) DeleteNote(ctx context.Context, title string) error {
	return c.command(ctx, protocol.CmdDeleteNote, title)
}

func (c *Client) UpdateContent(ctx context.Context, index int, content string) error {
	return c.command(ctx, protocol.CmdUpdateContent, strconv.Itoa(index), content)
}

func (c *Client) UpdateTitle(ctx context.Context, index int, title string) error {
	return c.command(ctx, protocol.CmdUpdateTitle, strconv.Itoa(index), title)
}

func (c *Client) GetNote(ctx context.Context, index int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var content string
	err := c.withDeadline(ctx, func() error {
		if err := c.send(protocol.Format(protocol.CmdGetNote, strconv.Itoa(index))); err != nil {
			return err
		}
		resp, err := c.read()
		if err != nil {
			return err
		}
		switch resp.Kind {
		case protocol.KindNote:
			content = resp.Content
			return nil
		case protocol.KindError:
			return commonerrors.FromStatus(resp.Status)
		default:
			return unexpected(resp)
		}
	})
	return content, err
}

func (c *Client) ListNotes(ctx context.Context) ([]domain.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []domain.Entry
	err := c.withDeadline(ctx, func() error {
		if err := c.send(protocol.Format(protocol.CmdListNotes)); err != nil {
			return err
		}
		for {
			resp, err := c.read()
			if err != nil {
				return err
			}
			switch resp.Kind {
			case protocol.KindBlank:
				return nil
			case protocol.KindEntry:
				entries = append(entries, resp.Entry)
			case protocol.KindError:
				return commonerrors.FromStatus(resp.Status)
			default:
				return unexpected(resp)
			}
		}
	})
	return entries, err
}

// Send writes a raw command line without waiting for an answer. Pair it with
// ReadResponse when the number of response lines is not known up front.
func (c *Client) Send(ctx context.Context, line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guard(ctx, c.conn.SetWriteDeadline, func() error {
		return c.send(line)
	})
}

// ReadResponse blocks for the next server line. It does not take the command
// lock so a reader goroutine can run alongside Send.
func (c *Client) ReadResponse(ctx context.Context) (protocol.Response, error) {
	var resp protocol.Response
	err := c.withReadDeadline(ctx, func() error {
		var err error
		resp, err = c.read()
		return err
	})
	return resp, err
}

func (c *Client) command(ctx context.Context, cmd protocol.Command, args ...string) error {
	line, err := format(cmd, args...)
	if err != nil {
		return err
	}
	return c.expectOK(ctx, line)
}

func (c *Client) expectOK(ctx context.Context, line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.withDeadline(ctx, func() error {
		if err := c.send(line); err != nil {
			return err
		}
		resp, err := c.read()
		if err != nil {
			return err
		}
		switch resp.Kind {
		case protocol.KindOK:
			return nil
		case protocol.KindError:
			return commonerrors.FromStatus(resp.Status)
		default:
			return unexpected(resp)
		}
	})
}

func (c *Client) send(line string) error {
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return fmt.Errorf("send command: %w", err)
	}
	return nil
}

func (c *Client) read() (protocol.Response, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return protocol.Response{}, fmt.Errorf("read response: %w", err)
	}
	return protocol.ParseResponse(line), nil
}

func (c *Client) withDeadline(ctx context.Context, fn func() error) error {
	return c.guard(ctx, c.conn.SetDeadline, fn)
}

func (c *Client) withReadDeadline(ctx context.Context, fn func() error) error {
	return c.guard(ctx, c.conn.SetReadDeadline, fn)
}

// guard maps ctx onto connection deadlines for the duration of fn, so a
// cancelled context unblocks pending I/O.
func (c *Client) guard(ctx context.Context, set func(time.Time) error, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, _ := ctx.Deadline()
	if err := set(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = set(time.Now())
	})
	defer func() {
		stop()
		_ = set(time.Time{})
	}()

	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// format rejects arguments the tokenizer would read back differently.
func format(cmd protocol.Command, args ...string) (string, error) {
	for _, a := range args {
		if strings.ContainsRune(a, '"') {
			return "", commonerrors.ErrInvalidRequest.WithCause(
				fmt.Errorf("%s argument %q contains a double quote", cmd, a))
		}
	}
	return protocol.Format(cmd, args...), nil
}

func unexpected(resp protocol.Response) error {
	return fmt.Errorf("%w: %q", commonerrors.ErrUnexpectedResponse, resp.Raw)
}
