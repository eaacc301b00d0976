package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/no-tion/internal/common/clock"
	"github.com/AlibekovAA/no-tion/internal/common/logger"
	"github.com/AlibekovAA/no-tion/internal/note/scramble"
	observabilitymetrics "github.com/AlibekovAA/no-tion/internal/observability/metrics"
	"github.com/AlibekovAA/no-tion/internal/user/registry"
)

type harness struct {
	t      *testing.T
	client net.Conn
	reader *bufio.Reader
	sess   *Session
	done   chan error
}

func newHarness(t *testing.T, reg *registry.Registry) *harness {
	t.Helper()
	return newHarnessWithConfig(t, reg, Config{})
}

func newHarnessWithConfig(t *testing.T, reg *registry.Registry, cfg Config) *harness {
	t.Helper()

	server, client := net.Pipe()
	log := logger.NewWithWriter(io.Discard, "test", "debug")
	sess := New("session-test", server, Deps{
		Registry:  reg,
		Scrambler: scramble.NewWithSource(rand.NewPCG(1, 2)),
		Log:       log,
	}, cfg)

	h := &harness{
		t:      t,
		client: client,
		reader: bufio.NewReader(client),
		sess:   sess,
		done:   make(chan error, 1),
	}

	go func() {
		h.done <- sess.Run(context.Background())
	}()

	t.Cleanup(func() {
		client.Close()
		<-h.done
	})

	return h
}

func (h *harness) send(line string) {
	h.t.Helper()
	require.NoError(h.t, h.client.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := fmt.Fprintf(h.client, "%s\n", line)
	require.NoError(h.t, err)
}

func (h *harness) readLine() string {
	h.t.Helper()
	require.NoError(h.t, h.client.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := h.reader.ReadString('\n')
	require.NoError(h.t, err)
	return strings.TrimSuffix(line, "\n")
}

func (h *harness) expect(line, want string) {
	h.t.Helper()
	h.send(line)
	assert.Equal(h.t, want, h.readLine(), "response to %q", line)
}

func (h *harness) list() []string {
	h.t.Helper()
	h.send("LIST_NOTES")
	var lines []string
	for {
		line := h.readLine()
		if line == "" {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestSession_EndToEndScenario(t *testing.T) {
	h := newHarness(t, registry.New())

	h.expect("CONNECT bob", "OK")
	h.expect(`CREATE_NOTE "shopping"`, "OK")
	assert.Equal(t, []string{"1 shopping"}, h.list())
	h.expect("GET_NOTE 1", "NOTE ")
	h.expect("UPDATE_TITLE 1 groceries", "OK")
	h.expect("DELETE_NOTE shopping", "ERROR -1")
	h.expect("DELETE_NOTE groceries", "OK")
	assert.Empty(t, h.list())
}

func TestSession_RequiresConnect(t *testing.T) {
	reg := registry.New()
	h := newHarness(t, reg)

	commands := []string{
		"CREATE_NOTE x",
		"DELETE_NOTE x",
		"LIST_NOTES",
		"GET_NOTE 1",
		"UPDATE_CONTENT 1 hello",
		"UPDATE_TITLE 1 y",
		"NOPE",
	}
	for _, cmd := range commands {
		h.expect(cmd, "ERROR -3")
	}

	assert.Equal(t, 0, reg.Count(), "no user may be created before CONNECT")
}

func TestSession_ConnectValidation(t *testing.T) {
	reg := registry.New()
	h := newHarness(t, reg)

	h.expect("CONNECT", "ERROR -3")
	h.expect("CONNECT alice bob", "ERROR -3")
	h.expect("CONNECT alice", "OK")
	h.expect("CONNECT alice", "ERROR -3")
	h.expect("CONNECT carol", "ERROR -3")

	assert.Equal(t, []string{"alice"}, reg.Names())
}

func TestSession_BlankLinesAreIgnored(t *testing.T) {
	h := newHarness(t, registry.New())

	h.send("")
	h.send("   ")
	h.expect("LIST_NOTES", "ERROR -3")
}

func TestSession_DuplicateTitle(t *testing.T) {
	h := newHarness(t, registry.New())

	h.expect("CONNECT bob", "OK")
	h.expect(`CREATE_NOTE "X"`, "OK")
	h.expect(`CREATE_NOTE "X"`, "ERROR -2")
	h.expect("CREATE_NOTE", "ERROR -3")
	assert.Equal(t, []string{"1 X"}, h.list())
}

func TestSession_GetNoteOutOfRange(t *testing.T) {
	h := newHarness(t, registry.New())
	h.expect("CONNECT bob", "OK")

	for _, idx := range []string{"0", "1", "-1", "42"} {
		h.expect("GET_NOTE "+idx, "ERROR -1")
	}

	h.expect("CREATE_NOTE a", "OK")
	h.expect("GET_NOTE 1", "NOTE ")
	h.expect("GET_NOTE 2", "ERROR -1")
	h.expect("GET_NOTE one", "ERROR -3")
	h.expect("GET_NOTE", "ERROR -3")
}

func TestSession_UpdateContentScrambles(t *testing.T) {
	h := newHarness(t, registry.New())
	h.expect("CONNECT bob", "OK")
	h.expect("CREATE_NOTE words", "OK")

	h.expect(`UPDATE_CONTENT 1 "cat dog elephant"`, "OK")
	h.send("GET_NOTE 1")
	line := h.readLine()
	require.True(t, strings.HasPrefix(line, "NOTE "), "unexpected response %q", line)

	words := strings.Fields(strings.TrimPrefix(line, "NOTE "))
	require.Len(t, words, 3)
	assert.Equal(t, "cat", words[0])
	assert.Equal(t, "dog", words[1])

	elephant := words[2]
	require.Len(t, elephant, len("elephant"))
	assert.Equal(t, byte('e'), elephant[0])
	assert.Equal(t, byte('t'), elephant[len(elephant)-1])
	assert.Equal(t, sortedRunes("lephan"), sortedRunes(elephant[1:len(elephant)-1]))
}

func TestSession_UpdateContentValidation(t *testing.T) {
	h := newHarness(t, registry.New())
	h.expect("CONNECT bob", "OK")
	h.expect("CREATE_NOTE a", "OK")

	h.expect("UPDATE_CONTENT 1", "ERROR -3")
	h.expect("UPDATE_CONTENT x hello", "ERROR -3")
	h.expect("UPDATE_CONTENT 2 hello", "ERROR -1")
	h.expect("UPDATE_CONTENT 1 hi you", "OK")
	h.expect("GET_NOTE 1", "NOTE hi")
	h.expect(`UPDATE_CONTENT 1 "hi you"`, "OK")
	h.expect("GET_NOTE 1", "NOTE hi you")
}

func TestSession_LargeResponseAfterIdle(t *testing.T) {
	h := newHarnessWithConfig(t, registry.New(), Config{WriteTimeout: 200 * time.Millisecond})
	h.expect("CONNECT bob", "OK")
	h.expect("CREATE_NOTE big", "OK")

	content := strings.Repeat("x", 5000)
	h.expect("UPDATE_CONTENT 1 "+content, "OK")

	time.Sleep(500 * time.Millisecond)

	h.expect("GET_NOTE 1", "NOTE "+content)
	assert.Equal(t, []string{"1 big"}, h.list())
}

func TestSession_UpdateTitle(t *testing.T) {
	h := newHarness(t, registry.New())
	h.expect("CONNECT bob", "OK")
	h.expect("CREATE_NOTE a", "OK")
	h.expect("CREATE_NOTE b", "OK")

	h.expect("UPDATE_TITLE 1", "ERROR -3")
	h.expect(`UPDATE_TITLE 1 ""`, "ERROR -3")
	h.expect("UPDATE_TITLE one c", "ERROR -3")
	h.expect("UPDATE_TITLE 3 c", "ERROR -1")
	h.expect("UPDATE_TITLE 1 b", "ERROR -2")
	h.expect("UPDATE_TITLE 1 a", "ERROR -2")
	h.expect(`UPDATE_TITLE 2 "new b"`, "OK")
	assert.Equal(t, []string{"1 a", "2 new b"}, h.list())
}

func TestSession_DeleteShiftsIndices(t *testing.T) {
	h := newHarness(t, registry.New())
	h.expect("CONNECT bob", "OK")
	h.expect("CREATE_NOTE a", "OK")
	h.expect("CREATE_NOTE b", "OK")
	h.expect("CREATE_NOTE c", "OK")
	h.expect("DELETE_NOTE", "ERROR -3")
	h.expect("DELETE_NOTE a", "OK")

	assert.Equal(t, []string{"1 b", "2 c"}, h.list())
}

func TestSession_Disconnect(t *testing.T) {
	h := newHarness(t, registry.New())
	h.expect("CONNECT bob", "OK")
	h.send("DISCONNECT")

	select {
	case err := <-h.done:
		assert.NoError(t, err)
		h.done <- err
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after DISCONNECT")
	}
	assert.Equal(t, StateClosed, h.sess.State())

	_, err := h.reader.ReadString('\n')
	assert.Error(t, err, "no response is expected before close")
}

func TestSession_ResumeAfterReconnect(t *testing.T) {
	reg := registry.New()

	first := newHarness(t, reg)
	first.expect("CONNECT alice", "OK")
	first.expect("CREATE_NOTE diary", "OK")
	first.send("DISCONNECT")

	second := newHarness(t, reg)
	second.expect("CONNECT alice", "OK")
	assert.Equal(t, []string{"1 diary"}, second.list())
}

func TestSession_SameUserFromTwoConnections(t *testing.T) {
	reg := registry.New()
	a := newHarness(t, reg)
	b := newHarness(t, reg)

	a.expect("CONNECT alice", "OK")
	b.expect("CONNECT alice", "OK")
	a.expect("CREATE_NOTE shared", "OK")
	assert.Equal(t, []string{"1 shared"}, b.list())
	b.expect("CREATE_NOTE shared", "ERROR -2")
}

func TestSession_ContextCancelClosesConnection(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	sess := New("cancel", server, Deps{
		Registry: registry.New(),
		Log:      logger.NewWithWriter(io.Discard, "test", "info"),
	}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on cancellation")
	}
}

func TestSession_LineTooLongEndsSession(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	sess := New("long", server, Deps{
		Registry: registry.New(),
		Log:      logger.NewWithWriter(io.Discard, "test", "info"),
	}, Config{MaxLineBytes: 64})

	done := make(chan error, 1)
	go func() { done <- sess.Run(context.Background()) }()

	go func() {
		_, _ = client.Write([]byte(strings.Repeat("a", 256) + "\n"))
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on oversized line")
	}
}

func TestSession_RecordsDuration(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sess := New("timed", server, Deps{
		Registry: registry.New(),
		Log:      logger.NewWithWriter(io.Discard, "test", "info"),
		Clock:    clk,
	}, Config{})

	before := sessionDurationSum(t)

	done := make(chan error, 1)
	go func() { done <- sess.Run(context.Background()) }()

	reader := bufio.NewReader(client)
	_, err := fmt.Fprintln(client, "CONNECT tim")
	require.NoError(t, err)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "OK\n", line)

	clk.Advance(90 * time.Second)
	_, err = fmt.Fprintln(client, "DISCONNECT")
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.InDelta(t, 90, sessionDurationSum(t)-before, 0.001)
}

func TestSession_PanicReleasesConnectionMetrics(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	// No registry: CONNECT dereferences a nil *Registry.
	sess := New("panics", server, Deps{
		Log: logger.NewWithWriter(io.Discard, "test", "info"),
	}, Config{})

	activeBefore := testutil.ToFloat64(observabilitymetrics.ConnectionsActive)
	panicsBefore := testutil.ToFloat64(observabilitymetrics.Disconnections.WithLabelValues(reasonPanic))

	recovered := make(chan any, 1)
	go func() {
		defer func() { recovered <- recover() }()
		_ = sess.Run(context.Background())
	}()

	require.NoError(t, client.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := fmt.Fprintln(client, "CONNECT nobody")
	require.NoError(t, err)

	select {
	case rec := <-recovered:
		require.NotNil(t, rec)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not panic")
	}

	assert.Equal(t, activeBefore, testutil.ToFloat64(observabilitymetrics.ConnectionsActive))
	assert.Equal(t, panicsBefore+1, testutil.ToFloat64(observabilitymetrics.Disconnections.WithLabelValues(reasonPanic)))
	assert.Equal(t, StateClosed, sess.State())

	_, err = client.Read(make([]byte, 1))
	assert.Error(t, err)
}

func sessionDurationSum(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, observabilitymetrics.SessionDurationSeconds.Write(&m))
	return m.GetHistogram().GetSampleSum()
}

func sortedRunes(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}
