package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/no-tion/internal/common/logger"
	"github.com/AlibekovAA/no-tion/internal/notes/client"
	"github.com/AlibekovAA/no-tion/internal/notes/session"
	"github.com/AlibekovAA/no-tion/internal/notes/tcp"
	"github.com/AlibekovAA/no-tion/internal/user/registry"
)

func TestRunClient_ForwardsLines(t *testing.T) {
	srv := tcp.NewServer(tcp.Config{Addr: "127.0.0.1:0", MaxWorkers: 2},
		session.Deps{Registry: registry.New()}, nil,
		logger.NewWithWriter(io.Discard, "test", "error"))
	require.NoError(t, srv.Listen())

	go func() { _ = srv.Serve(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, srv.Addr())
	require.NoError(t, err)
	defer c.Close()

	in := strings.NewReader("CONNECT amy\n\nCREATE_NOTE a\nCREATE_NOTE a\nLIST_NOTES\n")
	var out bytes.Buffer
	require.NoError(t, runClient(ctx, c, in, &out))

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "OK", lines[0])
	assert.Equal(t, "OK", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "ERROR -2 ("), "got %q", lines[2])
	assert.Equal(t, "1 a", lines[3])
	assert.Equal(t, "", lines[4])
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "notion version dev\n", out.String())
}
