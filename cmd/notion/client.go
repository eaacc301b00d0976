package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/no-tion/internal/common/constants"
	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	"github.com/AlibekovAA/no-tion/internal/notes/client"
	"github.com/AlibekovAA/no-tion/internal/notes/protocol"
)

var clientCmd = &cobra.Command{
	Use:   "client [address]",
	Short: "Forward stdin lines to a note server and print the answers",
	Long: `Connects to a note server (default localhost:16447) and sends every
line typed on stdin as one command. Error codes are annotated with their
meaning. The session ends on EOF or after DISCONNECT.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := net.JoinHostPort("localhost", strconv.Itoa(constants.DefaultPort))
		if len(args) == 1 {
			addr = args[0]
		}

		c, err := client.Dial(cmd.Context(), addr)
		if err != nil {
			return err
		}
		defer c.Close()

		return runClient(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runClient(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readerDone := make(chan error, 1)
	go func() {
		for {
			resp, err := c.ReadResponse(ctx)
			if err != nil {
				readerDone <- err
				return
			}
			fmt.Fprintln(out, render(resp))
		}
	}()

	disconnected := false
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.Send(ctx, line); err != nil {
			return err
		}
		if req, ok := protocol.ParseRequest(line); ok && req.Command == protocol.CmdDisconnect {
			disconnected = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// The server answers in order and closes after DISCONNECT, so the reader
	// sees every pending answer before EOF.
	if !disconnected {
		if err := c.Send(ctx, protocol.Format(protocol.CmdDisconnect)); err != nil {
			return err
		}
	}
	if err := <-readerDone; err != nil && !isClosed(err) {
		return err
	}
	return nil
}

func render(resp protocol.Response) string {
	switch resp.Kind {
	case protocol.KindError:
		return fmt.Sprintf("%s (%s)", resp.Raw, commonerrors.FromStatus(resp.Status).Message())
	default:
		return resp.Raw
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled)
}

func init() {
	rootCmd.AddCommand(clientCmd)
}
