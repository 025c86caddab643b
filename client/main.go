package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "gomind-client",
		Short: "Play against the gomind server from a terminal",
		Long: "Each line read from stdin is sent as one move: \"x,y\" or \"pass\".\n" +
			"Boards received from the server are printed as they arrive.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
			return run(u.String(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "server host:port")
	return cmd
}

func run(target string, in io.Reader, out io.Writer) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	fmt.Fprintf(out, "Connecting to %s\n", target)
	c, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		done <- readLoop(c, out)
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case err := <-done:
			return err
		case <-interrupt:
			fmt.Fprintln(out, "Interrupt received, closing connection.")
			return closeAndWait(c, done)
		case line, ok := <-lines:
			if !ok {
				return closeAndWait(c, done)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return fmt.Errorf("write error: %w", err)
			}
		}
	}
}

// readLoop prints boards until the server closes the game.
func readLoop(c *websocket.Conn, out io.Writer) error {
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				if closeErr.Text != "" {
					fmt.Fprintf(out, "Game over: %s\n", closeErr.Text)
				}
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
		fmt.Fprintf(out, "%s\n", message)
	}
}

func closeAndWait(c *websocket.Conn, done <-chan error) error {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return fmt.Errorf("write close error: %w", err)
	}
	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		return nil
	}
}
