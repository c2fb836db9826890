package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"

	"github.com/example/inkpane/internal/session"
)

const defaultSocketName = "default"

// commandTimeout bounds how long a socket command waits for the window.
const commandTimeout = 5 * time.Second

// commander runs one tokenised control command.
type commander interface {
	Command(ctx context.Context, args []string) (string, error)
}

func writeln(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

func closeWithLog(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("%s: close: %v", name, err)
	}
}

func removeWithLog(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove %s: %v", path, err)
	}
}

func resolveSocketDir(explicit string) (string, error) {
	if explicit != "" {
		return homedir.Expand(explicit)
	}
	if dir := os.Getenv("INKPANE_SOCKET_DIR"); dir != "" {
		return homedir.Expand(dir)
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "inkpane"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".inkpane", "sockets"), nil
}

func socketPath(dir, name string) string {
	filename := name
	if !strings.HasSuffix(filename, ".sock") {
		filename += ".sock"
	}
	return filepath.Join(dir, filename)
}

// controlServer accepts connections on a unix socket. Each line a client
// sends is tokenised and answered with "OK <reply>" or "ERR <message>".
type controlServer struct {
	path     string
	listener net.Listener
	target   commander
	closing  chan struct{}
	once     sync.Once
}

func listenControl(dir, name string, target commander) (*controlServer, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := socketPath(dir, name)
	if err := pingSocket(path); err == nil {
		return nil, fmt.Errorf("session %s already running", name)
	}
	removeWithLog(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &controlServer{path: path, listener: ln, target: target, closing: make(chan struct{})}, nil
}

func (s *controlServer) serve(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-s.closing:
		}
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *controlServer) close() {
	s.once.Do(func() {
		close(s.closing)
		closeWithLog("control listener", s.listener)
		removeWithLog(s.path)
	})
}

func (s *controlServer) handleConn(ctx context.Context, conn net.Conn) {
	defer closeWithLog("control connection", conn)
	if err := writeln(conn, "READY"); err != nil {
		log.Printf("control write READY: %v", err)
		return
	}
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := writeln(conn, s.execute(ctx, line)); err != nil {
			log.Printf("control write reply: %v", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("control read: %v", err)
	}
}

func (s *controlServer) execute(ctx context.Context, line string) string {
	args, err := shellwords.Parse(line)
	if err != nil {
		return "ERR " + err.Error()
	}
	if len(args) == 0 {
		return "ERR empty command"
	}
	cctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	out, err := s.target.Command(cctx, args)
	if err != nil {
		return "ERR " + strings.ReplaceAll(err.Error(), "\n", " ")
	}
	return strings.TrimSpace("OK " + strings.ReplaceAll(out, "\n", " "))
}

var errSocketClosed = errors.New("socket closed")

// sendCommands writes each command in turn and collects the replies. An ERR
// reply stops the run and becomes the returned error.
func sendCommands(path string, commands []string, stdout io.Writer) error {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return normalizeSocketError(err)
	}
	defer closeWithLog("control client", conn)
	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		return errSocketClosed
	}
	if scanner.Text() != "READY" {
		return fmt.Errorf("unexpected greeting: %s", scanner.Text())
	}
	for _, cmd := range commands {
		if err := writeln(conn, cmd); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errSocketClosed
		}
		reply := scanner.Text()
		switch {
		case reply == "OK":
		case strings.HasPrefix(reply, "OK "):
			if err := writeln(stdout, strings.TrimPrefix(reply, "OK ")); err != nil {
				return err
			}
		case strings.HasPrefix(reply, "ERR "):
			return errors.New(strings.TrimPrefix(reply, "ERR "))
		default:
			return fmt.Errorf("unexpected response: %s", reply)
		}
	}
	return nil
}

func pingSocket(path string) error {
	return sendCommands(path, []string{"ping"}, io.Discard)
}

func normalizeSocketError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return errors.New("no running inkpane session (missing socket file)")
	}
	if errors.Is(err, os.ErrPermission) {
		return errors.New("permission denied")
	}
	return err
}

type controlCmd struct {
	*root
	fs   *flag.FlagSet
	name string
	dir  string
}

func parseControlCmd(args []string, r *root) (*controlCmd, error) {
	fs := flag.NewFlagSet("control", flag.ExitOnError)
	c := &controlCmd{root: r, fs: fs}
	fs.StringVar(&c.name, "name", defaultSocketName, "control socket name")
	fs.StringVar(&c.dir, "dir", "", "directory that stores control sockets")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *controlCmd) Program() string { return c.root.program + " control" }

func (c *controlCmd) FlagSet() *flag.FlagSet { return c.fs }

// Commands lists the control commands for the help template.
func (c *controlCmd) Commands() string {
	return strings.Join(session.Commands(), ", ")
}

func (c *controlCmd) Run() error {
	dir, err := resolveSocketDir(c.dir)
	if err != nil {
		return err
	}
	return sendCommands(socketPath(dir, c.name), []string{quoteArgs(c.fs.Args())}, os.Stdout)
}

// quoteArgs joins args into one line that shellwords splits back into the
// same words.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\"'\\$`;&|<>()") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
