// Package expect drives line-oriented switch consoles. A Session sends
// commands over a byte stream and waits, with a bounded timeout, for the
// prompt of the state the command should lead to.
package expect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
)

// DefaultTimeout bounds every state transition
const DefaultTimeout = 30 * time.Second

// State is a named console state recognised by its prompt
type State struct {
	Name   string
	Prompt *regexp.Regexp
}

// NewState compiles a state's prompt pattern
func NewState(name, prompt string) State {
	return State{Name: name, Prompt: regexp.MustCompile(prompt)}
}

// Common console states. Prompts are matched at the end of the received output.
var (
	Login     = NewState("login", `(?i)(user ?name|login):\s*$`)
	Password  = NewState("password", `(?i)password:\s*$`)
	Main      = NewState("main", `[\w.-]+#\s*$`)
	Config    = NewState("config", `\(config\)#\s*$`)
	Interface = NewState("interface", `\(config-if[^)]*\)#\s*$`)
	VLAN      = NewState("vlan", `\(config-vlan[^)]*\)#\s*$`)
)

// Session is an expect session over a byte stream
type Session struct {
	conn    io.ReadWriteCloser
	timeout time.Duration
	newline string

	chunks  chan []byte
	done    chan struct{}
	readErr error
	buf     bytes.Buffer
	current string
}

// Option configures a Session
type Option func(*Session)

// WithTimeout sets the per-transition timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNewline sets the line terminator appended to every command
func WithNewline(nl string) Option {
	return func(s *Session) {
		s.newline = nl
	}
}

// NewSession starts reading from conn in the background
func NewSession(conn io.ReadWriteCloser, opts ...Option) *Session {
	s := &Session{
		conn:    conn,
		timeout: DefaultTimeout,
		newline: "\n",
		chunks:  make(chan []byte, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.readLoop()
	return s
}

func (s *Session) readLoop() {
	defer close(s.chunks)
	buf := make([]byte, 4096)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-s.done:
				return
			}
		}
		if err != nil {
			s.readErr = err
			return
		}
	}
}

// State returns the name of the last state reached
func (s *Session) State() string {
	return s.current
}

// Send writes one command line
func (s *Session) Send(line string) error {
	if _, err := io.WriteString(s.conn, line+s.newline); err != nil {
		return fmt.Errorf("failed to send %q: %v: %w", line, err, domain.ErrServer)
	}
	return nil
}

// Expect waits for state's prompt and returns the output received before it.
// Output after the prompt stays buffered for the next call.
func (s *Session) Expect(ctx context.Context, state State) (string, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for {
		if loc := state.Prompt.FindIndex(s.buf.Bytes()); loc != nil {
			out := string(s.buf.Bytes()[:loc[0]])
			s.buf.Next(loc[1])
			s.current = state.Name
			log.G(ctx).WithField("state", state.Name).Debug("console transition")
			return out, nil
		}

		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				return "", fmt.Errorf("connection closed waiting for %s prompt: %v: %w", state.Name, s.readErr, domain.ErrServer)
			}
			s.buf.Write(chunk)
		case <-timer.C:
			return "", fmt.Errorf("timed out after %s waiting for %s prompt: %w", s.timeout, state.Name, domain.ErrServer)
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for %s prompt: %w: %w", state.Name, ctx.Err(), domain.ErrServer)
		}
	}
}

// Run sends a command and waits for the state it leads to
func (s *Session) Run(ctx context.Context, line string, next State) (string, error) {
	if err := s.Send(line); err != nil {
		return "", err
	}
	out, err := s.Expect(ctx, next)
	if err != nil {
		return "", fmt.Errorf("command %q: %w", line, err)
	}
	return out, nil
}

// Close closes the underlying stream and stops the reader
func (s *Session) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.conn.Close()
}
