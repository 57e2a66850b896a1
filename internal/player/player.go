package player

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
)

// prompt is the rc interface's input marker; every reply ends with it.
const prompt = "> "

const (
	closeTimeout = 3 * time.Second
	replyTimeout = 5 * time.Second
)

// ErrClosed is returned by commands sent after Close.
var ErrClosed = errors.New("player: closed")

// Status is a snapshot of external playback state.
type Status struct {
	Playing bool   `json:"playing"`
	Time    int    `json:"time"`   // seconds into the current item
	Length  int    `json:"length"` // item length in seconds, 0 if unknown
	File    string `json:"file"`   // last path handed to the player
}

// Player is a handle on one external VLC process. All commands are
// serialized; the rc interface answers one request at a time.
type Player struct {
	mu      sync.Mutex
	w       io.Writer
	r       *bufio.Reader
	cmd     *exec.Cmd
	file    string
	closed  bool
	timeout time.Duration
}

// New launches the player process and waits for its first prompt.
// command is the binary plus any leading arguments; the rc-interface
// flags are appended here.
func New(command string, args ...string) (*Player, error) {
	args = append(args, "--intf", "rc")
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("player stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("player stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting player %s: %w", command, err)
	}

	p := &Player{
		w:       stdin,
		r:       bufio.NewReader(stdout),
		cmd:     cmd,
		timeout: replyTimeout,
	}
	// Swallow the startup banner through the first prompt.
	if _, err := p.readUntilPrompt(); err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("player handshake: %w", err)
	}

	logging.Info("Player started: %s (pid %d)", command, cmd.Process.Pid)
	metrics.PlayerUp.Set(1)
	return p, nil
}

// newPiped builds a Player over arbitrary pipes, without a process.
// Tests use it to script the far end of the rc conversation.
func newPiped(w io.Writer, r io.Reader) *Player {
	return &Player{w: w, r: bufio.NewReader(r), timeout: replyTimeout}
}

// PlayFile replaces the playlist with the given file and starts it.
// The rc "add" command begins playback on its own.
func (p *Player) PlayFile(path string) error {
	if err := p.command("clear"); err != nil {
		return err
	}
	if err := p.command("add " + path); err != nil {
		return err
	}
	p.mu.Lock()
	p.file = path
	p.mu.Unlock()
	return nil
}

// Play resumes a paused item.
func (p *Player) Play() error { return p.command("play") }

// Pause toggles pause on the current item.
func (p *Player) Pause() error { return p.command("pause") }

// Stop stops playback and clears the current item.
func (p *Player) Stop() error { return p.command("stop") }

// Seek jumps to an absolute position in seconds.
func (p *Player) Seek(seconds int) error {
	return p.command("seek " + strconv.Itoa(seconds))
}

// Status queries the player for its current playback state. Fields the
// player will not answer for (nothing loaded) come back zero.
func (p *Player) Status() (Status, error) {
	playing, err := p.queryInt("is_playing")
	if err != nil {
		return Status{}, err
	}
	st := Status{Playing: playing == 1}

	p.mu.Lock()
	st.File = p.file
	p.mu.Unlock()

	if !st.Playing {
		return st, nil
	}
	if t, err := p.queryInt("get_time"); err == nil {
		st.Time = t
	}
	if l, err := p.queryInt("get_length"); err == nil {
		st.Length = l
	}
	return st, nil
}

// Close asks the process to quit and reaps it, killing after a grace
// period. Safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	_, _ = fmt.Fprintln(p.w, "quit")
	cmd := p.cmd
	p.mu.Unlock()

	metrics.PlayerUp.Set(0)
	if cmd == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(closeTimeout):
		logging.Warn("Player did not quit; killing pid %d", cmd.Process.Pid)
		_ = cmd.Process.Kill()
		return <-done
	}
}

// command sends a fire-and-forget rc command, discarding the reply.
func (p *Player) command(line string) error {
	_, err := p.send(line)
	p.record(commandName(line), err)
	return err
}

// queryInt sends a command whose reply is a bare integer. The rc
// interface pads replies with status lines; the last integer token
// wins.
func (p *Player) queryInt(line string) (int, error) {
	reply, err := p.send(line)
	p.record(commandName(line), err)
	if err != nil {
		return 0, err
	}

	value := 0
	found := false
	for _, field := range strings.Fields(reply) {
		if n, err := strconv.Atoi(field); err == nil {
			value = n
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("player: no integer in reply to %q: %q", line, reply)
	}
	return value, nil
}

func (p *Player) send(line string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", ErrClosed
	}
	if _, err := fmt.Fprintln(p.w, line); err != nil {
		return "", fmt.Errorf("player write: %w", err)
	}
	return p.readReplyLocked()
}

func (p *Player) readUntilPrompt() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readReplyLocked()
}

// readReplyLocked reads one reply with a deadline. A player that stops
// answering would otherwise block its caller forever while holding the
// mutex; instead the process is killed and the handle closed, so later
// commands fail fast with ErrClosed.
func (p *Player) readReplyLocked() (string, error) {
	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		text, err := p.readUntilPromptLocked()
		ch <- reply{text, err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-time.After(p.timeout):
	}

	p.closed = true
	metrics.PlayerUp.Set(0)
	if p.cmd != nil {
		logging.Warn("Player stopped answering; killing pid %d", p.cmd.Process.Pid)
		_ = p.cmd.Process.Kill()
		cmd := p.cmd
		go func() { _ = cmd.Wait() }()
	}
	return "", fmt.Errorf("player: no reply within %v", p.timeout)
}

// readUntilPromptLocked accumulates reply bytes until the stream ends
// with the rc prompt, then returns the reply with the prompt stripped.
func (p *Player) readUntilPromptLocked() (string, error) {
	var b strings.Builder
	for {
		chunk, err := p.r.ReadString('>')
		b.WriteString(chunk)
		if err != nil {
			return "", fmt.Errorf("player read: %w", err)
		}
		next, err := p.r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("player read: %w", err)
		}
		b.WriteByte(next)
		if next == ' ' && strings.HasSuffix(b.String(), prompt) {
			reply := strings.TrimSuffix(b.String(), prompt)
			return strings.TrimSpace(reply), nil
		}
	}
}

func (p *Player) record(command string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		logging.Warn("Player command %s failed: %v", command, err)
	}
	metrics.PlayerCommandsTotal.WithLabelValues(command, status).Inc()
}

func commandName(line string) string {
	if i := strings.IndexByte(line, ' '); i > 0 {
		return line[:i]
	}
	return line
}
