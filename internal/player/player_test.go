package player

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRC scripts the far end of the rc conversation: it reads one
// command line at a time from the player and answers with the canned
// reply (if any) followed by the prompt.
type fakeRC struct {
	mu       sync.Mutex
	replies  map[string]string
	received []string
}

func newFakeRC(t *testing.T, replies map[string]string) (*Player, *fakeRC) {
	t.Helper()

	toPlayer, fromFake := io.Pipe()
	fromPlayer, toFake := io.Pipe()

	f := &fakeRC{replies: replies}
	go func() {
		scanner := bufio.NewScanner(fromPlayer)
		for scanner.Scan() {
			line := scanner.Text()
			f.mu.Lock()
			f.received = append(f.received, line)
			reply := f.replies[line]
			f.mu.Unlock()
			if line == "quit" {
				_ = toFake.Close()
				return
			}
			if reply != "" {
				_, _ = io.WriteString(fromFake, reply+"\n")
			}
			_, _ = io.WriteString(fromFake, prompt)
		}
	}()
	t.Cleanup(func() {
		_ = toPlayer.Close()
		_ = fromPlayer.Close()
	})

	return newPiped(toFake, toPlayer), f
}

func (f *fakeRC) got() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.received))
	copy(out, f.received)
	return out
}

func TestPlayFileSendsClearThenAdd(t *testing.T) {
	p, f := newFakeRC(t, nil)

	if err := p.PlayFile("/v/a.mp4"); err != nil {
		t.Fatalf("PlayFile() failed: %v", err)
	}

	got := f.got()
	want := []string{"clear", "add /v/a.mp4"}
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTransportCommands(t *testing.T) {
	p, f := newFakeRC(t, nil)

	if err := p.Play(); err != nil {
		t.Errorf("Play() failed: %v", err)
	}
	if err := p.Pause(); err != nil {
		t.Errorf("Pause() failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("Stop() failed: %v", err)
	}
	if err := p.Seek(90); err != nil {
		t.Errorf("Seek() failed: %v", err)
	}

	got := strings.Join(f.got(), ",")
	if got != "play,pause,stop,seek 90" {
		t.Errorf("sent %q", got)
	}
}

func TestStatusWhilePlaying(t *testing.T) {
	p, _ := newFakeRC(t, map[string]string{
		"is_playing": "1",
		"get_time":   "42",
		"get_length": "3600",
	})
	if err := p.PlayFile("/v/a.mp4"); err != nil {
		t.Fatalf("PlayFile() failed: %v", err)
	}

	st, err := p.Status()
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if !st.Playing || st.Time != 42 || st.Length != 3600 || st.File != "/v/a.mp4" {
		t.Errorf("Status() = %+v", st)
	}
}

func TestStatusWhileStopped(t *testing.T) {
	p, f := newFakeRC(t, map[string]string{"is_playing": "0"})

	st, err := p.Status()
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if st.Playing || st.Time != 0 || st.Length != 0 {
		t.Errorf("Status() = %+v, want stopped zero state", st)
	}

	// Time and length are not queried when nothing is playing.
	for _, cmd := range f.got() {
		if cmd == "get_time" || cmd == "get_length" {
			t.Errorf("queried %q while stopped", cmd)
		}
	}
}

func TestQueryIntSkipsStatusNoise(t *testing.T) {
	// The rc interface prefixes replies with chatter like
	// "status change: ( new input: ... )"; the integer still parses.
	p, _ := newFakeRC(t, map[string]string{
		"is_playing": "status change: ( play state: 3 )\n1",
	})

	st, err := p.Status()
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if !st.Playing {
		t.Error("Status().Playing = false, want true")
	}
}

func TestQueryIntNoInteger(t *testing.T) {
	p, _ := newFakeRC(t, map[string]string{"is_playing": "nope"})

	if _, err := p.Status(); err == nil {
		t.Error("Status() succeeded on a reply with no integer")
	}
}

func TestCloseIsIdempotentAndBlocksCommands(t *testing.T) {
	p, _ := newFakeRC(t, nil)

	if err := p.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
	if err := p.Play(); err != ErrClosed {
		t.Errorf("Play() after Close = %v, want ErrClosed", err)
	}
}

func TestWedgedPlayerTimesOutAndCloses(t *testing.T) {
	// The far end accepts the command but never emits a prompt; the
	// caller must get an error within the deadline and the handle must
	// refuse further commands instead of queueing behind the mutex.
	playerIn, fromFake := io.Pipe()
	fromPlayer, playerOut := io.Pipe()
	p := newPiped(playerOut, playerIn)
	p.timeout = 50 * time.Millisecond
	t.Cleanup(func() {
		_ = fromFake.Close()
		_ = fromPlayer.Close()
	})
	go func() {
		_, _ = io.Copy(io.Discard, fromPlayer)
	}()

	start := time.Now()
	if err := p.Play(); err == nil {
		t.Fatal("Play() succeeded against a silent player")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Play() blocked %v before failing", elapsed)
	}

	if err := p.Pause(); err != ErrClosed {
		t.Errorf("Pause() after wedge = %v, want ErrClosed", err)
	}
}

func TestCommandAfterPipeBreak(t *testing.T) {
	playerIn, _ := io.Pipe()
	fakeEnd, playerOut := io.Pipe()
	p := newPiped(playerOut, playerIn)
	_ = fakeEnd.CloseWithError(io.ErrClosedPipe)

	if err := p.Play(); err == nil {
		t.Error("Play() succeeded on a broken pipe")
	}
}

func TestCommandName(t *testing.T) {
	if got := commandName("seek 90"); got != "seek" {
		t.Errorf("commandName() = %q, want seek", got)
	}
	if got := commandName("play"); got != "play" {
		t.Errorf("commandName() = %q, want play", got)
	}
}
