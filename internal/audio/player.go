package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Clip is one playing recitation.
type Clip interface {
	Stop() error
	// Done is closed when playback ends on its own.
	Done() <-chan struct{}
}

// Transport starts playback of a URL.
type Transport interface {
	Start(url string) (Clip, error)
}

var ErrNoSource = errors.New("audio: empty source")

// Player keeps at most one clip active: starting a clip stops the
// current one first.
type Player struct {
	transport Transport
	log       *slog.Logger

	mu      sync.Mutex
	current Clip
	url     string
}

func NewPlayer(t Transport, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{transport: t, log: logger}
}

func (p *Player) Play(url string) error {
	if url == "" {
		p.log.Error("invalid audio source")
		return ErrNoSource
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	clip, err := p.transport.Start(url)
	if err != nil {
		p.log.Error("playback failed", "url", url, "error", err)
		return fmt.Errorf("play %s: %w", url, err)
	}
	p.current, p.url = clip, url

	go func() {
		<-clip.Done()
		p.mu.Lock()
		if p.current == clip {
			p.current, p.url = nil, ""
		}
		p.mu.Unlock()
	}()
	return nil
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	if err := p.current.Stop(); err != nil {
		p.log.Warn("stop clip", "url", p.url, "error", err)
	}
	p.current, p.url = nil, ""
}

// Playing reports the URL of the active clip.
func (p *Player) Playing() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, p.current != nil
}

// CommandTransport plays URLs with an external command line player,
// e.g. "mpv --no-video --really-quiet".
type CommandTransport struct {
	Command []string
}

func NewCommandTransport(command string) *CommandTransport {
	return &CommandTransport{Command: strings.Fields(command)}
}

func (t *CommandTransport) Start(url string) (Clip, error) {
	if len(t.Command) == 0 {
		return nil, errors.New("no audio player configured")
	}
	args := append(t.Command[1:len(t.Command):len(t.Command)], url)
	cmd := exec.Command(t.Command[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	c := &commandClip{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

type commandClip struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (c *commandClip) Stop() error {
	select {
	case <-c.done:
		return nil
	default:
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	<-c.done
	return nil
}

func (c *commandClip) Done() <-chan struct{} { return c.done }
