package repository

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/bootstrap"
	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/errors"
)

// EngineAnalysis is one engine verdict for a position: the score from the
// side to move's perspective, the principal variation in UCI notation, and
// the engine's chosen best move.
type EngineAnalysis struct {
	Score    domain.Score
	PV       []string
	BestMove string
}

// EngineClient owns the UCI engine process: writes commands to its stdin,
// reads verdicts from its stdout. One request at a time; calls are
// serialized on the client mutex.
type EngineClient struct {
	cfg *bootstrap.Config
	log *zap.SugaredLogger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   *bufio.Writer
	stdout  *bufio.Scanner
	path    string
	running bool
}

func NewEngineClient(cfg *bootstrap.Config, log *zap.SugaredLogger) *EngineClient {
	return &EngineClient{cfg: cfg, log: log, path: cfg.EnginePath}
}

// Start launches the engine process and performs the uci/isready handshake.
// An already-running engine is left alone.
func (c *EngineClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.path == "" {
		return errors.ErrEngineUnavailable
	}

	cmd := exec.Command(c.path)
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("engine stdin: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("engine start %q: %w", c.path, err)
	}

	c.cmd = cmd
	c.stdin = bufio.NewWriter(stdinPipe)
	c.stdout = bufio.NewScanner(stdoutPipe)
	c.running = true

	if err := c.send("uci"); err != nil {
		c.shutdownLocked()
		return err
	}
	if err := c.waitFor("uciok"); err != nil {
		c.shutdownLocked()
		return err
	}
	if err := c.send("isready"); err != nil {
		c.shutdownLocked()
		return err
	}
	if err := c.waitFor("readyok"); err != nil {
		c.shutdownLocked()
		return err
	}

	c.log.Infow("engine started", "path", c.path)
	return nil
}

// Stop quits the engine process. Safe to call when not running.
func (c *EngineClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownLocked()
}

// Configure replaces the engine executable with an explicit stop-then-start
// sequence.
func (c *EngineClient) Configure(path string) error {
	c.mu.Lock()
	c.shutdownLocked()
	c.path = path
	c.mu.Unlock()
	return c.Start()
}

// Running reports whether an engine process is live.
func (c *EngineClient) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *EngineClient) shutdownLocked() {
	if !c.running {
		return
	}
	_ = c.sendLocked("quit")
	done := make(chan struct{})
	cmd := c.cmd
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		_ = cmd.Process.Kill()
	}
	c.running = false
	c.cmd = nil
	c.stdin = nil
	c.stdout = nil
}

func (c *EngineClient) send(cmd string) error {
	return c.sendLocked(cmd)
}

func (c *EngineClient) sendLocked(cmd string) error {
	if c.stdin == nil {
		return errors.ErrEngineUnavailable
	}
	if _, err := c.stdin.WriteString(cmd + "\n"); err != nil {
		return fmt.Errorf("%w: write %q: %v", errors.ErrEngineCall, cmd, err)
	}
	if err := c.stdin.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", errors.ErrEngineCall, err)
	}
	return nil
}

func (c *EngineClient) waitFor(token string) error {
	for c.stdout.Scan() {
		if strings.TrimSpace(c.stdout.Text()) == token {
			return nil
		}
	}
	return fmt.Errorf("%w: engine closed stream waiting for %q", errors.ErrEngineCall, token)
}

// Evaluate analyzes one FEN at the given depth and returns the engine's
// verdict. The context only guards entry; a search already handed to the
// engine runs to completion.
func (c *EngineClient) Evaluate(ctx context.Context, fen string, depth int) (EngineAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return EngineAnalysis{}, fmt.Errorf("%w: %v", errors.ErrEngineCall, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return EngineAnalysis{}, errors.ErrEngineUnavailable
	}

	if err := c.sendLocked("position fen " + fen); err != nil {
		return EngineAnalysis{}, err
	}
	goCmd := fmt.Sprintf("go depth %d", depth)
	if c.cfg.EngineMoveTimeMs > 0 {
		goCmd = fmt.Sprintf("go depth %d movetime %d", depth, c.cfg.EngineMoveTimeMs)
	}
	if err := c.sendLocked(goCmd); err != nil {
		return EngineAnalysis{}, err
	}

	var analysis EngineAnalysis
	for c.stdout.Scan() {
		line := strings.TrimSpace(c.stdout.Text())
		switch {
		case strings.HasPrefix(line, "info "):
			if score, pv, ok := parseInfoLine(line); ok {
				analysis.Score = score
				if pv != nil {
					analysis.PV = pv
				}
			}
		case strings.HasPrefix(line, "bestmove"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				analysis.BestMove = fields[1]
			}
			return analysis, nil
		}
	}
	c.log.Errorw("engine stream closed mid-search", "fen", fen)
	c.running = false
	return EngineAnalysis{}, errors.ErrEngineUnavailable
}

// parseInfoLine extracts the score and principal variation from a UCI info
// line. Lines without a score field are ignored.
func parseInfoLine(line string) (domain.Score, []string, bool) {
	fields := strings.Fields(line)
	var (
		score    domain.Score
		pv       []string
		hasScore bool
	)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "score":
			if i+2 >= len(fields) {
				return domain.Score{}, nil, false
			}
			n, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return domain.Score{}, nil, false
			}
			switch fields[i+1] {
			case "cp":
				score = domain.CentipawnScore(n)
			case "mate":
				score = domain.MateScore(n)
			default:
				return domain.Score{}, nil, false
			}
			hasScore = true
			i += 2
		case "pv":
			pv = fields[i+1:]
			i = len(fields)
		}
	}
	return score, pv, hasScore
}
