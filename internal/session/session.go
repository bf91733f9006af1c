// Package session runs the interactive loop between a user and an agent.
//
// A Session owns its agent instance and its history; nothing is global, so
// several sessions can run side by side.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/sidekick/internal/agent"
	"github.com/petasbytes/sidekick/internal/telemetry"
	"github.com/petasbytes/sidekick/memory"
)

type Options struct {
	In  io.Reader
	Out io.Writer

	Logger   *zap.Logger
	Recorder *telemetry.Recorder

	// AskCriterion prompts for a success criterion before each request.
	AskCriterion bool
	// Interactive enables terminal-only behaviour such as clearing the screen.
	Interactive bool
	// History seeds the conversation; nil starts empty.
	History *memory.History
	// TranscriptPath, when set, receives the history on Close.
	TranscriptPath string
	// MaxLineBytes caps one input line; 0 uses DefaultMaxLineBytes.
	MaxLineBytes int
}

type Session struct {
	factory agent.Factory
	agent   agent.Agent
	history *memory.History

	in      *lineReader
	p       *printer
	opts    Options
	logger  *zap.Logger
	rec     *telemetry.Recorder
	closing sync.Once
}

func New(factory agent.Factory, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.History == nil {
		opts.History = memory.NewHistory(nil)
	}
	if opts.In == nil {
		opts.In = strings.NewReader("")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Session{
		factory: factory,
		history: opts.History,
		in:      newLineReader(opts.In, opts.MaxLineBytes),
		p:       newPrinter(opts.Out),
		opts:    opts,
		logger:  opts.Logger,
		rec:     opts.Recorder,
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []memory.Turn { return s.history.Turns() }

// Start creates and initializes the agent. Its error is fatal to the session.
func (s *Session) Start(ctx context.Context) error {
	s.p.Info("Initializing Sidekick...")
	s.agent = s.factory()
	if err := s.agent.Initialize(ctx); err != nil {
		s.logger.Error("agent setup failed", zap.Error(err))
		return fmt.Errorf("initialize agent: %w", err)
	}
	s.logger.Info("agent ready")
	s.p.Success("Sidekick is ready!")
	return nil
}

// Reset discards the agent and the history, then starts a fresh agent.
func (s *Session) Reset(ctx context.Context) error {
	s.p.Info("Resetting Sidekick...")
	s.cleanupAgent()
	s.history.Reset()
	s.logger.Info("session reset")
	return s.Start(ctx)
}

// Close cleans up the agent once and writes the transcript when configured.
// Failures are reported, never returned.
func (s *Session) Close() {
	s.closing.Do(func() {
		s.in.stop()
		s.cleanupAgent()
		if s.opts.TranscriptPath == "" {
			return
		}
		if err := memory.SaveTranscript(s.opts.TranscriptPath, s.history.Turns()); err != nil {
			s.logger.Warn("save transcript", zap.Error(err))
			s.p.Error(fmt.Sprintf("Could not save transcript: %v", err))
		}
	})
}

func (s *Session) cleanupAgent() {
	if s.agent == nil {
		return
	}
	s.p.Info("Cleaning up resources...")
	a := s.agent
	s.agent = nil
	if err := safeCleanup(a); err != nil {
		s.logger.Warn("agent cleanup failed", zap.Error(err))
		s.p.Error(fmt.Sprintf("Cleanup raised an error: %v", err))
	}
}

func safeCleanup(a agent.Agent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during cleanup: %v", r)
		}
	}()
	return a.Cleanup()
}

// Process submits one message and records the exchange on success.
func (s *Session) Process(ctx context.Context, message, criterion string) (answer string, err error) {
	if s.agent == nil {
		return "", agent.ErrNotInitialized
	}
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	history := s.history.Turns()
	s.rec.TurnSubmitted(ctx, message, criterion, history)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			answer, err = "", fmt.Errorf("internal error: %v", r)
		}
		s.rec.TurnAnswered(ctx, answer, time.Since(start), err)
	}()

	res, err := s.agent.Submit(ctx, message, criterion, history)
	if err != nil {
		s.logger.Warn("turn failed", zap.String("turn_id", turnID), zap.Error(err))
		return "", err
	}
	answer = agent.ExtractAnswer(res)
	s.history.Append(message, answer)
	s.logger.Info("turn answered",
		zap.String("turn_id", turnID),
		zap.Stringer("result_kind", res.Kind),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer, nil
}

// Run reads requests until quit, end of input, or ctx cancellation.
// Only a failed reset or an input error is returned.
func (s *Session) Run(ctx context.Context) error {
	s.p.Success("Welcome to the Sidekick terminal!")
	s.p.Info("Type 'help' for usage, 'quit' or 'exit' to leave.")

	for {
		s.p.Separator()
		s.p.Prompt("Your request (or a command): ")
		line, err := s.in.ReadLine(ctx)
		if errors.Is(err, ErrLineTooLong) {
			s.tooLong()
			continue
		}
		if err != nil {
			return s.endOfInput(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if cmd, ok := lookupCommand(line); ok {
			quit, err := cmd(ctx, s)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		criterion := ""
		if s.opts.AskCriterion {
			s.p.Prompt("Success criterion (optional, press Enter to skip): ")
			c, err := s.in.ReadLine(ctx)
			if errors.Is(err, ErrLineTooLong) {
				s.tooLong()
				continue
			}
			if err != nil {
				return s.endOfInput(err)
			}
			criterion = strings.TrimSpace(c)
		}

		s.p.Info("Processing: " + line)
		if criterion != "" {
			s.p.Info("Success criterion: " + criterion)
		}
		answer, err := s.Process(ctx, line, criterion)
		if err != nil {
			if ctx.Err() != nil {
				s.p.Println()
				s.p.Info("Interrupted, exiting...")
				return nil
			}
			s.p.Error(fmt.Sprintf("Error while processing the message: %v", err))
			continue
		}
		s.p.Answer(answer)
	}
}

func (s *Session) tooLong() {
	s.logger.Warn("input line dropped", zap.Error(ErrLineTooLong))
	s.p.Error(fmt.Sprintf("Input ignored: line longer than %d bytes.", s.in.max))
}

func (s *Session) endOfInput(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		s.p.Println()
		s.p.Info("End of input, exiting...")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.p.Println()
		s.p.Info("Interrupted, exiting...")
		return nil
	default:
		return fmt.Errorf("read input: %w", err)
	}
}
