package sidekick

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/sidekick/internal/agent"
	"github.com/petasbytes/sidekick/internal/provider"
	"github.com/petasbytes/sidekick/internal/telemetry"
	"github.com/petasbytes/sidekick/internal/windowing"
	"github.com/petasbytes/sidekick/memory"
)

// ErrMissingAPIKey is returned by Initialize when no key is configured.
var ErrMissingAPIKey = errors.New("sidekick: missing API key")

// DefaultCriterion applies when the user gives none.
const DefaultCriterion = "The answer should be clear and accurate"

const feedbackLead = agent.FeedbackPrefix + " on this answer: "

type Options struct {
	Provider      string
	Client        provider.Options
	MaxTokens     int64
	MaxIterations int
	TokenBudget   int

	// NewCompleter overrides backend construction; nil uses provider.New.
	NewCompleter func(kind string, opts provider.Options) (provider.Completer, error)
	Now          func() time.Time
}

// Sidekick implements agent.Agent.
type Sidekick struct {
	opts     Options
	logger   *zap.Logger
	recorder *telemetry.Recorder

	mu  sync.Mutex
	llm provider.Completer
}

var _ agent.Agent = (*Sidekick)(nil)

func New(opts Options, logger *zap.Logger, rec *telemetry.Recorder) *Sidekick {
	if opts.NewCompleter == nil {
		opts.NewCompleter = provider.New
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sidekick{opts: opts, logger: logger, recorder: rec}
}

func (s *Sidekick) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.llm != nil {
		return nil
	}
	if s.opts.Client.APIKey == "" {
		return ErrMissingAPIKey
	}
	llm, err := s.opts.NewCompleter(s.opts.Provider, s.opts.Client)
	if err != nil {
		return fmt.Errorf("sidekick: %w", err)
	}
	s.llm = llm
	s.logger.Info("sidekick initialized", zap.String("provider", s.opts.Provider), zap.String("model", s.opts.Client.Model))
	return nil
}

func (s *Sidekick) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.llm == nil {
		return nil
	}
	s.llm.Close()
	s.llm = nil
	s.logger.Info("sidekick cleaned up")
	return nil
}

func (s *Sidekick) completer() provider.Completer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.llm
}

// Submit runs worker/evaluator iterations for one user message.
func (s *Sidekick) Submit(ctx context.Context, message, criterion string, history []memory.Turn) (agent.Result, error) {
	llm := s.completer()
	if llm == nil {
		return agent.Result{}, agent.ErrNotInitialized
	}
	if criterion == "" {
		criterion = DefaultCriterion
	}
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	window, stats := windowing.PrepareWindow(history, s.opts.TokenBudget, windowing.HeuristicCounter{})
	fields := stats.Fields()
	fields["turn_id"] = turnID
	s.recorder.Emit("window_prepared", fields)
	if stats.SkippedGroups > 0 {
		s.logger.Debug("history trimmed", zap.String("turn_id", turnID), zap.Int("skipped_groups", stats.SkippedGroups))
	}

	var (
		answer string
		ev     Evaluation
	)
	for i := 1; i <= s.opts.MaxIterations; i++ {
		var err error
		answer, err = s.work(ctx, llm, window, message, criterion, answer, ev.Feedback)
		if err != nil {
			return agent.Result{}, fmt.Errorf("worker: %w", err)
		}
		ev, err = s.evaluate(ctx, llm, window, message, criterion, answer)
		if err != nil {
			return agent.Result{}, fmt.Errorf("evaluator: %w", err)
		}

		s.recorder.Emit("evaluation", map[string]any{
			"turn_id":              turnID,
			"iteration":            i,
			"success_criteria_met": ev.SuccessCriteriaMet,
			"user_input_needed":    ev.UserInputNeeded,
		})
		s.logger.Debug("evaluation",
			zap.String("turn_id", turnID),
			zap.Int("iteration", i),
			zap.Bool("met", ev.SuccessCriteriaMet),
			zap.Bool("user_input_needed", ev.UserInputNeeded),
		)
		if ev.SuccessCriteriaMet || ev.UserInputNeeded {
			break
		}
	}

	return agent.TurnsResult(
		memory.Turn{Role: memory.RoleUser, Content: message},
		memory.Turn{Role: memory.RoleAssistant, Content: answer},
		memory.Turn{Role: memory.RoleAssistant, Content: feedbackLead + ev.Feedback},
	), nil
}
