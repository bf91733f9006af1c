package sidekick

import (
	"context"
	"fmt"
	"strings"

	"github.com/petasbytes/sidekick/internal/provider"
	"github.com/petasbytes/sidekick/memory"
)

func (s *Sidekick) workerPrompt(criterion, feedback string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that completes tasks for the user. ")
	b.WriteString("Keep working until you either have a question or clarification for the user, or the success criteria is met.\n")
	fmt.Fprintf(&b, "The current date and time is %s.\n\n", s.opts.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Success criteria:\n%s\n\n", criterion)
	b.WriteString("Reply either with a question for the user, clearly stated, or with your final answer. ")
	b.WriteString("If you ask a question, do not also give an answer.")
	if feedback != "" {
		fmt.Fprintf(&b, "\n\nYour previous answer was rejected because the success criteria was not met. Feedback:\n%s\n", feedback)
		b.WriteString("Use this feedback to improve your answer.")
	}
	return b.String()
}

// work asks the worker for an answer. On a retry the rejected answer is
// replayed so the model can revise it.
func (s *Sidekick) work(ctx context.Context, llm provider.Completer, window []memory.Turn, message, criterion, previous, feedback string) (string, error) {
	msgs := make([]memory.Turn, 0, len(window)+3)
	msgs = append(msgs, window...)
	msgs = append(msgs, memory.Turn{Role: memory.RoleUser, Content: message})
	if previous != "" && feedback != "" {
		msgs = append(msgs,
			memory.Turn{Role: memory.RoleAssistant, Content: previous},
			memory.Turn{Role: memory.RoleUser, Content: "Please revise your answer using the feedback."},
		)
	}

	reply, err := llm.Complete(ctx, provider.Request{
		System:    s.workerPrompt(criterion, feedback),
		Messages:  msgs,
		MaxTokens: s.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}
