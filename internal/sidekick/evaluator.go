package sidekick

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/petasbytes/sidekick/internal/provider"
	"github.com/petasbytes/sidekick/memory"
)

// Evaluation is the evaluator's verdict on one worker answer.
type Evaluation struct {
	Feedback           string `json:"feedback" jsonschema_description:"Feedback on the assistant's response."`
	SuccessCriteriaMet bool   `json:"success_criteria_met" jsonschema_description:"Whether the success criteria have been met."`
	UserInputNeeded    bool   `json:"user_input_needed" jsonschema_description:"True if more input is needed from the user, or clarifications, or the assistant is stuck."`
}

var evaluationTool = provider.Tool{
	Name:        "record_evaluation",
	Description: "Record your evaluation of the assistant's last response.",
	Schema:      provider.GenerateSchema[Evaluation](),
}

const evaluatorSystem = "You are an evaluator that determines if a task has been completed successfully by an Assistant. " +
	"Assess the Assistant's last response based on the given criteria. " +
	"Respond with your feedback, and with your decision on whether the success criteria has been met, " +
	"and whether more input is needed from the user."

func evaluatorPrompt(window []memory.Turn, message, criterion, answer string) string {
	var b strings.Builder
	b.WriteString("You are evaluating a conversation between the User and Assistant.\n\n")
	b.WriteString("The entire conversation with the assistant, with the user's original request and all replies, is:\n")
	for _, t := range window {
		fmt.Fprintf(&b, "%s: %s\n", roleLabel(t.Role), t.Content)
	}
	fmt.Fprintf(&b, "User: %s\n\n", message)
	fmt.Fprintf(&b, "The success criteria for this assignment is:\n%s\n\n", criterion)
	fmt.Fprintf(&b, "And the final response from the Assistant that you are evaluating is:\n%s\n\n", answer)
	b.WriteString("Respond with your feedback, and decide if the success criteria is met by this response. ")
	b.WriteString("Also decide if more user input is required, either because the assistant has a question, needs clarification, or seems to be stuck and unable to answer without help.")
	return b.String()
}

func roleLabel(role string) string {
	if role == memory.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func (s *Sidekick) evaluate(ctx context.Context, llm provider.Completer, window []memory.Turn, message, criterion, answer string) (Evaluation, error) {
	tool := evaluationTool
	reply, err := llm.Complete(ctx, provider.Request{
		System:    evaluatorSystem,
		Messages:  []memory.Turn{{Role: memory.RoleUser, Content: evaluatorPrompt(window, message, criterion, answer)}},
		Tool:      &tool,
		MaxTokens: s.opts.MaxTokens,
	})
	if err != nil {
		return Evaluation{}, err
	}
	return parseEvaluation(reply)
}

// parseEvaluation reads the forced tool input. A model that answers in
// prose instead is taken as unmet, with its text as the feedback.
func parseEvaluation(reply provider.Reply) (Evaluation, error) {
	if reply.ToolInput == nil {
		return Evaluation{Feedback: strings.TrimSpace(reply.Text)}, nil
	}
	if !gjson.ValidBytes(reply.ToolInput) {
		return Evaluation{}, fmt.Errorf("invalid evaluation payload")
	}
	res := gjson.ParseBytes(reply.ToolInput)
	return Evaluation{
		Feedback:           res.Get("feedback").String(),
		SuccessCriteriaMet: res.Get("success_criteria_met").Bool(),
		UserInputNeeded:    res.Get("user_input_needed").Bool(),
	}, nil
}
