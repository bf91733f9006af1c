package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/samber/lo"

	"github.com/petasbytes/sidekick/memory"
)

// FeedbackPrefix marks assistant turns that carry the agent's self-evaluation
// rather than an answer.
const FeedbackPrefix = "Evaluator Feedback"

// NoResult is shown when the agent returns nothing usable.
const NoResult = "No result"

// Kind tags the shape of a Result.
type Kind int

const (
	KindTurns Kind = iota
	KindText
	KindMapping
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindTurns:
		return "turns"
	case KindText:
		return "text"
	case KindMapping:
		return "mapping"
	default:
		return "other"
	}
}

// Result is what an agent returns. Exactly one payload field is meaningful,
// selected by Kind.
type Result struct {
	Kind    Kind
	Turns   []memory.Turn
	Text    string
	Mapping map[string]any
	Value   any
}

func TurnsResult(turns ...memory.Turn) Result { return Result{Kind: KindTurns, Turns: turns} }
func TextResult(s string) Result             { return Result{Kind: KindText, Text: s} }
func MappingResult(m map[string]any) Result  { return Result{Kind: KindMapping, Mapping: m} }
func OtherResult(v any) Result               { return Result{Kind: KindOther, Value: v} }

// ExtractAnswer picks the user-facing answer out of r:
//   - turns: the first assistant turn that is not evaluator feedback;
//     when there is none, the turns are rendered as a whole
//   - text: the text itself
//   - mapping: its "content" field, else the whole mapping as JSON
//   - other: fmt rendering
func ExtractAnswer(r Result) string {
	if r.empty() {
		return NoResult
	}
	switch r.Kind {
	case KindTurns:
		if t, ok := lo.Find(r.Turns, isAnswer); ok {
			return t.Content
		}
		return render(r.Turns)
	case KindText:
		return r.Text
	case KindMapping:
		if v, ok := r.Mapping["content"]; ok {
			if s, isString := v.(string); isString {
				return s
			}
			return render(v)
		}
		return render(r.Mapping)
	default:
		return render(r.Value)
	}
}

func isAnswer(t memory.Turn) bool {
	return t.Role == memory.RoleAssistant && !strings.HasPrefix(t.Content, FeedbackPrefix)
}

func (r Result) empty() bool {
	switch r.Kind {
	case KindTurns:
		return len(r.Turns) == 0
	case KindText:
		return r.Text == ""
	case KindMapping:
		return len(r.Mapping) == 0
	default:
		return r.Value == nil
	}
}

// render stringifies v. Scalars print bare; composites prefer JSON so
// maps come out with sorted keys.
func render(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	if isScalar(v) {
		return fmt.Sprint(v)
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
