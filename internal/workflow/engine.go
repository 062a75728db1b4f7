package workflow

import "fmt"

type OutcomeKind string

const (
	OutcomeReprompt  OutcomeKind = "REPROMPT"
	OutcomeAdvanced  OutcomeKind = "ADVANCED"
	OutcomeCompleted OutcomeKind = "COMPLETED"
	OutcomeCancelled OutcomeKind = "CANCELLED"
)

// Outcome is the result of advancing a session by one inbound event.
type Outcome struct {
	Kind    OutcomeKind
	Message string            // reprompt error, or the next step's prompt
	Session Session           // updated session (unchanged on reprompt)
	Form    map[string]string // fully assembled form, set on completion
}

// Advance runs one inbound event against the session's current step. It is a
// pure function over (definition, session, input): validation failures leave
// the session untouched, accepted input yields a session one step further,
// and the last accepted step yields the assembled form. Advance never talks
// to storage; the caller owns persistence and the completion handler.
func Advance(def *Definition, s Session, in Input) Outcome {
	if in.Cancel {
		return Outcome{Kind: OutcomeCancelled, Session: s}
	}

	if s.StepIndex < 0 || s.StepIndex >= len(def.Steps) {
		panic(fmt.Sprintf("session for %s has step index %d out of range 0..%d",
			def.ID, s.StepIndex, len(def.Steps)-1))
	}
	step := def.Steps[s.StepIndex]

	next := s
	if in.Skip {
		if !step.Optional {
			return Outcome{
				Kind:    OutcomeReprompt,
				Message: "This step cannot be skipped. " + step.Prompt,
				Session: s,
			}
		}
		// field stays unset, keeping its default
		next = next.Advanced()
	} else {
		value, errMsg := step.Validate(in)
		if errMsg != "" {
			return Outcome{Kind: OutcomeReprompt, Message: errMsg, Session: s}
		}
		next = next.WithField(step.Field, value).Advanced()
	}

	if next.StepIndex >= len(def.Steps) {
		return Outcome{Kind: OutcomeCompleted, Session: next, Form: next.Form}
	}
	return Outcome{
		Kind:    OutcomeAdvanced,
		Message: def.Steps[next.StepIndex].Prompt,
		Session: next,
	}
}
