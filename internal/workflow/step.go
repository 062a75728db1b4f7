package workflow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type InputKind string

const (
	KindNumber InputKind = "Number" // numeric text, canonicalized
	KindText   InputKind = "Text"   // free text
	KindChoice InputKind = "Choice" // one of a fixed candidate set
	KindPhoto  InputKind = "Photo"  // opaque uploaded-photo token
)

// Input is one inbound user event. Cancel and Skip are the explicit signals;
// everything else is carried as text or an opaque photo reference.
type Input struct {
	Text     string
	PhotoRef string
	Cancel   bool
	Skip     bool
}

func TextInput(text string) Input { return Input{Text: strings.TrimSpace(text)} }
func PhotoInput(ref string) Input { return Input{PhotoRef: ref} }
func CancelInput() Input          { return Input{Cancel: true} }
func SkipInput() Input            { return Input{Skip: true} }

// Validator checks one raw input and returns either a canonical value or a
// user-facing error message. Validators must not have side effects; read-only
// lookups (Reference) are the one allowed collaboration.
type Validator func(in Input) (value string, errMsg string)

// Step is one entry in a workflow's step table, immutable after registration.
type Step struct {
	Prompt   string
	Kind     InputKind
	Field    string
	Optional bool
	Validate Validator
}

// Number accepts a non-negative numeric string. Zero is accepted only when
// allowZero is set; the threshold is per-step configuration because the
// workflows disagree on it (cash amounts are strictly positive, counted
// weights may be zero).
func Number(allowZero bool) Validator {
	return func(in Input) (string, string) {
		raw := strings.TrimSpace(in.Text)
		if raw == "" {
			return "", "Please enter a number."
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Sprintf("%q is not a valid number, please try again.", raw)
		}
		if v < 0 {
			return "", "The value cannot be negative, please try again."
		}
		if v == 0 && !allowZero {
			return "", "The value must be greater than zero, please try again."
		}
		return strconv.FormatFloat(v, 'f', -1, 64), ""
	}
}

// Choice accepts exactly one of a fixed candidate set, case-insensitively.
func Choice(options ...string) Validator {
	return func(in Input) (string, string) {
		raw := strings.TrimSpace(in.Text)
		for _, opt := range options {
			if strings.EqualFold(raw, opt) {
				return opt, ""
			}
		}
		return "", fmt.Sprintf("Please choose one of: %s.", strings.Join(options, ", "))
	}
}

// Text accepts non-empty free text up to maxLen runes.
func Text(maxLen int) Validator {
	return func(in Input) (string, string) {
		raw := strings.TrimSpace(in.Text)
		if raw == "" {
			return "", "Please enter some text."
		}
		if maxLen > 0 && len([]rune(raw)) > maxLen {
			return "", fmt.Sprintf("Too long, maximum %d characters.", maxLen)
		}
		return raw, ""
	}
}

// Photo accepts an opaque uploaded-photo token. The token is stored and
// forwarded, never interpreted.
func Photo() Validator {
	return func(in Input) (string, string) {
		if in.PhotoRef == "" {
			return "", "Please attach a photo."
		}
		return in.PhotoRef, ""
	}
}

// Date accepts a calendar date as YYYY-MM-DD.
func Date() Validator {
	return func(in Input) (string, string) {
		raw := strings.TrimSpace(in.Text)
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return "", "Please enter a date as YYYY-MM-DD."
		}
		return t.Format("2006-01-02"), ""
	}
}

// Reference accepts a code that currently exists in a directory. The lookup
// is read-only; the completion handler re-checks at write time because the
// entity can still vanish in between.
func Reference(what string, exists func(code string) (bool, error)) Validator {
	return func(in Input) (string, string) {
		raw := strings.TrimSpace(in.Text)
		if raw == "" {
			return "", fmt.Sprintf("Please enter a %s code.", what)
		}
		ok, err := exists(raw)
		if err != nil {
			return "", "Temporary failure looking that up, please try again."
		}
		if !ok {
			return "", fmt.Sprintf("Unknown %s %q, please try again.", what, raw)
		}
		return raw, ""
	}
}
