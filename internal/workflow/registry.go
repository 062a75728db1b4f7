package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CompletionFunc performs the domain write for a fully populated form and
// returns the user-facing summary. It must create exactly one primary record;
// derived aggregate updates that fail afterwards are reported via
// ErrPartialWrite, never dropped.
type CompletionFunc func(ctx context.Context, form map[string]string, actorID int64) (string, error)

// Definition is an ordered step table plus its completion handler, immutable
// after registration.
type Definition struct {
	ID         string
	Title      string
	NotifyRole string // role notified on completion, empty for none
	Steps      []Step
	Complete   CompletionFunc
}

type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: map[string]*Definition{}}
}

func (r *Registry) Register(def *Definition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("definition requires an id")
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("workflow %s has no steps", def.ID)
	}
	if def.Complete == nil {
		return fmt.Errorf("workflow %s has no completion handler", def.ID)
	}
	for i, s := range def.Steps {
		if s.Validate == nil {
			return fmt.Errorf("workflow %s step %d has no validator", def.ID, i)
		}
		if s.Field == "" {
			return fmt.Errorf("workflow %s step %d has no target field", def.ID, i)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

func (r *Registry) Lookup(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return def, nil
}

// IDs returns the registered workflow ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StepIndexOfField returns the index of the step populating the given field,
// or -1 when no step does.
func (d *Definition) StepIndexOfField(field string) int {
	for i, s := range d.Steps {
		if s.Field == field {
			return i
		}
	}
	return -1
}

// FieldsFrom returns the target fields of every step at and after index i. A
// rewind clears all of them so the re-walk cannot resurface stale values.
func (d *Definition) FieldsFrom(i int) []string {
	fields := make([]string, 0, len(d.Steps)-i)
	for _, s := range d.Steps[i:] {
		fields = append(fields, s.Field)
	}
	return fields
}
