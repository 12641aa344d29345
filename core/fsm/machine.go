package fsm

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/bastionkit/bastion/core/resource"
)

// Mode selects how Apply persists a successful transition.
type Mode int

const (
	// ModeUpdate patches the existing record in place.
	ModeUpdate Mode = iota
	// ModeAppend inserts a new record with a back-reference to the prior one,
	// keeping every lifecycle step as its own row.
	ModeAppend
)

// Transition declares the allowed source states and the single target state
// for one named transition.
type Transition struct {
	From []string
	To   string
}

// Definition is the static description a Machine is built from.
type Definition struct {
	States      []string
	Transitions map[string]Transition
	Mode        Mode
}

// Machine validates and executes state transitions. Immutable once
// constructed, so it is safe for concurrent use.
type Machine struct {
	def     Definition
	states  map[string]struct{}
	sources map[string]struct{}
}

// New builds a Machine, verifying that every transition references declared
// states.
func New(def Definition) (*Machine, error) {
	if len(def.States) == 0 {
		return nil, fmt.Errorf("%w: no states declared", ErrInvalidDefinition)
	}
	if len(def.Transitions) == 0 {
		return nil, fmt.Errorf("%w: no transitions declared", ErrInvalidDefinition)
	}

	states := make(map[string]struct{}, len(def.States))
	for _, s := range def.States {
		states[s] = struct{}{}
	}

	sources := make(map[string]struct{})
	for name, tr := range def.Transitions {
		if len(tr.From) == 0 {
			return nil, fmt.Errorf("%w: transition %q has no source states", ErrInvalidDefinition, name)
		}
		if _, ok := states[tr.To]; !ok {
			return nil, fmt.Errorf("%w: transition %q targets undeclared state %q", ErrInvalidDefinition, name, tr.To)
		}
		for _, from := range tr.From {
			if _, ok := states[from]; !ok {
				return nil, fmt.Errorf("%w: transition %q allows undeclared state %q", ErrInvalidDefinition, name, from)
			}
			sources[from] = struct{}{}
		}
	}

	return &Machine{def: def, states: states, sources: sources}, nil
}

// MustNew is New that panics on error, for static lifecycle definitions.
func MustNew(def Definition) *Machine {
	m, err := New(def)
	if err != nil {
		panic(err)
	}
	return m
}

// CanTransition checks whether the named transition is legal from the current
// state and returns the target state. The error names the unknown transition
// and lists the valid ones, or names the attempted and allowed source states.
func (m *Machine) CanTransition(current, name string) (string, error) {
	tr, ok := m.def.Transitions[name]
	if !ok {
		return "", fmt.Errorf("%w %q, valid transitions: %s",
			ErrUnknownTransition, name, strings.Join(m.transitionNames(), ", "))
	}

	if !slices.Contains(tr.From, current) {
		return "", fmt.Errorf("%w: %q is not allowed from state %q, allowed from: %s",
			ErrInvalidTransition, name, current, strings.Join(tr.From, ", "))
	}

	return tr.To, nil
}

// Apply re-validates the transition and persists the outcome. In update mode
// the record is patched in place; in append mode a new record referencing the
// prior one is inserted. A nil store applies the transition to the returned
// record only, without persistence. The input record is never mutated.
func (m *Machine) Apply(ctx context.Context, store resource.Store, rec resource.Record, name string, metadata map[string]any) (resource.Record, error) {
	current, ok := rec["status"].(string)
	if !ok || current == "" {
		return nil, ErrMissingStatus
	}

	next, err := m.CanTransition(current, name)
	if err != nil {
		return nil, err
	}

	fields := resource.Record{
		"status":           next,
		"lastTransition":   name,
		"lastTransitionAt": time.Now(),
	}
	for k, v := range metadata {
		fields[k] = v
	}

	if m.def.Mode == ModeAppend {
		return m.appendRecord(ctx, store, rec, fields)
	}
	return m.updateRecord(ctx, store, rec, fields)
}

func (m *Machine) updateRecord(ctx context.Context, store resource.Store, rec resource.Record, fields resource.Record) (resource.Record, error) {
	if store == nil {
		updated := maps.Clone(rec)
		maps.Copy(updated, fields)
		return updated, nil
	}

	id, ok := rec["id"].(string)
	if !ok || id == "" {
		return nil, ErrMissingRecordID
	}

	updated, err := store.Patch(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}
	return updated, nil
}

func (m *Machine) appendRecord(ctx context.Context, store resource.Store, rec resource.Record, fields resource.Record) (resource.Record, error) {
	next := maps.Clone(rec)
	delete(next, "id")
	maps.Copy(next, fields)
	if prev, ok := rec["id"].(string); ok && prev != "" {
		next["previousId"] = prev
	}

	if store == nil {
		return next, nil
	}

	inserted, err := store.Insert(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}
	return inserted, nil
}

// ValidTransitions returns the names of transitions legal from the given
// state, sorted for stable output.
func (m *Machine) ValidTransitions(state string) []string {
	var names []string
	for name, tr := range m.def.Transitions {
		if slices.Contains(tr.From, state) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsTerminal reports whether no transition declares the state as a source.
func (m *Machine) IsTerminal(state string) bool {
	_, ok := m.sources[state]
	return !ok
}

// States returns the declared states in definition order.
func (m *Machine) States() []string {
	return slices.Clone(m.def.States)
}

func (m *Machine) transitionNames() []string {
	names := make([]string, 0, len(m.def.Transitions))
	for name := range m.def.Transitions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
