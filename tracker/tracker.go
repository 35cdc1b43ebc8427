// Package tracker receives notifications about the knowledge an evaluation
// produces: symbols, annotated variables, knowledge graphs, learn functions
// and meta-reasoning or learning activity.
//
// Notifications never influence evaluation. An interpreter wired to [Nop]
// produces exactly the same results as one wired to a [Recorder] or a [Neo4j]
// sink; errors returned by a Tracker are logged and otherwise ignored.
//
// Payloads carry plain Go data (strings, float64, bool, nil, []any and
// map[string]any) so that sinks need no knowledge of the language runtime.
package tracker

import (
	"context"
	"errors"
)

// Tracker is notified at fixed points during evaluation.
type Tracker interface {
	AddSymbol(ctx context.Context, e Entity) error
	AddKnowledgeGraph(ctx context.Context, g Graph) error
	AddLearnFunction(ctx context.Context, f LearnFunction) error
	LogMetaReasoning(ctx context.Context, a MetaActivity) error
	LogLearning(ctx context.Context, a LearningActivity) error
}

// EntityKind distinguishes symbol definitions from annotated variables.
type EntityKind string

const (
	EntitySymbol   EntityKind = "symbol"
	EntityVariable EntityKind = "variable"
)

// Entity describes a symbol definition or an annotated variable declaration.
type Entity struct {
	Kind           EntityKind `json:"kind"                    yaml:"kind"`
	Name           string     `json:"name"                    yaml:"name"`
	Notation       string     `json:"notation,omitempty"      yaml:"notation,omitempty"`
	Classification string     `json:"classification,omitempty" yaml:"classification,omitempty"`
	Value          any        `json:"value"                   yaml:"value"`
	Confidence     float64    `json:"confidence"              yaml:"confidence"`
	Uncertainty    float64    `json:"uncertainty"             yaml:"uncertainty"`
}

// Relation is one evaluated subject-predicate-object triple.
type Relation struct {
	Subject   any `json:"subject"   yaml:"subject"`
	Predicate any `json:"predicate" yaml:"predicate"`
	Object    any `json:"object"    yaml:"object"`
}

// Graph describes a knowledge graph definition.
type Graph struct {
	Name      string     `json:"name"      yaml:"name"`
	Relations []Relation `json:"relations" yaml:"relations"`
}

// LearnFunction describes a learn function declaration.
type LearnFunction struct {
	Name   string   `json:"name"   yaml:"name"`
	Params []string `json:"params" yaml:"params"`
}

// MetaActivity describes a meta block whose body ran.
type MetaActivity struct {
	Condition   string  `json:"condition"   yaml:"condition"`
	Result      any     `json:"result"      yaml:"result"`
	Confidence  float64 `json:"confidence"  yaml:"confidence"`
	Uncertainty float64 `json:"uncertainty" yaml:"uncertainty"`
	Reasoning   string  `json:"reasoning"   yaml:"reasoning"`
}

// LearningActivity describes one completed learn function invocation.
type LearningActivity struct {
	Function    string `json:"function"    yaml:"function"`
	Adaptations int    `json:"adaptations" yaml:"adaptations"`
	Args        []any  `json:"args"        yaml:"args"`
	Result      any    `json:"result"      yaml:"result"`
}

// Nop ignores every notification.
type Nop struct{}

func (Nop) AddSymbol(context.Context, Entity) error { return nil }
func (Nop) AddKnowledgeGraph(context.Context, Graph) error { return nil }
func (Nop) AddLearnFunction(context.Context, LearnFunction) error { return nil }
func (Nop) LogMetaReasoning(context.Context, MetaActivity) error { return nil }
func (Nop) LogLearning(context.Context, LearningActivity) error { return nil }

// Multi forwards every notification to each of its trackers in order and
// joins their errors.
type Multi []Tracker

func (m Multi) AddSymbol(ctx context.Context, e Entity) error {
	return m.each(func(t Tracker) error { return t.AddSymbol(ctx, e) })
}

func (m Multi) AddKnowledgeGraph(ctx context.Context, g Graph) error {
	return m.each(func(t Tracker) error { return t.AddKnowledgeGraph(ctx, g) })
}

func (m Multi) AddLearnFunction(ctx context.Context, f LearnFunction) error {
	return m.each(func(t Tracker) error { return t.AddLearnFunction(ctx, f) })
}

func (m Multi) LogMetaReasoning(ctx context.Context, a MetaActivity) error {
	return m.each(func(t Tracker) error { return t.LogMetaReasoning(ctx, a) })
}

func (m Multi) LogLearning(ctx context.Context, a LearningActivity) error {
	return m.each(func(t Tracker) error { return t.LogLearning(ctx, a) })
}

func (m Multi) each(fn func(Tracker) error) error {
	var errs []error

	for _, t := range m {
		if t == nil {
			continue
		}

		if err := fn(t); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
