package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ardnew/mial/log"
)

// Kind identifies the notification an [Event] was recorded from.
type Kind string

const (
	KindSymbol        Kind = "symbol"
	KindVariable      Kind = "variable"
	KindGraph         Kind = "graph"
	KindLearnFunction Kind = "learn_function"
	KindMetaReasoning Kind = "meta_reasoning"
	KindLearning      Kind = "learning"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindSymbol, KindVariable, KindGraph,
	KindLearnFunction, KindMetaReasoning, KindLearning,
}

// Event is one journal entry. Payload holds the notification that produced
// it ([Entity], [Graph], [LearnFunction], [MetaActivity] or
// [LearningActivity]).
type Event struct {
	Time        time.Time `json:"time"                  yaml:"time"`
	Payload     any       `json:"payload"               yaml:"payload"`
	ID          string    `json:"id"                    yaml:"id"`
	Kind        Kind      `json:"kind"                  yaml:"kind"`
	Name        string    `json:"name"                  yaml:"name"`
	Detail      string    `json:"detail,omitempty"      yaml:"detail,omitempty"`
	Confidence  float64   `json:"confidence"            yaml:"confidence"`
	Uncertainty float64   `json:"uncertainty"           yaml:"uncertainty"`
	Adaptations int       `json:"adaptations,omitempty" yaml:"adaptations,omitempty"`
}

// String returns a one-line description of the event.
func (e Event) String() string {
	s := fmt.Sprintf("%s %s (confidence %.2f, uncertainty %.2f)",
		e.Kind, e.Name, e.Confidence, e.Uncertainty)

	if e.Kind == KindLearning || e.Kind == KindLearnFunction {
		s += fmt.Sprintf(" adaptations %d", e.Adaptations)
	}

	if e.Detail != "" {
		s += ": " + e.Detail
	}

	return s
}

// Summary holds event totals per kind.
type Summary struct {
	Symbols        int `json:"symbols"         yaml:"symbols"`
	Variables      int `json:"variables"       yaml:"variables"`
	Graphs         int `json:"graphs"          yaml:"graphs"`
	LearnFunctions int `json:"learn_functions" yaml:"learn_functions"`
	MetaReasoning  int `json:"meta_reasoning"  yaml:"meta_reasoning"`
	Learning       int `json:"learning"        yaml:"learning"`
	Total          int `json:"total"           yaml:"total"`
}

// Recorder keeps every notification in an in-memory journal. It is safe for
// concurrent use.
type Recorder struct {
	logger log.Logger
	clock  func() time.Time
	ids    func() string

	mu     sync.Mutex
	events []Event
}

// Option configures a [Recorder].
type Option func(*Recorder)

// WithLogger sets the logger that receives a trace record per event.
func WithLogger(logger log.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithClock sets the source of event timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDs sets the source of event IDs.
func WithIDs(ids func() string) Option {
	return func(r *Recorder) {
		if ids != nil {
			r.ids = ids
		}
	}
}

// NewRecorder returns an empty recorder. Events are stamped with the
// current time and a random UUID unless configured otherwise.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		clock: time.Now,
		ids:   func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Recorder) record(ctx context.Context, e Event) {
	r.mu.Lock()
	e.ID = r.ids()
	e.Time = r.clock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	r.logger.TraceContext(ctx, "tracker event",
		slog.String("id", e.ID),
		slog.String("kind", string(e.Kind)),
		slog.String("name", e.Name),
		slog.Float64("confidence", e.Confidence),
	)
}

// AddSymbol records a symbol or annotated variable.
func (r *Recorder) AddSymbol(ctx context.Context, e Entity) error {
	kind := KindSymbol
	if e.Kind == EntityVariable {
		kind = KindVariable
	}

	detail := e.Notation
	if detail == "" {
		detail = e.Classification
	}

	r.record(ctx, Event{
		Kind:        kind,
		Name:        e.Name,
		Detail:      detail,
		Confidence:  e.Confidence,
		Uncertainty: e.Uncertainty,
		Payload:     e,
	})

	return nil
}

// AddKnowledgeGraph records a knowledge graph definition.
func (r *Recorder) AddKnowledgeGraph(ctx context.Context, g Graph) error {
	r.record(ctx, Event{
		Kind:       KindGraph,
		Name:       g.Name,
		Detail:     fmt.Sprintf("%d relations", len(g.Relations)),
		Confidence: 1,
		Payload:    g,
	})

	return nil
}

// AddLearnFunction records a learn function declaration.
func (r *Recorder) AddLearnFunction(ctx context.Context, f LearnFunction) error {
	r.record(ctx, Event{
		Kind:       KindLearnFunction,
		Name:       f.Name,
		Detail:     "(" + strings.Join(f.Params, ", ") + ")",
		Confidence: 1,
		Payload:    f,
	})

	return nil
}

// LogMetaReasoning records a meta block that ran.
func (r *Recorder) LogMetaReasoning(ctx context.Context, a MetaActivity) error {
	r.record(ctx, Event{
		Kind:        KindMetaReasoning,
		Name:        a.Condition,
		Detail:      a.Reasoning,
		Confidence:  a.Confidence,
		Uncertainty: a.Uncertainty,
		Payload:     a,
	})

	return nil
}

// LogLearning records a learn function invocation.
func (r *Recorder) LogLearning(ctx context.Context, a LearningActivity) error {
	r.record(ctx, Event{
		Kind:        KindLearning,
		Name:        a.Function,
		Confidence:  1,
		Adaptations: a.Adaptations,
		Payload:     a,
	})

	return nil
}

// Events returns a copy of the journal in recording order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.events)
}

// Summary returns event totals per kind.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Summary

	for _, e := range r.events {
		switch e.Kind {
		case KindSymbol:
			s.Symbols++
		case KindVariable:
			s.Variables++
		case KindGraph:
			s.Graphs++
		case KindLearnFunction:
			s.LearnFunctions++
		case KindMetaReasoning:
			s.MetaReasoning++
		case KindLearning:
			s.Learning++
		}
	}

	s.Total = len(r.events)

	return s
}

// Filter returns the events matching the expression in recording order. See
// [Filter] for the expression environment.
func (r *Recorder) Filter(source string) ([]Event, error) {
	f, err := CompileFilter(source)
	if err != nil {
		return nil, err
	}

	var out []Event

	for _, e := range r.Events() {
		ok, err := f.Match(e)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, e)
		}
	}

	return out, nil
}

// Reset empties the journal.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
