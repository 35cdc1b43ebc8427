package tracker

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sequence() func() string {
	var (
		mu sync.Mutex
		n  int
	)

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		n++

		return "e" + strconv.Itoa(n)
	}
}

func populate(t *testing.T, r *Recorder) {
	t.Helper()

	ctx := t.Context()

	for _, err := range []error{
		r.AddSymbol(ctx, Entity{Kind: EntitySymbol, Name: "e", Notation: "m * c * c", Confidence: 0.9, Uncertainty: 0.1}),
		r.AddSymbol(ctx, Entity{Kind: EntityVariable, Name: "x", Classification: "probabilistic", Confidence: 0.8, Uncertainty: 0.2}),
		r.AddKnowledgeGraph(ctx, Graph{Name: "g", Relations: []Relation{{1.0, "x", 2.0}}}),
		r.AddLearnFunction(ctx, LearnFunction{Name: "adapt", Params: []string{"v"}}),
		r.LogLearning(ctx, LearningActivity{Function: "adapt", Adaptations: 1}),
		r.LogLearning(ctx, LearningActivity{Function: "adapt", Adaptations: 2}),
		r.LogMetaReasoning(ctx, MetaActivity{Condition: "x", Confidence: 0.8, Uncertainty: 0.2, Reasoning: "executed"}),
	} {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestRecorder_Events(t *testing.T) {
	t.Parallel()

	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRecorder(WithIDs(sequence()), WithClock(func() time.Time { return epoch }))

	populate(t, r)

	events := r.Events()

	want := []struct {
		kind Kind
		name string
	}{
		{KindSymbol, "e"},
		{KindVariable, "x"},
		{KindGraph, "g"},
		{KindLearnFunction, "adapt"},
		{KindLearning, "adapt"},
		{KindLearning, "adapt"},
		{KindMetaReasoning, "x"},
	}

	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}

	for i, w := range want {
		e := events[i]

		if e.Kind != w.kind || e.Name != w.name {
			t.Errorf("event %d: expected %s %s, got %s %s", i, w.kind, w.name, e.Kind, e.Name)
		}

		if e.ID != "e"+strconv.Itoa(i+1) {
			t.Errorf("event %d: expected sequential id, got %s", i, e.ID)
		}

		if !e.Time.Equal(epoch) {
			t.Errorf("event %d: expected time %v, got %v", i, epoch, e.Time)
		}
	}

	if events[0].Detail != "m * c * c" {
		t.Errorf("expected symbol notation as detail, got %q", events[0].Detail)
	}

	if events[2].Detail != "1 relations" {
		t.Errorf("expected relation count as detail, got %q", events[2].Detail)
	}

	if p, ok := events[3].Payload.(LearnFunction); !ok || p.Params[0] != "v" {
		t.Errorf("expected learn function payload, got %#v", events[3].Payload)
	}

	events[0].Name = "mutated"
	if r.Events()[0].Name != "e" {
		t.Error("expected Events to return a copy")
	}
}

func TestRecorder_UUIDs(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	populate(t, r)

	seen := make(map[string]bool)

	for _, e := range r.Events() {
		if _, err := uuid.Parse(e.ID); err != nil {
			t.Errorf("expected UUID, got %q: %v", e.ID, err)
		}

		if seen[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}

		seen[e.ID] = true
	}
}

func TestRecorder_Summary(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	populate(t, r)

	want := Summary{
		Symbols:        1,
		Variables:      1,
		Graphs:         1,
		LearnFunctions: 1,
		MetaReasoning:  1,
		Learning:       2,
		Total:          7,
	}

	if got := r.Summary(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	r.Reset()

	if got := r.Summary(); got != (Summary{}) || r.Len() != 0 {
		t.Errorf("expected empty journal after reset, got %+v", got)
	}
}

func TestRecorder_Filter(t *testing.T) {
	t.Parallel()

	r := NewRecorder(WithIDs(sequence()))
	populate(t, r)

	tests := []struct {
		expr string
		want []string // event IDs
	}{
		{``, []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7"}},
		{`kind == "symbol"`, []string{"e1"}},
		{`confidence >= 0.8 && uncertainty > 0`, []string{"e1", "e2", "e7"}},
		{`kind == "learning" && adaptations >= 2`, []string{"e6"}},
		{`name startsWith "ad"`, []string{"e4", "e5", "e6"}},
		{`detail contains "relations"`, []string{"e3"}},
		{`id in ["e2", "e7"]`, []string{"e2", "e7"}},
		{`false`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()

			events, err := r.Filter(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := make([]string, len(events))
			for i, e := range events {
				got[i] = e.ID
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRecorder_FilterErrors(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	populate(t, r)

	for _, src := range []string{`kind ==`, `unknown_field > 1`, `name + 1`} {
		if _, err := r.Filter(src); !errors.Is(err, ErrFilterCompile) {
			t.Errorf("%q: expected %v, got %v", src, ErrFilterCompile, err)
		}
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRecorder()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Go(func() {
			for j := range 25 {
				_ = r.LogLearning(t.Context(), LearningActivity{
					Function:    fmt.Sprintf("f%d", i),
					Adaptations: j + 1,
				})
			}
		})
	}

	wg.Wait()

	if n := r.Summary().Learning; n != 200 {
		t.Errorf("expected 200 events, got %d", n)
	}
}

func TestEvent_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		e    Event
		want string
	}{
		{
			Event{Kind: KindSymbol, Name: "e", Confidence: 0.9, Uncertainty: 0.1, Detail: "m * c"},
			"symbol e (confidence 0.90, uncertainty 0.10): m * c",
		},
		{
			Event{Kind: KindLearning, Name: "f", Confidence: 1, Adaptations: 3},
			"learning f (confidence 1.00, uncertainty 0.00) adaptations 3",
		},
	}

	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
