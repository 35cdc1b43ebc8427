package lang

import (
	"context"
	"math/rand/v2"
	"sync"
)

// QueryKind selects the information-seeking built-in an [Oracle] answers.
type QueryKind int

const (
	QueryReason   QueryKind = iota // reason_about
	QueryKnow                      // know
	QuerySeek                      // seek
	QuerySeekMore                  // seek_more_data
)

// String returns the built-in name for the query kind.
func (k QueryKind) String() string {
	switch k {
	case QueryReason:
		return "reason_about"
	case QueryKnow:
		return "know"
	case QuerySeek:
		return "seek"
	case QuerySeekMore:
		return "seek_more_data"
	default:
		return "unknown"
	}
}

// Query is a request from an information-seeking built-in.
type Query struct {
	Kind    QueryKind
	Subject Value
}

// Oracle answers information-seeking built-ins. Calls to an Oracle are the
// points where evaluation may block; implementations should honor ctx.
type Oracle interface {
	Consult(ctx context.Context, q Query) (*Annotated, error)
}

// OracleFunc adapts a function to the [Oracle] interface.
type OracleFunc func(ctx context.Context, q Query) (*Annotated, error)

// Consult calls f.
func (f OracleFunc) Consult(ctx context.Context, q Query) (*Annotated, error) {
	return f(ctx, q)
}

// confidenceBand is the half-open interval an outcome's confidence is drawn
// from.
type confidenceBand struct {
	lo, hi float64
}

var oracleBands = map[QueryKind]confidenceBand{
	QueryReason:   {0.5, 0.9},
	QueryKnow:     {0.3, 1.0},
	QuerySeek:     {0.6, 0.9},
	QuerySeekMore: {0.7, 0.95},
}

// RandomOracle simulates reasoning outcomes with confidences drawn uniformly
// from a fixed band per query kind. It is safe for concurrent use.
type RandomOracle struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomOracle returns an oracle whose draws are fully determined by seed.
func NewRandomOracle(seed uint64) *RandomOracle {
	return &RandomOracle{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func newDefaultOracle() *RandomOracle {
	return NewRandomOracle(rand.Uint64())
}

// Float64 returns a pseudo-random number in [0,1).
func (o *RandomOracle) Float64() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.rng.Float64()
}

// Consult implements [Oracle].
func (o *RandomOracle) Consult(ctx context.Context, q Query) (*Annotated, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	band := oracleBands[q.Kind]
	c := band.lo + o.Float64()*(band.hi-band.lo)

	subject := Raw(q.Subject).String()

	var (
		inner Value
		class Classification
	)

	switch q.Kind {
	case QueryReason:
		inner, class = String("reasoning about "+subject), ClassUncertain
	case QueryKnow:
		inner, class = Bool(c > 0.5), ClassKnowledgeCheck
	case QuerySeek:
		inner, class = String("information about "+subject), ClassSoughtInformation
	case QuerySeekMore:
		inner, class = String("additional data from "+subject), ClassAdditionalData
	default:
		return nil, ErrInvalidArgument.Errorf("unknown query kind %d", int(q.Kind))
	}

	return &Annotated{
		Inner:       inner,
		Class:       class,
		Confidence:  c,
		Uncertainty: 1 - c,
	}, nil
}
