package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ardnew/mial/log"
)

// Neo4jConfig holds the connection settings of a [Neo4j] sink.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string // empty selects the server default
}

// Neo4j writes notifications to a Neo4j database:
//
//   - symbols and annotated variables are (:Symbol) nodes keyed by name;
//   - knowledge graphs are (:KnowledgeGraph) nodes that [:CONTAINS] the
//     (:Concept) nodes of their relations, linked by [:RELATION {predicate}];
//   - learn functions are (:LearnFunction) nodes whose adaptations property
//     follows each invocation;
//   - meta reasoning is stored as (:MetaReasoning) nodes.
type Neo4j struct {
	driver   neo4j.DriverWithContext
	logger   log.Logger
	database string
}

// DialNeo4j connects to the database described by cfg and verifies that it
// is reachable.
func DialNeo4j(ctx context.Context, cfg Neo4jConfig, logger log.Logger) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, ErrConnect.Wrap(err).With(slog.String("uri", cfg.URI))
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)

		return nil, ErrConnect.Wrap(err).With(slog.String("uri", cfg.URI))
	}

	logger.DebugContext(ctx, "connected to graph database",
		slog.String("uri", cfg.URI),
		slog.String("database", cfg.Database),
	)

	return &Neo4j{driver: driver, logger: logger, database: cfg.Database}, nil
}

// Close releases the driver.
func (g *Neo4j) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// statement is one parameterized Cypher query.
type statement struct {
	cypher string
	params map[string]any
}

// run executes stmts in order in a single session.
func (g *Neo4j) run(ctx context.Context, what string, stmts ...statement) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database})
	defer session.Close(ctx)

	for _, st := range stmts {
		if _, err := session.Run(ctx, st.cypher, st.params); err != nil {
			return ErrWrite.Wrap(err).With(slog.String("notification", what))
		}
	}

	g.logger.TraceContext(ctx, "graph database write",
		slog.String("notification", what),
		slog.Int("statements", len(stmts)),
	)

	return nil
}

// AddSymbol merges a (:Symbol) node.
func (g *Neo4j) AddSymbol(ctx context.Context, e Entity) error {
	return g.run(ctx, "symbol", symbolStatement(e))
}

// AddKnowledgeGraph merges a (:KnowledgeGraph) node and its relations.
func (g *Neo4j) AddKnowledgeGraph(ctx context.Context, kg Graph) error {
	return g.run(ctx, "knowledge graph", graphStatements(kg)...)
}

// AddLearnFunction merges a (:LearnFunction) node.
func (g *Neo4j) AddLearnFunction(ctx context.Context, f LearnFunction) error {
	return g.run(ctx, "learn function", learnFunctionStatement(f))
}

// LogMetaReasoning creates a (:MetaReasoning) node.
func (g *Neo4j) LogMetaReasoning(ctx context.Context, a MetaActivity) error {
	return g.run(ctx, "meta reasoning", metaStatement(uuid.New().String(), a))
}

// LogLearning updates the adaptations of a (:LearnFunction) node.
func (g *Neo4j) LogLearning(ctx context.Context, a LearningActivity) error {
	return g.run(ctx, "learning", learningStatement(a))
}

func symbolStatement(e Entity) statement {
	return statement{
		cypher: `MERGE (s:Symbol {name: $name})
			SET s.kind = $kind, s.notation = $notation,
				s.classification = $classification, s.value = $value,
				s.confidence = $confidence, s.uncertainty = $uncertainty,
				s.updated_at = datetime()`,
		params: map[string]any{
			"name":           e.Name,
			"kind":           string(e.Kind),
			"notation":       e.Notation,
			"classification": e.Classification,
			"value":          property(e.Value),
			"confidence":     e.Confidence,
			"uncertainty":    e.Uncertainty,
		},
	}
}

func graphStatements(kg Graph) []statement {
	stmts := make([]statement, 0, len(kg.Relations)+1)

	stmts = append(stmts, statement{
		cypher: `MERGE (g:KnowledgeGraph {name: $name})
			SET g.size = $size, g.updated_at = datetime()`,
		params: map[string]any{
			"name": kg.Name,
			"size": len(kg.Relations),
		},
	})

	for _, r := range kg.Relations {
		stmts = append(stmts, statement{
			cypher: `MATCH (g:KnowledgeGraph {name: $graph})
				MERGE (s:Concept {name: $subject})
				MERGE (o:Concept {name: $object})
				MERGE (s)-[:RELATION {predicate: $predicate, graph: $graph}]->(o)
				MERGE (g)-[:CONTAINS]->(s)
				MERGE (g)-[:CONTAINS]->(o)`,
			params: map[string]any{
				"graph":     kg.Name,
				"subject":   concept(r.Subject),
				"predicate": concept(r.Predicate),
				"object":    concept(r.Object),
			},
		})
	}

	return stmts
}

func learnFunctionStatement(f LearnFunction) statement {
	params := f.Params
	if params == nil {
		params = []string{}
	}

	return statement{
		cypher: `MERGE (f:LearnFunction {name: $name})
			ON CREATE SET f.adaptations = 0
			SET f.params = $params, f.updated_at = datetime()`,
		params: map[string]any{
			"name":   f.Name,
			"params": params,
		},
	}
}

func metaStatement(id string, a MetaActivity) statement {
	return statement{
		cypher: `CREATE (m:MetaReasoning {
				id: $id, condition: $condition, result: $result,
				confidence: $confidence, uncertainty: $uncertainty,
				reasoning: $reasoning, created_at: datetime()
			})`,
		params: map[string]any{
			"id":          id,
			"condition":   a.Condition,
			"result":      property(a.Result),
			"confidence":  a.Confidence,
			"uncertainty": a.Uncertainty,
			"reasoning":   a.Reasoning,
		},
	}
}

func learningStatement(a LearningActivity) statement {
	return statement{
		cypher: `MERGE (f:LearnFunction {name: $name})
			SET f.adaptations = $adaptations, f.last_result = $result,
				f.updated_at = datetime()`,
		params: map[string]any{
			"name":        a.Function,
			"adaptations": a.Adaptations,
			"result":      property(a.Result),
		},
	}
}

// property converts a payload value to a Neo4j property. Scalars pass
// through; lists and maps are stored as JSON text.
func property(v any) any {
	switch v := v.(type) {
	case nil, string, bool, float64, int, int64:
		return v
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}

// concept returns the name of the (:Concept) node a relation term maps to.
func concept(v any) string {
	switch p := property(v).(type) {
	case string:
		return p
	case nil:
		return "null"
	default:
		return fmt.Sprint(p)
	}
}
