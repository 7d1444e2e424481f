// Package retrieval walks the persisted graph outward from this turn's
// entities and renders the small slice of facts and avoid-topics that grounds
// the next reply.
package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
	"github.com/X1NY1NG/VRGame/backend/internal/heuristics"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

// EdgeSource is the bulk neighbor read the traversal depends on
type EdgeSource interface {
	EdgesTouchingAny(ctx context.Context, userID string, namesLC []string, limit int) ([]kg.Edge, error)
}

// Result is the contextual slice returned to the client
type Result struct {
	Facts  []string `json:"facts"`
	Avoids []string `json:"avoids"`
}

// Engine performs bounded breadth-first retrieval over a user's graph
type Engine struct {
	source EdgeSource
	heur   heuristics.Classifier
	logger *zap.Logger
}

// NewEngine creates a retrieval engine
func NewEngine(source EdgeSource, heur heuristics.Classifier) *Engine {
	return &Engine{
		source: source,
		heur:   heur,
		logger: logger.Get(),
	}
}

// Retrieve aggregates facts and avoid-topics from this turn's edges plus up
// to MaxHops of neighbors. Seeds come from the turn's edges, then the
// mention cache, then heuristic names in the resolved text. The visited set
// is capped at VisitedCap and each hop's frontier at Fanout, so traversal
// cost is bounded no matter how dense the graph gets.
func (e *Engine) Retrieve(ctx context.Context, userID string, turnEdges []kg.Edge, cache mentions.Cache, resolvedText string) (*Result, error) {
	facts := newOrderedSet()
	avoids := newOrderedSet()

	for _, edge := range turnEdges {
		collect(edge, facts, avoids)
	}

	seeds := e.seeds(turnEdges, cache, resolvedText)

	visited := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		visited[s] = struct{}{}
	}
	frontier := seeds

	for hop := 1; hop <= constants.MaxHops && len(frontier) > 0; hop++ {
		neighborEdges, err := e.source.EdgesTouchingAny(ctx, userID, frontier, constants.Fanout*10)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, edge := range neighborEdges {
			collect(edge, facts, avoids)
			for _, nameLC := range []string{edge.FromNameLC, edge.ToNameLC} {
				key := strings.ToLower(strings.TrimSpace(nameLC))
				if key == "" {
					continue
				}
				if _, seen := visited[key]; seen || len(visited) >= constants.VisitedCap {
					continue
				}
				visited[key] = struct{}{}
				next = append(next, key)
			}
		}

		// Keep the frontier tight
		if len(next) > constants.Fanout {
			next = next[:constants.Fanout]
		}
		frontier = next
	}

	e.logger.Debug("Retrieval complete",
		zap.String("user_id", userID),
		zap.Int("seeds", len(seeds)),
		zap.Int("visited", len(visited)),
		zap.Int("facts", facts.len()),
		zap.Int("avoids", avoids.len()),
	)

	return &Result{
		Facts:  facts.take(constants.MaxFacts),
		Avoids: avoids.take(constants.MaxAvoidTopics),
	}, nil
}

// seeds picks traversal entry points in priority order: names on this turn's
// edges, then the global MRU list, then names scraped from the text itself
func (e *Engine) seeds(turnEdges []kg.Edge, cache mentions.Cache, resolvedText string) []string {
	seen := make(map[string]struct{})
	var seeds []string
	add := func(name string) {
		key := strings.ToLower(kg.CleanName(name))
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		seeds = append(seeds, key)
	}

	for _, edge := range turnEdges {
		add(edge.FromName)
		add(edge.ToName)
	}
	if len(seeds) > 0 {
		return seeds
	}

	for _, name := range cache.MRU.Any {
		add(name)
	}
	if len(seeds) > 0 {
		return seeds
	}

	return e.heur.TextSeeds(resolvedText)
}

// collect routes one edge into the output sets: avoid_topic objects go to the
// avoid list, renderable relations become facts, everything else is ignored
func collect(edge kg.Edge, facts, avoids *orderedSet) {
	if edge.Type == kg.EdgeAvoidTopic && edge.ToName != "" {
		avoids.add(kg.CleanName(edge.ToName))
	}
	if fact, ok := edge.Fact(constants.SpeakerName); ok {
		facts.add(fact)
	}
}

// orderedSet is a deduplicated list preserving discovery order
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) len() int {
	return len(s.items)
}

func (s *orderedSet) take(n int) []string {
	if len(s.items) <= n {
		out := make([]string, len(s.items))
		copy(out, s.items)
		return out
	}
	out := make([]string, n)
	copy(out, s.items[:n])
	return out
}
