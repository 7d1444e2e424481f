// Package turn runs one conversational turn end to end: resolve pronouns,
// extract facts, validate them, persist the graph mutation, refresh the
// mention cache and retrieve the contextual slice for the reply.
package turn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
	"github.com/X1NY1NG/VRGame/backend/internal/coref"
	"github.com/X1NY1NG/VRGame/backend/internal/extraction"
	"github.com/X1NY1NG/VRGame/backend/internal/heuristics"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
	"github.com/X1NY1NG/VRGame/backend/internal/retrieval"
	apperrors "github.com/X1NY1NG/VRGame/backend/pkg/errors"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

// LLM is the language-model surface the pipeline needs: structured
// extraction plus the optional coreference rewrite
type LLM interface {
	Extract(ctx context.Context, text string) (extraction.RawPayload, error)
	RewriteCoref(ctx context.Context, text string, recentNames []string) (string, error)
}

// Orchestrator coordinates a single turn. Turns are independent units of
// work: all per-user state lives in the store, nothing is shared in-process.
type Orchestrator struct {
	store      kg.Store
	llm        LLM
	resolver   *coref.Resolver
	normalizer *extraction.Normalizer
	retriever  *retrieval.Engine
	heur       heuristics.Classifier
	logger     *zap.Logger
}

// NewOrchestrator creates a turn orchestrator
func NewOrchestrator(store kg.Store, llm LLM, heur heuristics.Classifier, corefTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		store:      store,
		llm:        llm,
		resolver:   coref.NewResolver(llm, corefTimeout),
		normalizer: extraction.NewNormalizer(heur),
		retriever:  retrieval.NewEngine(store, heur),
		heur:       heur,
		logger:     logger.Get(),
	}
}

// RunTurn processes one utterance and returns the facts and avoid-topics
// that should ground the next reply. Extraction failure degrades to a
// retrieval-only turn; store failure aborts the turn.
func (o *Orchestrator) RunTurn(ctx context.Context, userID, text string, history []string) (*retrieval.Result, error) {
	start := time.Now()

	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewMissingField("userId")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewMissingField("text")
	}

	cache, err := o.store.MentionCache(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mention cache: %w", err)
	}

	resolved := o.resolver.Resolve(ctx, text, cache)

	extractStart := time.Now()
	raw, err := o.llm.Extract(ctx, resolved)
	if err != nil {
		// Degrade to an empty extraction: the turn still retrieves context
		// from whatever the cache and text offer
		o.logger.Warn("Extraction unavailable, continuing retrieval-only",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		raw = extraction.RawPayload{}
	}
	extractDur := time.Since(extractStart)

	nodes := o.normalizer.Nodes(raw)
	edges := o.normalizer.Edges(raw)
	edges = coref.PatchEdges(edges, cache)
	edges = o.normalizer.DropUnresolvedPronouns(edges)
	edges = o.normalizer.SuppressFriendOfFamily(edges)

	writeStart := time.Now()
	mutation := kg.PlanMutation(userID, edges, o.heur.IsRoleNoun)
	if err := o.store.CommitGraph(ctx, userID, mutation); err != nil {
		return nil, fmt.Errorf("failed to persist graph mutation: %w", err)
	}
	writeDur := time.Since(writeStart)

	cache = o.refreshMentions(cache, nodes, edges)
	if err := o.store.SaveMentionCache(ctx, userID, cache); err != nil {
		return nil, fmt.Errorf("failed to save mention cache: %w", err)
	}

	result, err := o.retriever.Retrieve(ctx, userID, edges, cache, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	o.logger.Info("Turn processed",
		zap.String("user_id", userID),
		zap.Duration("total", time.Since(start)),
		zap.Duration("extract", extractDur),
		zap.Duration("write", writeDur),
		zap.Int("history_len", len(history)),
		zap.Int("edges", len(edges)),
		zap.Int("facts", len(result.Facts)),
		zap.Int("avoids", len(result.Avoids)),
	)

	return result, nil
}

// refreshMentions merges every person this turn surfaced into the cache:
// declared Person nodes (role from node props) and Person edge endpoints
// (role from edge props). Role nouns and the speaker placeholder stay out.
func (o *Orchestrator) refreshMentions(cache mentions.Cache, nodes []kg.Node, edges []kg.Edge) mentions.Cache {
	for _, n := range nodes {
		if n.Type != kg.NodePerson || n.Name == "" || o.heur.IsRoleNoun(n.Name) {
			continue
		}
		cache = cache.WithPerson(n.Name, nodeRole(n))
	}
	for _, e := range edges {
		if e.FromType == kg.NodePerson && e.FromName != "" && e.FromName != constants.SpeakerName {
			cache = cache.WithPerson(e.FromName, e.Role())
		}
		if e.ToType == kg.NodePerson && e.ToName != "" && e.ToName != constants.SpeakerName {
			cache = cache.WithPerson(e.ToName, e.Role())
		}
	}
	return cache
}

func nodeRole(n kg.Node) string {
	if n.Props == nil {
		return ""
	}
	if r, ok := n.Props["role"].(string); ok {
		return r
	}
	return ""
}
