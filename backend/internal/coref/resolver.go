// Package coref resolves third-person pronouns against the mention cache: a
// cheap inline substitution first, an optional LLM rewrite when the text is
// pronoun-dense, and a final patch for pronouns that survive into extracted
// edge endpoints.
package coref

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

var pronounRe = regexp.MustCompile(`(?i)\b(he|she|they|him|her|them|his|hers|their|theirs)\b`)

// pronounKind maps a lowercase third-person pronoun to its grammatical category
var pronounKind = map[string]string{
	"he": mentions.KindMale, "him": mentions.KindMale, "his": mentions.KindMale,
	"she": mentions.KindFemale, "her": mentions.KindFemale, "hers": mentions.KindFemale,
	"they": mentions.KindPlural, "them": mentions.KindPlural,
	"their": mentions.KindPlural, "theirs": mentions.KindPlural,
}

// IsThirdPersonPronoun reports whether s (any casing) is a bare third-person
// pronoun token
func IsThirdPersonPronoun(s string) bool {
	_, ok := pronounKind[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Rewriter is the optional LLM coreference rewrite, told the recent-mention
// order and asked to substitute only when unambiguous
type Rewriter interface {
	RewriteCoref(ctx context.Context, text string, recentNames []string) (string, error)
}

// Resolver turns pronoun-laden text into referentially explicit text
type Resolver struct {
	rewriter Rewriter
	timeout  time.Duration
	logger   *zap.Logger
}

// NewResolver creates a resolver; rewriter may be nil to disable the LLM pass
func NewResolver(rewriter Rewriter, timeout time.Duration) *Resolver {
	return &Resolver{
		rewriter: rewriter,
		timeout:  timeout,
		logger:   logger.Get(),
	}
}

// Resolve produces the referentially resolved form of text. The heuristic
// substitution always runs; when the raw text holds at least
// MinPronounsForLLM pronouns the LLM rewrite is raced against the timeout and
// its output, if any, wins. A rewrite timeout or failure is silent: the turn
// continues on the heuristic result.
func (r *Resolver) Resolve(ctx context.Context, text string, cache mentions.Cache) string {
	resolved := HeuristicResolve(text, cache)

	if r.rewriter != nil && CountPronouns(text) >= constants.MinPronounsForLLM {
		if rewritten := r.rewriteWithTimeout(ctx, text, cache.MRU.Any); rewritten != "" {
			resolved = rewritten
		}
	}
	return resolved
}

// rewriteWithTimeout races the LLM rewrite against the timeout budget. The
// call has no side effects, so on expiry the in-flight result is simply
// discarded; cancellation tears down the underlying request.
func (r *Resolver) rewriteWithTimeout(ctx context.Context, text string, recentNames []string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type rewriteResult struct {
		text string
		err  error
	}
	ch := make(chan rewriteResult, 1)
	go func() {
		out, err := r.rewriter.RewriteCoref(ctx, text, recentNames)
		ch <- rewriteResult{text: out, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			r.logger.Debug("Coreference rewrite failed, keeping heuristic text", zap.Error(res.err))
			return ""
		}
		return strings.TrimSpace(res.text)
	case <-ctx.Done():
		r.logger.Debug("Coreference rewrite timed out, keeping heuristic text",
			zap.Duration("timeout", r.timeout),
		)
		return ""
	}
}

// HeuristicResolve replaces each third-person pronoun with the most recently
// mentioned name of the matching category, falling back to the global most
// recent name, and leaving the pronoun untouched when the cache offers
// nothing. Capitalization of the original token is preserved.
func HeuristicResolve(text string, cache mentions.Cache) string {
	return pronounRe.ReplaceAllStringFunc(text, func(match string) string {
		kind := pronounKind[strings.ToLower(match)]
		name := cache.Pick(kind)
		if name == "" {
			return match
		}
		if startsUpper(match) {
			return capitalize(name)
		}
		return name
	})
}

// CountPronouns counts third-person pronoun occurrences in text
func CountPronouns(text string) int {
	return len(pronounRe.FindAllString(text, -1))
}

// PatchEdges rewrites edge endpoints that are still bare pronouns using the
// same category lookup. An endpoint the cache cannot resolve stays a pronoun
// and is dropped later in normalization.
func PatchEdges(edges []kg.Edge, cache mentions.Cache) []kg.Edge {
	for i := range edges {
		if kind, ok := pronounKind[strings.ToLower(edges[i].FromName)]; ok {
			if name := cache.Pick(kind); name != "" {
				edges[i].FromName = name
				edges[i].FromType = kg.NodePerson
			}
		}
		if kind, ok := pronounKind[strings.ToLower(edges[i].ToName)]; ok {
			if name := cache.Pick(kind); name != "" {
				edges[i].ToName = name
				edges[i].ToType = kg.NodePerson
			}
		}
	}
	return edges
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
