package coref

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
)

func cacheWith(people ...[2]string) mentions.Cache {
	var c mentions.Cache
	// insert oldest first so the last entry is the most recent
	for _, p := range people {
		c = c.WithPerson(p[0], p[1])
	}
	return c
}

func TestHeuristicResolve_MatchingCategory(t *testing.T) {
	c := cacheWith([2]string{"Emily", "daughter"}, [2]string{"John", "son"})

	got := HeuristicResolve("He enjoys Korean food", c)
	if got != "John enjoys Korean food" {
		t.Errorf("Resolved = %q, want %q", got, "John enjoys Korean food")
	}

	got = HeuristicResolve("I saw her yesterday", c)
	if got != "I saw Emily yesterday" {
		t.Errorf("Resolved = %q, want %q", got, "I saw Emily yesterday")
	}
}

func TestHeuristicResolve_PreservesCapitalization(t *testing.T) {
	c := cacheWith([2]string{"john", "son"})

	got := HeuristicResolve("He said hi. I like him.", c)
	if got != "John said hi. I like john." {
		t.Errorf("Resolved = %q, want capitalized head only", got)
	}
}

func TestHeuristicResolve_NeverGuesses(t *testing.T) {
	var empty mentions.Cache
	got := HeuristicResolve("He is happy", empty)
	if got != "He is happy" {
		t.Errorf("Expected pronoun left unchanged on empty cache, got %q", got)
	}
}

func TestHeuristicResolve_DoesNotTouchNonPronouns(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	got := HeuristicResolve("The theme parks here are great", c)
	if got != "The theme parks here are great" {
		t.Errorf("Expected embedded letters untouched, got %q", got)
	}
}

func TestCountPronouns(t *testing.T) {
	if n := CountPronouns("He said she saw them"); n != 3 {
		t.Errorf("CountPronouns = %d, want 3", n)
	}
	if n := CountPronouns("Hello there"); n != 0 {
		t.Errorf("CountPronouns = %d, want 0", n)
	}
}

func TestIsThirdPersonPronoun(t *testing.T) {
	for _, p := range []string{"he", "She", "THEY", " him ", "hers", "theirs"} {
		if !IsThirdPersonPronoun(p) {
			t.Errorf("Expected %q to be a third-person pronoun", p)
		}
	}
	for _, p := range []string{"User", "I", "Emily", "hello"} {
		if IsThirdPersonPronoun(p) {
			t.Errorf("Did not expect %q to be a third-person pronoun", p)
		}
	}
}

func TestPatchEdges_ResolvesEndpoints(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	edges := []kg.Edge{
		{Type: kg.EdgeEnjoys, FromName: "he", FromType: kg.NodePerson, ToName: "Korean food", ToType: kg.NodeFood},
	}

	edges = PatchEdges(edges, c)

	if edges[0].FromName != "John" {
		t.Errorf("FromName = %q, want John", edges[0].FromName)
	}
	if edges[0].FromType != kg.NodePerson {
		t.Errorf("FromType = %q, want Person", edges[0].FromType)
	}
}

func TestPatchEdges_LeavesUnresolvable(t *testing.T) {
	var empty mentions.Cache
	edges := []kg.Edge{
		{Type: kg.EdgeFriendOf, FromName: "User", FromType: kg.NodePerson, ToName: "she", ToType: kg.NodePerson},
	}

	edges = PatchEdges(edges, empty)

	if edges[0].ToName != "she" {
		t.Errorf("Expected unresolvable pronoun left as-is, got %q", edges[0].ToName)
	}
}

type fakeRewriter struct {
	out   string
	err   error
	delay time.Duration
}

func (f *fakeRewriter) RewriteCoref(ctx context.Context, text string, recentNames []string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestResolve_SkipsLLMWhenFewPronouns(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	rw := &fakeRewriter{out: "LLM OUTPUT"}
	r := NewResolver(rw, time.Second)

	got := r.Resolve(context.Background(), "He enjoys Korean food", c)
	if got != "John enjoys Korean food" {
		t.Errorf("Expected heuristic-only result, got %q", got)
	}
}

func TestResolve_UsesLLMWhenPronounDense(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	rw := &fakeRewriter{out: "John said John likes gardening"}
	r := NewResolver(rw, time.Second)

	got := r.Resolve(context.Background(), "He said he likes gardening", c)
	if got != "John said John likes gardening" {
		t.Errorf("Expected rewrite to win, got %q", got)
	}
}

func TestResolve_TimeoutFallsBackToHeuristic(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	rw := &fakeRewriter{out: "too late", delay: 500 * time.Millisecond}
	r := NewResolver(rw, 30*time.Millisecond)

	start := time.Now()
	got := r.Resolve(context.Background(), "He said he likes gardening", c)
	elapsed := time.Since(start)

	if got != "John said John likes gardening" {
		t.Errorf("Expected heuristic fallback, got %q", got)
	}
	if elapsed > 300*time.Millisecond {
		t.Errorf("Resolve blocked past its timeout budget: %v", elapsed)
	}
}

func TestResolve_RewriteErrorFallsBackToHeuristic(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	rw := &fakeRewriter{err: errors.New("service down")}
	r := NewResolver(rw, time.Second)

	got := r.Resolve(context.Background(), "He said he likes gardening", c)
	if got != "John said John likes gardening" {
		t.Errorf("Expected heuristic fallback on error, got %q", got)
	}
}

func TestResolve_NilRewriter(t *testing.T) {
	c := cacheWith([2]string{"John", "son"})
	r := NewResolver(nil, time.Second)

	got := r.Resolve(context.Background(), "He said he likes gardening", c)
	if got != "John said John likes gardening" {
		t.Errorf("Expected heuristic result with nil rewriter, got %q", got)
	}
}
