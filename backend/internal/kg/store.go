package kg

import (
	"context"

	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
)

// Store is the per-user document store behind the pipeline. All graph writes
// go through CommitGraph as idempotent merge-upserts; all traversal reads go
// through EdgesTouchingAny.
type Store interface {
	// MentionCache loads the user's mention cache, empty if none exists yet
	MentionCache(ctx context.Context, userID string) (mentions.Cache, error)
	// SaveMentionCache merges the cache document back
	SaveMentionCache(ctx context.Context, userID string, cache mentions.Cache) error
	// CommitGraph upserts the mutation in chunked atomic batches
	CommitGraph(ctx context.Context, userID string, m Mutation) error
	// EdgesTouchingAny returns edges whose names_lc intersects namesLC,
	// querying in platform-sized chunks with a per-chunk result cap
	EdgesTouchingAny(ctx context.Context, userID string, namesLC []string, limit int) ([]Edge, error)
	// DumpGraph exports the user's full node/edge set, no traversal
	DumpGraph(ctx context.Context, userID string) (*GraphDump, error)
}

// GraphDump is the read-only export consumed by graph visualizers
type GraphDump struct {
	Nodes []DumpNode `json:"nodes"`
	Edges []DumpEdge `json:"edges"`
}

// DumpNode is a node in the export shape
type DumpNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
}

// DumpEdge is an edge in the export shape
type DumpEdge struct {
	ID    string         `json:"id"`
	Type  EdgeType       `json:"type"`
	From  string         `json:"from"`
	To    string         `json:"to"`
	Props map[string]any `json:"props"`
	Label string         `json:"label"`
}
