package kg

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
	apperrors "github.com/X1NY1NG/VRGame/backend/pkg/errors"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

// FirestoreStore is the Firestore-backed Store. Each user owns three
// locations: kg_nodes and kg_edges collections, and a single mentions state
// document.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore creates a Store backed by the given Firestore client
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client: client,
		logger: logger.Get(),
	}
}

var _ Store = (*FirestoreStore)(nil)

func (s *FirestoreStore) userDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(userID)
}

func (s *FirestoreStore) nodes(userID string) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("kg_nodes")
}

func (s *FirestoreStore) edges(userID string) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("kg_edges")
}

func (s *FirestoreStore) mentionsDoc(userID string) *firestore.DocumentRef {
	return s.userDoc(userID).Collection("state").Doc("mentions")
}

// MentionCache loads the user's mention cache; a user with no cache yet gets
// an empty one, not an error
func (s *FirestoreStore) MentionCache(ctx context.Context, userID string) (mentions.Cache, error) {
	var cache mentions.Cache
	snap, err := s.mentionsDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return cache, nil
		}
		return cache, apperrors.NewStoreError("failed to load mention cache", err)
	}
	if err := snap.DataTo(&cache); err != nil {
		return mentions.Cache{}, apperrors.NewStoreError("failed to decode mention cache", err)
	}
	return cache, nil
}

// SaveMentionCache merges the cache document back after a turn
func (s *FirestoreStore) SaveMentionCache(ctx context.Context, userID string, cache mentions.Cache) error {
	people := make(map[string]any, len(cache.People))
	for name, p := range cache.People {
		people[name] = map[string]any{"name": p.Name, "gender": p.Gender}
	}
	data := map[string]any{
		"people": people,
		"mru": map[string]any{
			"any":    emptyIfNil(cache.MRU.Any),
			"male":   emptyIfNil(cache.MRU.Male),
			"female": emptyIfNil(cache.MRU.Female),
			"plural": emptyIfNil(cache.MRU.Plural),
		},
	}
	if _, err := s.mentionsDoc(userID).Set(ctx, data, firestore.MergeAll); err != nil {
		return apperrors.NewStoreError("failed to save mention cache", err)
	}
	return nil
}

type writeOp struct {
	ref  *firestore.DocumentRef
	data map[string]any
}

// CommitGraph upserts all node and edge documents of a mutation. Writes are
// merge-sets keyed by deterministic ids, committed in sequential batches of
// at most MaxBatchOps operations; atomicity holds per batch, not across the
// whole set.
func (s *FirestoreStore) CommitGraph(ctx context.Context, userID string, m Mutation) error {
	ops := make([]writeOp, 0, len(m.Nodes)+len(m.Edges))
	for _, n := range m.Nodes {
		ops = append(ops, writeOp{ref: s.nodes(userID).Doc(n.ID), data: nodeData(n)})
	}
	for _, e := range m.Edges {
		ops = append(ops, writeOp{ref: s.edges(userID).Doc(e.ID), data: edgeData(e)})
	}
	if len(ops) == 0 {
		return nil
	}

	for start := 0; start < len(ops); start += constants.MaxBatchOps {
		end := start + constants.MaxBatchOps
		if end > len(ops) {
			end = len(ops)
		}
		batch := s.client.Batch()
		for _, op := range ops[start:end] {
			batch.Set(op.ref, op.data, firestore.MergeAll)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return apperrors.NewStoreError("failed to commit graph batch", err)
		}
	}

	s.logger.Debug("Graph mutation committed",
		zap.String("user_id", userID),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("edges", len(m.Edges)),
	)
	return nil
}

// EdgesTouchingAny bulk-reads edges whose names_lc intersects namesLC.
// Firestore caps array-contains-any at QueryChunkSize values, so the name
// list is queried in chunks; limit applies per chunk.
func (s *FirestoreStore) EdgesTouchingAny(ctx context.Context, userID string, namesLC []string, limit int) ([]Edge, error) {
	var out []Edge
	coll := s.edges(userID)
	for start := 0; start < len(namesLC); start += constants.QueryChunkSize {
		end := start + constants.QueryChunkSize
		if end > len(namesLC) {
			end = len(namesLC)
		}
		chunk := namesLC[start:end]
		it := coll.
			Where("names_lc", "array-contains-any", chunk).
			Limit(limit).
			Documents(ctx)
		for {
			doc, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				it.Stop()
				return nil, apperrors.NewStoreError("failed to query edges", err)
			}
			var e Edge
			if err := doc.DataTo(&e); err != nil {
				it.Stop()
				return nil, apperrors.NewStoreError(fmt.Sprintf("failed to decode edge %s", doc.Ref.ID), err)
			}
			e.ID = doc.Ref.ID
			out = append(out, e)
		}
		it.Stop()
	}
	return out, nil
}

// DumpGraph exports the full per-user graph, fetching node and edge
// collections concurrently
func (s *FirestoreStore) DumpGraph(ctx context.Context, userID string) (*GraphDump, error) {
	dump := &GraphDump{Nodes: []DumpNode{}, Edges: []DumpEdge{}}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.nodes(userID).Documents(ctx).GetAll()
		if err != nil {
			return apperrors.NewStoreError("failed to read nodes", err)
		}
		for _, doc := range docs {
			var n Node
			if err := doc.DataTo(&n); err != nil {
				return apperrors.NewStoreError(fmt.Sprintf("failed to decode node %s", doc.Ref.ID), err)
			}
			dump.Nodes = append(dump.Nodes, DumpNode{ID: doc.Ref.ID, Label: n.Name, Type: n.Type})
		}
		return nil
	})
	g.Go(func() error {
		docs, err := s.edges(userID).Documents(ctx).GetAll()
		if err != nil {
			return apperrors.NewStoreError("failed to read edges", err)
		}
		for _, doc := range docs {
			var e Edge
			if err := doc.DataTo(&e); err != nil {
				return apperrors.NewStoreError(fmt.Sprintf("failed to decode edge %s", doc.Ref.ID), err)
			}
			label := string(e.Type)
			if role := e.Role(); role != "" {
				label = fmt.Sprintf("%s (%s)", e.Type, role)
			}
			props := e.Props
			if props == nil {
				props = map[string]any{}
			}
			dump.Edges = append(dump.Edges, DumpEdge{
				ID:    doc.Ref.ID,
				Type:  e.Type,
				From:  e.FromID,
				To:    e.ToID,
				Props: props,
				Label: label,
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dump, nil
}

func nodeData(n Node) map[string]any {
	return map[string]any{
		"ownerUid":   n.Owner,
		"type":       string(n.Type),
		"name":       n.Name,
		"name_lc":    n.NameLC,
		"aliases":    emptyIfNil(n.Aliases),
		"props":      n.Props,
		"updated_at": firestore.ServerTimestamp,
	}
}

func edgeData(e Edge) map[string]any {
	return map[string]any{
		"ownerUid":     e.Owner,
		"type":         string(e.Type),
		"from_id":      e.FromID,
		"from_name":    e.FromName,
		"from_type":    string(e.FromType),
		"from_name_lc": e.FromNameLC,
		"to_id":        e.ToID,
		"to_name":      e.ToName,
		"to_type":      string(e.ToType),
		"to_name_lc":   e.ToNameLC,
		"names_lc":     e.NamesLC,
		"props":        e.Props,
		"confidence":   e.Confidence,
		"updated_at":   firestore.ServerTimestamp,
	}
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
