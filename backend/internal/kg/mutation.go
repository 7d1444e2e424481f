package kg

import (
	"github.com/X1NY1NG/VRGame/backend/internal/constants"
)

// Mutation is the validated write set for one turn: the nodes that must
// exist and the edges that reference them, all with deterministic ids so
// commits are idempotent merge-upserts.
type Mutation struct {
	Nodes []Node
	Edges []Edge
}

// PlanMutation collects the node and edge documents implied by the validated
// edge set. Nodes are derived from edge endpoints rather than from the
// extraction's declared node list, plus the speaker's own Person node which
// is ensured every turn. A Person endpoint whose name is a bare role noun
// never becomes a node; edges left without both endpoint ids are excluded
// from the write set.
func PlanMutation(owner string, edges []Edge, isRoleNoun func(string) bool) Mutation {
	type nodeKey struct {
		t    NodeType
		name string
	}
	seen := make(map[nodeKey]struct{})
	var order []nodeKey

	wantNode := func(t NodeType, name string) string {
		if !ValidNodeType(t) {
			t = NodePerson
		}
		nm := CleanName(name)
		if t == NodePerson && isRoleNoun != nil && isRoleNoun(nm) {
			return ""
		}
		k := nodeKey{t, nm}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			order = append(order, k)
		}
		return NodeID(owner, t, nm)
	}

	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		e.FromID = wantNode(e.FromType, e.FromName)
		e.ToID = wantNode(e.ToType, e.ToName)
		if e.FromID == "" || e.ToID == "" {
			continue
		}
		e.Owner = owner
		e.FromName = CleanName(e.FromName)
		e.ToName = CleanName(e.ToName)
		e.FromNameLC = lower(e.FromName)
		e.ToNameLC = lower(e.ToName)
		e.NamesLC = []string{e.FromNameLC, e.ToNameLC}
		e.ID = EdgeID(owner, e.Type, e.FromName, e.ToName)
		if e.Props == nil {
			e.Props = map[string]any{}
		}
		out = append(out, e)
	}

	// The speaker node exists regardless of what this turn extracted
	wantNode(NodePerson, constants.SpeakerName)

	nodes := make([]Node, 0, len(order))
	for _, k := range order {
		nodes = append(nodes, Node{
			ID:      NodeID(owner, k.t, k.name),
			Owner:   owner,
			Type:    k.t,
			Name:    k.name,
			NameLC:  lower(k.name),
			Aliases: []string{},
			Props:   map[string]any{},
		})
	}

	return Mutation{Nodes: nodes, Edges: out}
}
