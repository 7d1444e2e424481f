package extraction

import (
	"strings"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
	"github.com/X1NY1NG/VRGame/backend/internal/coref"
	"github.com/X1NY1NG/VRGame/backend/internal/heuristics"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
)

// speakerAliases are first-person tokens rewritten to the speaker placeholder
var speakerAliases = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "mine": {}, "myself": {},
	"we": {}, "our": {}, "ours": {}, "ourselves": {},
}

// Normalizer turns the untrusted extraction payload into a policy-valid
// mutation set
type Normalizer struct {
	heur heuristics.Classifier
}

// NewNormalizer creates a normalizer using the given classification policy
func NewNormalizer(heur heuristics.Classifier) *Normalizer {
	return &Normalizer{heur: heur}
}

// Nodes keeps only declared nodes with an allow-listed type and a non-empty
// trimmed name. These feed the mention cache; persisted nodes are derived
// from edge endpoints instead.
func (n *Normalizer) Nodes(raw RawPayload) []kg.Node {
	out := make([]kg.Node, 0, len(raw.Nodes))
	for _, rn := range raw.Nodes {
		name := kg.CleanName(rn.Name)
		if name == "" || !kg.ValidNodeType(kg.NodeType(rn.Type)) {
			continue
		}
		out = append(out, kg.Node{
			Type:    kg.NodeType(rn.Type),
			Name:    name,
			Aliases: rn.Aliases,
			Props:   rn.Props,
		})
	}
	return out
}

// Edges maps raw edges into typed edges and applies the type allow-list,
// endpoint-presence, confidence-floor and valid-pair filters, then rewrites
// first-person endpoints to the speaker placeholder.
func (n *Normalizer) Edges(raw RawPayload) []kg.Edge {
	out := make([]kg.Edge, 0, len(raw.Edges))
	for _, re := range raw.Edges {
		e := n.mapEdge(re)
		if !kg.ValidEdgeType(e.Type) {
			continue
		}
		if e.FromName == "" || e.ToName == "" {
			continue
		}
		if e.Confidence < constants.ConfidenceFloor {
			continue
		}
		if !kg.ValidPair(e) {
			continue
		}
		aliasSpeaker(&e)
		out = append(out, e)
	}
	return out
}

// mapEdge parses endpoints and infers a missing or bogus object type from the
// relation: lives_in targets a Place, attended an Event, avoid_topic a Theme;
// enjoys objects are typed by keyword, and anything else defaults to Person.
func (n *Normalizer) mapEdge(re RawEdge) kg.Edge {
	edgeType := kg.EdgeType(re.Type)
	fromName := kg.CleanName(re.From.Name)
	toName := kg.CleanName(re.To.Name)

	fromType := kg.NodeType(re.From.Type)
	if !kg.ValidNodeType(fromType) {
		fromType = kg.NodePerson
	}

	toType := kg.NodeType(re.To.Type)
	if !kg.ValidNodeType(toType) {
		switch edgeType {
		case kg.EdgeLivesIn:
			toType = kg.NodePlace
		case kg.EdgeAttended:
			toType = kg.NodeEvent
		case kg.EdgeAvoidTopic:
			toType = kg.NodeTheme
		case kg.EdgeEnjoys:
			toType = n.heur.EnjoysObjectType(toName)
		default:
			toType = kg.NodePerson
		}
	}

	confidence := constants.DefaultConfidence
	if re.Confidence != nil {
		confidence = *re.Confidence
	}

	props := re.Props
	if props == nil {
		props = map[string]any{}
	}

	return kg.Edge{
		Type:       edgeType,
		FromName:   fromName,
		FromType:   fromType,
		ToName:     toName,
		ToType:     toType,
		Props:      props,
		Confidence: confidence,
	}
}

// DropUnresolvedPronouns removes edges that still name a bare third-person
// pronoun as a party. Runs after the mention-cache patch, so anything left is
// genuinely unresolvable and must not be persisted.
func (n *Normalizer) DropUnresolvedPronouns(edges []kg.Edge) []kg.Edge {
	out := edges[:0]
	for _, e := range edges {
		if coref.IsThirdPersonPronoun(e.FromName) && e.FromName != constants.SpeakerName {
			continue
		}
		if coref.IsThirdPersonPronoun(e.ToName) && e.ToName != constants.SpeakerName {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SuppressFriendOfFamily drops any friend_of edge whose unordered person pair
// already carries an is_family_of edge; family relations dominate.
func (n *Normalizer) SuppressFriendOfFamily(edges []kg.Edge) []kg.Edge {
	familyPairs := make(map[string]struct{})
	for _, e := range edges {
		if e.Type == kg.EdgeFamilyOf {
			familyPairs[pairKey(e.FromName, e.ToName)] = struct{}{}
		}
	}

	out := edges[:0]
	for _, e := range edges {
		if e.Type == kg.EdgeFriendOf {
			if _, ok := familyPairs[pairKey(e.FromName, e.ToName)]; ok {
				continue
			}
			if _, ok := familyPairs[pairKey(e.ToName, e.FromName)]; ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func pairKey(from, to string) string {
	return strings.ToLower(from) + "→" + strings.ToLower(to)
}

func aliasSpeaker(e *kg.Edge) {
	if _, ok := speakerAliases[strings.ToLower(e.FromName)]; ok {
		e.FromName = constants.SpeakerName
		e.FromType = kg.NodePerson
	}
	if _, ok := speakerAliases[strings.ToLower(e.ToName)]; ok {
		e.ToName = constants.SpeakerName
		e.ToType = kg.NodePerson
	}
}
