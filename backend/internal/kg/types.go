package kg

import (
	"fmt"
	"strings"
	"time"
)

// NodeType classifies a graph entity
type NodeType string

const (
	NodePerson NodeType = "Person"
	NodePlace  NodeType = "Place"
	NodeEvent  NodeType = "Event"
	NodeFood   NodeType = "Food"
	NodeArtist NodeType = "Artist"
	NodeSong   NodeType = "Song"
	NodeTheme  NodeType = "Theme"
)

// EdgeType classifies a relation between two graph entities
type EdgeType string

const (
	EdgeFamilyOf         EdgeType = "is_family_of"
	EdgeFriendOf         EdgeType = "friend_of"
	EdgeLivesIn          EdgeType = "lives_in"
	EdgeVisitedPlaceWith EdgeType = "visited_place_with"
	EdgeAttended         EdgeType = "attended"
	EdgeEnjoys           EdgeType = "enjoys"
	EdgeAvoidTopic       EdgeType = "avoid_topic"
	EdgeRemembersWith    EdgeType = "remembers_with"
	EdgePhotoShows       EdgeType = "photo_shows"
)

var allowedNodeTypes = map[NodeType]struct{}{
	NodePerson: {}, NodePlace: {}, NodeEvent: {}, NodeFood: {},
	NodeArtist: {}, NodeSong: {}, NodeTheme: {},
}

var allowedEdgeTypes = map[EdgeType]struct{}{
	EdgeFamilyOf: {}, EdgeFriendOf: {}, EdgeLivesIn: {}, EdgeVisitedPlaceWith: {},
	EdgeAttended: {}, EdgeEnjoys: {}, EdgeAvoidTopic: {}, EdgeRemembersWith: {},
	EdgePhotoShows: {},
}

// ValidNodeType reports whether t is in the node-type allow-list
func ValidNodeType(t NodeType) bool {
	_, ok := allowedNodeTypes[t]
	return ok
}

// ValidEdgeType reports whether t is in the relation allow-list
func ValidEdgeType(t EdgeType) bool {
	_, ok := allowedEdgeTypes[t]
	return ok
}

// Node is a single entity document in a user's graph
type Node struct {
	ID        string         `firestore:"-" json:"id"`
	Owner     string         `firestore:"ownerUid" json:"ownerUid"`
	Type      NodeType       `firestore:"type" json:"type"`
	Name      string         `firestore:"name" json:"name"`
	NameLC    string         `firestore:"name_lc" json:"name_lc"`
	Aliases   []string       `firestore:"aliases" json:"aliases"`
	Props     map[string]any `firestore:"props" json:"props"`
	UpdatedAt time.Time      `firestore:"updated_at" json:"updated_at"`
}

// Edge is a single relation document in a user's graph. Endpoint names are
// denormalized into NamesLC so a traversal can bulk-query "edges touching any
// of these names" with a single array-membership filter.
type Edge struct {
	ID         string         `firestore:"-" json:"id"`
	Owner      string         `firestore:"ownerUid" json:"ownerUid"`
	Type       EdgeType       `firestore:"type" json:"type"`
	FromID     string         `firestore:"from_id" json:"from_id"`
	FromName   string         `firestore:"from_name" json:"from_name"`
	FromType   NodeType       `firestore:"from_type" json:"from_type"`
	FromNameLC string         `firestore:"from_name_lc" json:"from_name_lc"`
	ToID       string         `firestore:"to_id" json:"to_id"`
	ToName     string         `firestore:"to_name" json:"to_name"`
	ToType     NodeType       `firestore:"to_type" json:"to_type"`
	ToNameLC   string         `firestore:"to_name_lc" json:"to_name_lc"`
	NamesLC    []string       `firestore:"names_lc" json:"names_lc"`
	Props      map[string]any `firestore:"props" json:"props"`
	Confidence float64        `firestore:"confidence" json:"confidence"`
	UpdatedAt  time.Time      `firestore:"updated_at" json:"updated_at"`
}

// CleanName trims a raw name
func CleanName(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(CleanName(s))
}

// Role returns the role annotation from the edge props, if any
func (e Edge) Role() string {
	if e.Props == nil {
		return ""
	}
	if r, ok := e.Props["role"].(string); ok {
		return strings.TrimSpace(r)
	}
	return ""
}

// ValidPair reports whether the edge's endpoint types are allowed for its
// relation type. An edge failing this guard is never persisted.
func ValidPair(e Edge) bool {
	ft, tt := e.FromType, e.ToType
	switch e.Type {
	case EdgeFamilyOf, EdgeFriendOf, EdgeRemembersWith, EdgeVisitedPlaceWith:
		return ft == NodePerson && tt == NodePerson
	case EdgeLivesIn:
		return ft == NodePerson && tt == NodePlace
	case EdgeAttended:
		return ft == NodePerson && tt == NodeEvent
	case EdgeEnjoys:
		return ft == NodePerson &&
			(tt == NodeArtist || tt == NodeSong || tt == NodeFood || tt == NodeEvent || tt == NodeTheme)
	case EdgeAvoidTopic:
		return ft == NodePerson && tt == NodeTheme
	case EdgePhotoShows:
		return true
	}
	return false
}

// Fact renders the edge as a short natural-language sentence. First-person
// phrasing when the subject is the speaker, third-person otherwise. Returns
// false for relation types with no rendering template (avoid_topic edges are
// collected separately, photo_shows never surfaces as a fact).
func (e Edge) Fact(speaker string) (string, bool) {
	subj := CleanName(e.FromName)
	obj := CleanName(e.ToName)
	role := ""
	if r := e.Role(); r != "" {
		role = fmt.Sprintf(" (%s)", r)
	}
	isSpeaker := strings.EqualFold(subj, speaker)

	switch e.Type {
	case EdgeLivesIn:
		if isSpeaker {
			return fmt.Sprintf("Lives in %s", obj), true
		}
		return fmt.Sprintf("%s lives in %s", subj, obj), true
	case EdgeFamilyOf:
		if isSpeaker {
			return fmt.Sprintf("Family: %s%s", obj, role), true
		}
		return fmt.Sprintf("%s is family of %s%s", subj, obj, role), true
	case EdgeFriendOf:
		if isSpeaker {
			return fmt.Sprintf("Friends with %s%s", obj, role), true
		}
		return fmt.Sprintf("%s is friends with %s%s", subj, obj, role), true
	case EdgeEnjoys:
		if isSpeaker {
			return fmt.Sprintf("Enjoys %s", obj), true
		}
		return fmt.Sprintf("%s enjoys %s", subj, obj), true
	case EdgeAttended:
		if isSpeaker {
			return fmt.Sprintf("Attended %s", obj), true
		}
		return fmt.Sprintf("%s attended %s", subj, obj), true
	case EdgeVisitedPlaceWith:
		if isSpeaker {
			return fmt.Sprintf("Visited a place with %s", obj), true
		}
		return fmt.Sprintf("%s visited a place with %s", subj, obj), true
	case EdgeRemembersWith:
		if isSpeaker {
			return fmt.Sprintf("Remembers moments with %s", obj), true
		}
		return fmt.Sprintf("%s remembers moments with %s", subj, obj), true
	}
	return "", false
}
