// Package heuristics holds the coarse regex-based classifiers used across the
// pipeline: role-noun detection, enjoys-object typing and seed extraction from
// raw text. They are deliberately cheap and are the most likely source of
// false positives, so they sit behind a small policy interface that tests and
// future replacements can swap out.
package heuristics

import (
	"regexp"
	"strings"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
)

// Classifier is the pluggable policy for text classification decisions
type Classifier interface {
	// IsRoleNoun reports whether a name is a bare kinship/occupation word
	// ("daughter", "nurse") that must never be stored as a person's name
	IsRoleNoun(name string) bool
	// EnjoysObjectType infers the entity type of an enjoys-relation object
	// from keywords in its name
	EnjoysObjectType(name string) kg.NodeType
	// TextSeeds pulls candidate entity names out of free text for use as
	// traversal seeds when neither edges nor the mention cache supply any
	TextSeeds(text string) []string
}

// RegexClassifier is the default Classifier
type RegexClassifier struct{}

// NewRegexClassifier creates the default regex-backed classifier
func NewRegexClassifier() *RegexClassifier {
	return &RegexClassifier{}
}

var _ Classifier = (*RegexClassifier)(nil)

var (
	roleWordRe       = regexp.MustCompile(`(?i)^(son|daughter|child|children|kid|kids|mother|father|mom|dad|friend|neighbour|neighbor|nurse)$`)
	speakerRoleRe    = regexp.MustCompile(`(?i)^user'?s\s+(son|daughter|child|children|kid|kids)$`)
	foodKeywordRe    = regexp.MustCompile(`\b(food|pasta|noodles?|soup|cake|tea|coffee|bread)\b`)
	songKeywordRe    = regexp.MustCompile(`\b(song|single|track)\b`)
	artistKeywordRe  = regexp.MustCompile(`\b(artist|singer|band|composer)\b`)
	properNameRe     = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})\b`)
	quotedPhraseRe   = regexp.MustCompile(`"([^"]{2,40})"|'([^']{2,40})'`)
	foodishPhraseRe  = regexp.MustCompile(`(?i)\b([A-Za-z]+(?:\s+[A-Za-z]+)*)\s+food\b`)
)

// IsRoleNoun implements Classifier
func (c *RegexClassifier) IsRoleNoun(name string) bool {
	lc := strings.ToLower(strings.TrimSpace(name))
	if lc == "" {
		return false
	}
	if speakerRoleRe.MatchString(lc) {
		return true
	}
	return roleWordRe.MatchString(lc)
}

// EnjoysObjectType implements Classifier. Anything that is not recognizably
// food, a song or an artist is treated as a Theme ("gardening", "clothes
// shopping").
func (c *RegexClassifier) EnjoysObjectType(name string) kg.NodeType {
	lc := strings.ToLower(strings.TrimSpace(name))
	switch {
	case foodKeywordRe.MatchString(lc):
		return kg.NodeFood
	case songKeywordRe.MatchString(lc):
		return kg.NodeSong
	case artistKeywordRe.MatchString(lc):
		return kg.NodeArtist
	default:
		return kg.NodeTheme
	}
}

// TextSeeds implements Classifier: proper names ("Jay Chou", "Toa Payoh"),
// quoted phrases and "<something> food" mentions, lowercased, in order of
// first appearance, capped at MaxTextSeeds.
func (c *RegexClassifier) TextSeeds(text string) []string {
	seen := make(map[string]struct{})
	var seeds []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		seeds = append(seeds, s)
	}

	for _, m := range properNameRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range quotedPhraseRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			add(m[1])
		} else {
			add(m[2])
		}
	}
	if m := foodishPhraseRe.FindString(text); m != "" {
		add(m)
	}

	if len(seeds) > constants.MaxTextSeeds {
		seeds = seeds[:constants.MaxTextSeeds]
	}
	return seeds
}
