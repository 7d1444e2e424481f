package mentions

import (
	"regexp"
	"strings"

	"github.com/X1NY1NG/VRGame/backend/internal/constants"
)

// Grammatical categories used for pronoun resolution
const (
	KindMale   = "male"
	KindFemale = "female"
	KindPlural = "plural"
)

// Person is a recently mentioned person with an inferred gender
// (empty when nothing in the text gave it away)
type Person struct {
	Name   string `firestore:"name" json:"name"`
	Gender string `firestore:"gender" json:"gender"`
}

// MRU holds most-recently-used name lists per grammatical category,
// most recent first, deduplicated, each capped at MRUCap
type MRU struct {
	Any    []string `firestore:"any" json:"any"`
	Male   []string `firestore:"male" json:"male"`
	Female []string `firestore:"female" json:"female"`
	Plural []string `firestore:"plural" json:"plural"`
}

// Cache is the per-user mention state, loaded at the start of a turn and
// merged back at the end. It is passed through the pipeline by value so
// concurrent users never share it.
type Cache struct {
	People map[string]Person `firestore:"people" json:"people"`
	MRU    MRU               `firestore:"mru" json:"mru"`
}

var (
	maleRoleRe   = regexp.MustCompile(`\b(son|father|dad|brother|uncle|grandfather)\b`)
	femaleRoleRe = regexp.MustCompile(`\b(daughter|mother|mom|sister|aunt|grandmother)\b`)
)

// WithPerson returns a copy of the cache with the given person merged in:
// gender inferred from the accompanying role word when possible, name pushed
// to the front of the matching MRU lists. The speaker placeholder is never
// cached.
func (c Cache) WithPerson(name, role string) Cache {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, constants.SpeakerName) {
		return c
	}

	prior := c.People[name]
	gender := prior.Gender
	r := strings.ToLower(role)
	if maleRoleRe.MatchString(r) {
		gender = KindMale
	} else if femaleRoleRe.MatchString(r) {
		gender = KindFemale
	}

	people := make(map[string]Person, len(c.People)+1)
	for k, v := range c.People {
		people[k] = v
	}
	people[name] = Person{Name: name, Gender: gender}

	mru := c.MRU
	mru.Any = push(mru.Any, name)
	if gender == KindMale {
		mru.Male = push(mru.Male, name)
	}
	if gender == KindFemale {
		mru.Female = push(mru.Female, name)
	}

	return Cache{People: people, MRU: mru}
}

// Pick returns the best recent name for a grammatical category: the
// category's own MRU head, falling back to the global head, or "" when the
// cache has nothing to offer (callers must then leave the pronoun alone).
func (c Cache) Pick(kind string) string {
	switch kind {
	case KindMale:
		if len(c.MRU.Male) > 0 {
			return c.MRU.Male[0]
		}
	case KindFemale:
		if len(c.MRU.Female) > 0 {
			return c.MRU.Female[0]
		}
	}
	if len(c.MRU.Any) > 0 {
		return c.MRU.Any[0]
	}
	return ""
}

// push front-inserts v, dropping any earlier occurrence, capped at MRUCap
func push(list []string, v string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, v)
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	if len(out) > constants.MRUCap {
		out = out[:constants.MRUCap]
	}
	return out
}
