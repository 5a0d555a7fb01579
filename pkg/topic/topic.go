// Package topic holds the closed set of OSINT topics a fact can belong to
// and a classifier that assigns one of them to a piece of text.
package topic

import (
	"strings"
	"unicode"
)

// Topic is one label of the closed topic set.
type Topic string

const (
	Identity      Topic = "identity"
	Location      Topic = "location"
	SocialMedia   Topic = "social_media"
	Contact       Topic = "contact"
	Employment    Topic = "employment"
	Education     Topic = "education"
	Relationships Topic = "relationships"
	Activities    Topic = "activities"
	Timeline      Topic = "timeline"
	Misc          Topic = "misc"
)

var all = []Topic{
	Identity,
	Location,
	SocialMedia,
	Contact,
	Employment,
	Education,
	Relationships,
	Activities,
	Timeline,
	Misc,
}

var colors = map[Topic]string{
	Identity:      "hsl(286, 100%, 70%)",
	Location:      "hsl(160, 100%, 50%)",
	SocialMedia:   "hsl(195, 100%, 50%)",
	Contact:       "hsl(30, 100%, 50%)",
	Employment:    "hsl(350, 100%, 60%)",
	Education:     "hsl(55, 100%, 50%)",
	Relationships: "hsl(320, 100%, 65%)",
	Activities:    "hsl(220, 100%, 60%)",
	Timeline:      "hsl(120, 100%, 45%)",
	Misc:          "hsl(0, 0%, 70%)",
}

// All returns the topics in their canonical order.
func All() []Topic {
	out := make([]Topic, len(all))
	copy(out, all)
	return out
}

// Names returns the topic names in canonical order.
func Names() []string {
	out := make([]string, len(all))
	for i, t := range all {
		out[i] = string(t)
	}
	return out
}

// Valid reports whether t is part of the closed set.
func (t Topic) Valid() bool {
	_, ok := colors[t]
	return ok
}

// Color returns the HSL display color of t. Unknown topics get the misc color.
func (t Topic) Color() string {
	if c, ok := colors[t]; ok {
		return c
	}
	return colors[Misc]
}

func (t Topic) String() string {
	return string(t)
}

// Parse normalizes a model answer into a Topic. The answer is lowercased and
// trimmed, and surrounding quotes or punctuation are removed. Spaces and
// dashes inside the answer are read as underscores. Anything that is not in
// the set yields Misc.
func Parse(s string) Topic {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
	})
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)

	t := Topic(s)
	if t.Valid() {
		return t
	}
	return Misc
}
