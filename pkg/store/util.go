package store

import (
	"github.com/factgraph/backend/pkg/common"
)

// DedupeIDs returns ids without duplicates and non-positive values,
// preserving first-seen order.
func DedupeIDs(in []int64) []int64 {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(in))
	out := make([]int64, 0, len(in))
	for _, v := range in {
		if v <= 0 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// FilterGraph keeps the facts carrying at least one tag of tagFilter and the
// links whose both ends are kept. An empty filter keeps everything.
func FilterGraph(facts []common.Fact, links []common.Relationship, tagFilter []int64) common.Graph {
	tagFilter = DedupeIDs(tagFilter)
	if len(tagFilter) == 0 {
		return common.Graph{Nodes: nonNilFacts(facts), Links: nonNilLinks(links)}
	}

	wanted := make(map[int64]struct{}, len(tagFilter))
	for _, id := range tagFilter {
		wanted[id] = struct{}{}
	}

	kept := make(map[int64]struct{})
	nodes := make([]common.Fact, 0, len(facts))
	for _, f := range facts {
		for _, t := range f.Tags {
			if _, ok := wanted[t.ID]; ok {
				nodes = append(nodes, f)
				kept[f.ID] = struct{}{}
				break
			}
		}
	}

	out := make([]common.Relationship, 0, len(links))
	for _, l := range links {
		_, src := kept[l.SourceID]
		_, dst := kept[l.TargetID]
		if src && dst {
			out = append(out, l)
		}
	}
	return common.Graph{Nodes: nodes, Links: out}
}

func nonNilFacts(in []common.Fact) []common.Fact {
	if in == nil {
		return []common.Fact{}
	}
	return in
}

func nonNilLinks(in []common.Relationship) []common.Relationship {
	if in == nil {
		return []common.Relationship{}
	}
	return in
}
