package engine

import (
	"sort"

	"github.com/braillepath/backend/internal/domain/learner"
)

// ConfusionPair is one (target, mistaken-for) edge with its count.
type ConfusionPair struct {
	Item         string `json:"letter"`
	ConfusedWith string `json:"confused_with"`
	Count        int    `json:"count"`
}

// Cluster is an unordered pair of letters the learner systematically
// mixes up, with the accumulated confusion count.
type Cluster struct {
	Items [2]string `json:"letters"`
	Count int       `json:"count"`
}

// RecordConfusion notes that the target item was mistaken for the
// spoken symbol.
func RecordConfusion(stat *learner.ItemStats, spoken string) {
	if stat.ConfusedWith == nil {
		stat.ConfusedWith = make(map[string]int)
	}
	stat.ConfusedWith[spoken]++
}

// MostConfusedPairs flattens every confusion edge across the learner's
// items and returns the top n by count.
func (s *Service) MostConfusedPairs(st *learner.State, n int) []ConfusionPair {
	var pairs []ConfusionPair
	for item, stat := range st.Items {
		for wrong, count := range stat.ConfusedWith {
			pairs = append(pairs, ConfusionPair{Item: item, ConfusedWith: wrong, Count: count})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].Item != pairs[j].Item {
			return pairs[i].Item < pairs[j].Item
		}
		return pairs[i].ConfusedWith < pairs[j].ConfusedWith
	})

	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// ConfusionClusters groups letters that are mistaken for each other.
// For each item, only its single most frequent confusion counts, and
// only once it has occurred at least twice; the pair key is unordered so
// a↔b and b↔a accumulate together.
func (s *Service) ConfusionClusters(st *learner.State) []Cluster {
	counts := make(map[[2]string]int)
	for item, stat := range st.Items {
		top, topCount := "", 0
		for wrong, count := range stat.ConfusedWith {
			if count > topCount || (count == topCount && wrong < top) {
				top, topCount = wrong, count
			}
		}
		if topCount < 2 {
			continue
		}
		key := [2]string{item, top}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		counts[key] += topCount
	}

	clusters := make([]Cluster, 0, len(counts))
	for key, count := range counts {
		clusters = append(clusters, Cluster{Items: key, Count: count})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Items[0] < clusters[j].Items[0]
	})
	return clusters
}
