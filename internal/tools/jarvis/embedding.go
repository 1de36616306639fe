// Package jarvis assembles the ten risk-classified tools spec §6 names into
// agent.Tool descriptors, wrapping the teacher's internal/tools/* bodies
// where one exists and adding thin new ones where it doesn't.
package jarvis

import (
	"hash/fnv"
	"math"
	"strings"
)

// hashEmbed produces a deterministic, fixed-dimension pseudo-embedding for
// text by hashing overlapping trigrams into buckets. knowledge_query and
// knowledge_ingest are named in scope (spec §6), but calling out to a real
// embedding API is not — this stands in for one so sqlitevec.Backend's
// cosine-similarity search has vectors to compare without a network
// dependency, at the cost of being a lexical rather than semantic match.
func hashEmbed(text string, dim int) []float32 {
	vec := make([]float32, dim)
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return vec
	}
	for _, token := range strings.Fields(normalized) {
		h := fnv.New32a()
		h.Write([]byte(token))
		bucket := int(h.Sum32()) % dim
		if bucket < 0 {
			bucket += dim
		}
		vec[bucket]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}
