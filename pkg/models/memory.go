// Package models defines the core data types for Nexus.
package models

import (
	"time"
)

// MemoryEntry represents a memory item stored in the vector database for semantic search.
// Jarvis is single-user/single-thread (spec.md §1 Non-goals), so entries carry
// no tenant-scoping fields — everything lives in one embedded store.
type MemoryEntry struct {
	ID string `json:"id"`

	Content  string         `json:"content"`
	Metadata MemoryMetadata `json:"metadata"`

	Embedding []float32 `json:"-"` // Not serialized to JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemoryMetadata contains additional information about a memory entry.
type MemoryMetadata struct {
	Source string         `json:"source"` // "message", "document", "note"
	Role   string         `json:"role"`   // "user", "assistant"
	Tags   []string       `json:"tags"`
	Extra  map[string]any `json:"extra"`
}

// SearchRequest defines parameters for semantic memory search.
type SearchRequest struct {
	Query     string         `json:"query"`
	Limit     int            `json:"limit"`
	Threshold float32        `json:"threshold"` // Min similarity (0-1)
	Filters   map[string]any `json:"filters"`
}

// SearchResult represents a single search result.
type SearchResult struct {
	Entry      *MemoryEntry `json:"entry"`
	Score      float32      `json:"score"`      // Similarity score (0-1)
	Highlights []string     `json:"highlights"` // Matched snippets
}

// SearchResponse contains the results of a memory search.
type SearchResponse struct {
	Results    []*SearchResult `json:"results"`
	TotalCount int             `json:"total_count"`
	QueryTime  time.Duration   `json:"query_time"`
}
