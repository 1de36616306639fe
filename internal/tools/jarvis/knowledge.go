package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/memory/backend"
	"github.com/jarvisai/jarvis/internal/memory/backend/sqlitevec"
	"github.com/jarvisai/jarvis/pkg/models"
)

// KnowledgeEmbeddingDim is the fixed width of the hashEmbed pseudo-embedding
// used by both knowledge tools. Exported so a driver constructing the
// shared sqlitevec.Backend (cmd/jarvis) can open it at a matching dimension.
const KnowledgeEmbeddingDim = 256

// KnowledgeIngestTool is the dangerous `knowledge_ingest` tool spec §6
// names: write a document into the embedded vector store. Grounded on
// teacher's internal/memory/backend/sqlitevec pattern - the same
// modernc.org/sqlite-backed table reused for a second workload rather than
// a second driver.
type KnowledgeIngestTool struct {
	store *sqlitevec.Backend
}

// NewKnowledgeIngestTool builds the tool against a shared store.
func NewKnowledgeIngestTool(store *sqlitevec.Backend) *KnowledgeIngestTool {
	return &KnowledgeIngestTool{store: store}
}

func (t *KnowledgeIngestTool) Name() string { return "knowledge_ingest" }

func (t *KnowledgeIngestTool) Description() string {
	return "Store a document in the knowledge base for later retrieval by knowledge_query."
}

func (t *KnowledgeIngestTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content": map[string]interface{}{"type": "string", "description": "Document text to store."},
			"tags":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		},
		"required": []string{"content"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *KnowledgeIngestTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Content == "" {
		return errResult("content is required"), nil
	}

	entry := &models.MemoryEntry{
		Content:   input.Content,
		Metadata:  models.MemoryMetadata{Source: "document", Tags: input.Tags},
		Embedding: hashEmbed(input.Content, KnowledgeEmbeddingDim),
	}
	if err := t.store.Index(ctx, []*models.MemoryEntry{entry}); err != nil {
		return errResult(fmt.Sprintf("ingest: %v", err)), nil
	}

	payload, _ := json.Marshal(map[string]string{"id": entry.ID, "status": "ingested"})
	return &agent.ToolResult{Content: string(payload)}, nil
}

// KnowledgeQueryTool is the safe `knowledge_query` tool spec §6 names: read
// from the same embedded store knowledge_ingest writes to.
type KnowledgeQueryTool struct {
	store *sqlitevec.Backend
}

// NewKnowledgeQueryTool builds the tool against a shared store.
func NewKnowledgeQueryTool(store *sqlitevec.Backend) *KnowledgeQueryTool {
	return &KnowledgeQueryTool{store: store}
}

func (t *KnowledgeQueryTool) Name() string { return "knowledge_query" }

func (t *KnowledgeQueryTool) Description() string {
	return "Search the knowledge base for documents related to a query."
}

func (t *KnowledgeQueryTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string", "description": "Natural-language search query."},
			"limit": map[string]interface{}{"type": "integer", "description": "Maximum results (default 5).", "minimum": 1},
		},
		"required": []string{"query"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *KnowledgeQueryTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Query == "" {
		return errResult("query is required"), nil
	}
	if input.Limit <= 0 {
		input.Limit = 5
	}

	results, err := t.store.Search(ctx, hashEmbed(input.Query, KnowledgeEmbeddingDim), &backend.SearchOptions{Limit: input.Limit})
	if err != nil {
		return errResult(fmt.Sprintf("query: %v", err)), nil
	}

	type hit struct {
		Content string  `json:"content"`
		Score   float32 `json:"score"`
	}
	hits := make([]hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hit{Content: r.Entry.Content, Score: r.Score})
	}
	payload, _ := json.Marshal(map[string]any{"results": hits})
	return &agent.ToolResult{Content: string(payload)}, nil
}
