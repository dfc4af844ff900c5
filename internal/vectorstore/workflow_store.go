package vectorstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

const DefaultTopK = 3

// WorkflowVectorStore is the long-term memory of one crew run.
// Each run gets its own collection keyed by the run UUID; with a persist
// path the collections are kept on disk after the run.
type WorkflowVectorStore struct {
	db             *chromem.DB
	collection     *chromem.Collection
	runID          string
	collectionName string
	persistPath    string
}

// Options configures a WorkflowVectorStore.
type Options struct {
	PersistPath string                // Empty keeps everything in process memory
	RunID       string                // Generated when empty
	Embedding   chromem.EmbeddingFunc // Required
}

// SearchResult is one memory hit.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]string
}

// NewWorkflowVectorStore opens (or creates) the database and the run's collection.
func NewWorkflowVectorStore(opts Options) (*WorkflowVectorStore, error) {
	if opts.Embedding == nil {
		return nil, fmt.Errorf("embedding function is required")
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}

	var db *chromem.DB
	if opts.PersistPath == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(opts.PersistPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create vectordb directory: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(opts.PersistPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create chromem db: %w", err)
		}
	}

	collectionName := fmt.Sprintf("crew_run_%s", opts.RunID)
	collection, err := db.GetOrCreateCollection(collectionName, map[string]string{"run_id": opts.RunID}, opts.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &WorkflowVectorStore{
		db:             db,
		collection:     collection,
		runID:          opts.RunID,
		collectionName: collectionName,
		persistPath:    opts.PersistPath,
	}, nil
}

// EmbeddingFunc returns the embedding function for an embedder name.
// apiKey and baseURL are passed explicitly; nothing is read from the environment.
func EmbeddingFunc(embedder, apiKey, baseURL string) (chromem.EmbeddingFunc, error) {
	switch strings.ToLower(embedder) {
	case "openai", "":
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedder requires an API key")
		}
		if baseURL != "" {
			return chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, string(chromem.EmbeddingModelOpenAI3Small), nil), nil
		}
		return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small), nil
	case "ollama", "local":
		// nomic-embed-text on the default local Ollama endpoint
		return chromem.NewEmbeddingFuncOllama("nomic-embed-text", ""), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", embedder)
	}
}

// StoreTaskOutput stores the output an agent produced for a task.
func (w *WorkflowVectorStore) StoreTaskOutput(ctx context.Context, taskID, agentRole, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	now := time.Now()
	doc := chromem.Document{
		ID:      fmt.Sprintf("%s_output_%d", taskID, now.UnixNano()),
		Content: content,
		Metadata: map[string]string{
			"task_id":    taskID,
			"agent_role": agentRole,
			"doc_type":   "output",
			"run_id":     w.runID,
			"timestamp":  now.Format(time.RFC3339),
		},
	}
	return w.collection.AddDocument(ctx, doc)
}

// Query finds the documents most similar to query.
func (w *WorkflowVectorStore) Query(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	// chromem rejects nResults larger than the collection
	if n := w.collection.Count(); topK > n {
		topK = n
	}
	if topK == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	results, err := w.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		searchResults = append(searchResults, SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		})
	}
	return searchResults, nil
}

// QueryRelevantContext renders the memories relevant to a task as a context block.
func (w *WorkflowVectorStore) QueryRelevantContext(ctx context.Context, query string, topK int) (string, error) {
	results, err := w.Query(ctx, query, topK)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "- (%s, %s) %s\n", r.Metadata["task_id"], r.Metadata["agent_role"], r.Content)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the store. Persistent collections are kept for debugging;
// in-memory ones are dropped.
func (w *WorkflowVectorStore) Close() error {
	if w.persistPath != "" {
		return nil
	}
	return w.db.DeleteCollection(w.collectionName)
}

func (w *WorkflowVectorStore) GetRunID() string          { return w.runID }
func (w *WorkflowVectorStore) GetCollectionName() string { return w.collectionName }
func (w *WorkflowVectorStore) Count() int                { return w.collection.Count() }
