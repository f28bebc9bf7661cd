package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mbenkhaled/telerag/internal/store"
	"github.com/mbenkhaled/telerag/internal/telemetry"
)

// SearchResult is the provenance record attached to every answer.
type SearchResult = store.SearchResult

// Embedder turns free text into fixed-length normalized vectors.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever executes nearest-neighbor queries against the dialogue corpus.
type Retriever interface {
	SearchDialogues(ctx context.Context, vector []float32, topK int) ([]store.SearchResult, error)
}

// Generator sends a constructed prompt to a chat-completion model.
type Generator interface {
	ChatCompletion(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// QueryOptions are the caller-supplied retrieval and generation parameters.
type QueryOptions struct {
	TopK        int
	Temperature float64
	MaxTokens   int
}

// DefaultOptions mirrors the reference UI defaults.
func DefaultOptions() QueryOptions {
	return QueryOptions{TopK: 3, Temperature: 0.7, MaxTokens: 500}
}

// Answer is the unit appended to a session transcript as an assistant turn.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
}

// Orchestrator composes embedding, retrieval and generation into one pipeline.
// All collaborators are constructed once at startup and injected here.
type Orchestrator struct {
	embedder  Embedder
	retriever Retriever
	generator Generator
	logger    *log.Logger
	metrics   *telemetry.Metrics
}

func NewOrchestrator(embedder Embedder, retriever Retriever, generator Generator, logger *log.Logger, metrics *telemetry.Metrics) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	return &Orchestrator{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ask runs the full pipeline for one question: embed the query, fetch the
// top-K closest dialogue excerpts, build the context and generate a grounded
// answer. Each stage runs once; there are no retries.
//
// Failure handling follows the error taxonomy: an embedding failure is
// terminal, a retrieval failure degrades to zero results, and a generation
// failure becomes the visible answer text.
func (o *Orchestrator) Ask(ctx context.Context, question string, opts QueryOptions) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("question must not be empty")
	}
	if opts.TopK <= 0 {
		return Answer{}, fmt.Errorf("top_k must be positive, got %d", opts.TopK)
	}

	vecs, err := o.embedder.CreateEmbedding(ctx, []string{question})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) == 0 {
		return Answer{}, fmt.Errorf("embedding provider returned no vector")
	}

	start := time.Now()
	results, err := o.retriever.SearchDialogues(ctx, vecs[0], opts.TopK)
	o.metrics.ObserveRetrieval(time.Since(start))
	if err != nil {
		// Degraded, not fatal: the pipeline continues to the no-results branch.
		o.logger.Printf("dialogue search failed: %v", err)
		if o.metrics != nil {
			o.metrics.RetrievalErrors.Inc()
		}
		results = nil
	}

	if len(results) == 0 {
		return Answer{Answer: NoResultsMessage, Sources: []SearchResult{}}, nil
	}

	prompt := BuildPrompt(question, BuildContext(results))
	answer, err := o.generator.ChatCompletion(ctx, prompt, opts.Temperature, opts.MaxTokens)
	if err != nil {
		// The error text becomes the visible answer; there is no separate
		// status channel in this design.
		o.logger.Printf("generation failed: %v", err)
		if o.metrics != nil {
			o.metrics.GenerationErrors.Inc()
		}
		answer = fmt.Sprintf("Erreur lors de la génération: %v", err)
	}

	return Answer{Answer: answer, Sources: results}, nil
}
