package openai_provider

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbenkhaled/telerag/config"
)

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		APIKey:              "test-key",
		BaseURL:             baseURL,
		ChatModel:           "llama-3.3-70b-versatile",
		EmbeddingModel:      "test-embedding",
		EmbeddingDimensions: 3,
		Timeout:             5 * time.Second,
	}
}

func TestChatCompletion(t *testing.T) {
	var captured request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "la réponse"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	out, err := c.ChatCompletion(context.Background(), "le prompt", 0.7, 500)
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if out != "la réponse" {
		t.Errorf("unexpected output: %q", out)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", captured.Messages)
	}
	if captured.Messages[0].Content != "le prompt" {
		t.Errorf("prompt not passed verbatim: %q", captured.Messages[0].Content)
	}
	if captured.Temperature != 0.7 || captured.MaxTokens != 500 {
		t.Errorf("options not forwarded: temp=%v max=%d", captured.Temperature, captured.MaxTokens)
	}
}

func TestChatCompletionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	if _, err := c.ChatCompletion(context.Background(), "q", 0.7, 100); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestCreateEmbeddingNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"object": "embedding", "embedding": []float32{3, 4}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	vecs, err := c.CreateEmbedding(context.Background(), []string{"bonjour"})
	if err != nil {
		t.Fatalf("CreateEmbedding: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vecs))
	}
	var sum float64
	for _, f := range vecs[0] {
		sum += float64(f) * float64(f)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-6 {
		t.Errorf("vector not unit length: %v", vecs[0])
	}
}

func TestCreateEmbeddingEmptyInput(t *testing.T) {
	c := NewClient(testConfig("http://unused"))
	vecs, err := c.CreateEmbedding(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreateEmbedding: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil for empty input, got %v", vecs)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	v := normalize([]float32{0, 0, 0})
	for _, f := range v {
		if f != 0 {
			t.Fatalf("zero vector changed: %v", v)
		}
	}
}
