package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/engramhq/engram/pkg/model"
)

// GeminiClient provides the text -> vector contract via the Gemini embedding
// API on Vertex AI.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
}

type GeminiOption func(*GeminiClient)

func WithEmbeddingModel(embeddingModel string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = embeddingModel
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:         client,
		embeddingModel: "gemini-embedding-001",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content", goerr.T(model.TagIndex))
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("embedding response is empty", goerr.T(model.TagIndex))
	}

	return resp.Embeddings[0].Values, nil
}
