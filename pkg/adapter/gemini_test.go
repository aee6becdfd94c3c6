package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engramhq/engram/pkg/adapter"
)

func TestGeminiEmbed(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT not set, skipping integration test")
	}
	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		location = "us-central1"
	}

	ctx := context.Background()
	embedder, err := adapter.NewGemini(ctx, projectID, location)
	gt.NoError(t, err)

	vector, err := embedder.Embed(ctx, "hello from the embedding test")
	gt.NoError(t, err)
	gt.A(t, vector).Longer(0)
}
