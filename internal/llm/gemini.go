package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// systemInstruction frames every completion request.
const systemInstruction = "You are a helpful financial assistant analyzing expense data. " +
	"Use the provided context to answer questions about income, expenses, and spending patterns. " +
	"Be concise and specific with numbers. If asked about comparisons, calculate differences and percentages."

// GeminiClient implements Embedder, Generator and Pinger on top of the
// Gemini API. Credentials come from the environment (GEMINI_API_KEY or
// application default credentials), matching the genai client defaults.
type GeminiClient struct {
	client          *genai.Client
	embeddingModel  string
	generationModel string
}

// NewGeminiClient builds a client for the given embedding and generation
// model names.
func NewGeminiClient(ctx context.Context, embeddingModel, generationModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiClient{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}, nil
}

// Embed returns the embedding vector for a piece of text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embedding content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding model %s returned no values", c.embeddingModel)
	}
	return resp.Embeddings[0].Values, nil
}

// Complete sends the assembled context and the question to the generation
// model and returns the answer text.
func (c *GeminiClient) Complete(ctx context.Context, contextText, question string) (string, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.generationModel, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	answer := resp.Text()
	if answer == "" {
		return "", fmt.Errorf("generation model %s returned an empty response", c.generationModel)
	}
	return answer, nil
}

// Ping verifies connectivity with a minimal embedding request.
func (c *GeminiClient) Ping(ctx context.Context) error {
	_, err := c.Embed(ctx, "ping")
	return err
}
