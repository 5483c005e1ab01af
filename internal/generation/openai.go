package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	personaSystemPrompt = "You are an expert at creating realistic test personas for AI agent evaluation. Always respond with valid JSON."
	goalSystemPrompt    = "You are an expert at creating test scenarios for AI agent evaluation. Always respond with valid JSON."
)

var ErrNotConfigured = errors.New("generation is not configured: missing API key")

// OpenAIClient implements Generator against an OpenAI-compatible
// chat-completions API.
type OpenAIClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

var _ Generator = (*OpenAIClient)(nil)

func NewOpenAIClient(endpoint, apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{},
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var system, prompt string
	switch req.Kind {
	case KindGoal:
		system = goalSystemPrompt
		prompt = goalPrompt(req.Requirements)
	default:
		system = personaSystemPrompt
		prompt = personaPrompt(req.Requirements)
	}

	content, err := c.chat(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	payload := extractJSONObject(content)
	if payload == nil {
		// Model ignored the JSON instruction; keep the raw text rather
		// than failing the whole job.
		payload = fallbackPayload(req, content)
	}
	payload["id"] = uuid.New().String()
	payload["created_at"] = time.Now().UTC().Format(time.RFC3339)
	return payload, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) chat(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completion failed: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(reply.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return reply.Choices[0].Message.Content, nil
}

func personaPrompt(requirements string) string {
	return fmt.Sprintf(`Generate a persona for agent testing based on this request:

%q

Create a realistic persona with:
1. Name (realistic, professional)
2. Background (2-3 sentences describing experience, skills, personality)

Format your response as JSON:
{
  "name": "...",
  "background": "..."
}
`, requirements)
}

func goalPrompt(requirements string) string {
	return fmt.Sprintf(`Generate a test goal based on this request:

%q

Create a realistic goal with:
1. Name (concise)
2. Objective (what should be achieved)
3. Success criteria (how to measure success)
4. Initial prompt (starting message for the conversation)
5. Max turns (reasonable number, typically 5-15)

Format your response as JSON:
{
  "name": "...",
  "objective": "...",
  "success_criteria": "...",
  "initial_prompt": "...",
  "max_turns": 10
}
`, requirements)
}

// extractJSONObject pulls the first top-level JSON object out of the
// model's reply, tolerating surrounding prose and code fences.
func extractJSONObject(content string) map[string]any {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil
	}
	return payload
}

func fallbackPayload(req Request, content string) map[string]any {
	if req.Kind == KindGoal {
		return map[string]any{
			"name":             "Generated Goal",
			"objective":        content,
			"success_criteria": "Goal completed successfully",
			"initial_prompt":   req.Requirements,
			"max_turns":        10,
		}
	}
	return map[string]any{
		"name":       "Generated Persona",
		"background": content,
	}
}
