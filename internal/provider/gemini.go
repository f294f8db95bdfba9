package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// GeminiClient calls the Gemini generateContent REST API. Every request goes
// through a circuit breaker: once the provider has failed often enough the
// breaker opens and calls fail fast, which the generation layer turns into
// fallback data without waiting on a dead upstream.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	breaker    *gobreaker.CircuitBreaker[string]
}

type GeminiOption func(*GeminiClient)

// WithHTTPClient overrides the HTTP client, used by tests to point at a stub
// server.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.httpClient = c }
}

func NewGeminiClient(endpoint, apiKey, model string, opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
	}

	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "generation-provider",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiClient) Name() string { return "gemini" }

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate runs one prompt through the breaker and returns the raw text of
// the first candidate.
func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		return g.doGenerate(ctx, prompt)
	})
}

func (g *GeminiClient) doGenerate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.2,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal provider request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("provider error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("provider returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON trims markdown code fences some models wrap around otherwise
// valid JSON output.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func (g *GeminiClient) Analyze(ctx context.Context, resumeText string) (*AnalysisResult, error) {
	text, err := g.generate(ctx, analyzePrompt(resumeText))
	if err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return nil, fmt.Errorf("provider returned malformed analysis: %w", err)
	}
	result.Score = clampScore(result.Score)
	result.ATSCompatibility = clampScore(result.ATSCompatibility)

	return &result, nil
}

func (g *GeminiClient) Enhance(ctx context.Context, resumeText, targetRole, targetIndustry string) (string, error) {
	text, err := g.generate(ctx, enhancePrompt(resumeText, targetRole, targetIndustry))
	if err != nil {
		return "", err
	}

	var result struct {
		EnhancedText string `json:"enhanced_text"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return "", fmt.Errorf("provider returned malformed enhancement: %w", err)
	}
	if strings.TrimSpace(result.EnhancedText) == "" {
		return "", fmt.Errorf("provider returned empty enhancement")
	}

	return result.EnhancedText, nil
}

func (g *GeminiClient) Match(ctx context.Context, resumeText string, req MatchRequest) (*MatchResult, error) {
	text, err := g.generate(ctx, matchPrompt(resumeText, req))
	if err != nil {
		return nil, err
	}

	var result MatchResult
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return nil, fmt.Errorf("provider returned malformed match result: %w", err)
	}
	result.MatchScore = clampScore(result.MatchScore)

	return &result, nil
}
