package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/propwatch/rentroll-risk/internal/domain/analysis"
	"github.com/propwatch/rentroll-risk/internal/infra/ai/prompt"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o"
	defaultSearchModel = "gpt-4o-search-preview"

	searchMaxTokens = 2048
)

// Client adapts the OpenAI API to the analysis ports: web-search enrichment,
// file upload, and the file-augmented structured completion. Read-only after
// construction, safe for concurrent reuse across requests.
type Client struct {
	api         *openai.Client
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	searchModel string
}

func NewClient(apiKey, model, searchModel string) *Client {
	return NewClientWithBaseURL(apiKey, model, searchModel, defaultBaseURL)
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(apiKey, model, searchModel, baseURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	if searchModel == "" {
		searchModel = defaultSearchModel
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		httpClient:  &http.Client{},
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		searchModel: searchModel,
	}
}

// GatherContext runs one structured completion against the search-capable
// model. A single failed attempt is terminal; the orchestrator decides what
// that means for the request.
func (c *Client) GatherContext(ctx context.Context, req domain.AnalysisRequest) (*domain.MacroeconomicContext, error) {
	location := prompt.SearchLocationString(req)

	chatReq := openai.ChatCompletionRequest{
		Model: c.searchModel,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSearchSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.BuildSearchQuery(location)},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.searchModel) {
		chatReq.MaxCompletionTokens = searchMaxTokens
	} else {
		chatReq.MaxTokens = searchMaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("search completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("search completion returned no choices")
	}

	var macro domain.MacroeconomicContext
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &macro); err != nil {
		return nil, fmt.Errorf("failed to parse macroeconomic search results: %w", err)
	}
	return &macro, nil
}

// UploadDocument pushes the raw file to the provider Files endpoint and
// returns the opaque file id. No retry; any failure is terminal for the
// analysis.
func (c *Client) UploadDocument(ctx context.Context, doc domain.DocumentFile) (string, error) {
	f, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    doc.Name,
		Bytes:   doc.Data,
		Purpose: openai.PurposeType("user_data"),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &domain.UploadError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return "", &domain.UploadError{Body: err.Error()}
	}
	if f.ID == "" {
		return "", domain.ErrMissingFileID
	}
	return f.ID, nil
}

// Request body for the file-augmented completion. Built by hand because the
// pinned SDK does not model file content parts in chat messages; everything
// else about the call matches the provider's chat completions contract.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	File *filePart `json:"file,omitempty"`
}

type filePart struct {
	FileID string `json:"file_id"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeDocument runs the structured rent-roll completion referencing the
// uploaded file by id and validates the payload against the response schema.
func (c *Client) AnalyzeDocument(ctx context.Context, req domain.AnalysisRequest, macro *domain.MacroeconomicContext, fileID string) (*domain.AnalysisResponse, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.GetSystemPrompt()},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: prompt.BuildAnalysisPrompt(req, macro)},
				{Type: "file", File: &filePart{FileID: fileID}},
			}},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("completion failed: status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chat chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chat); err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	if len(chat.Choices) == 0 {
		return nil, &domain.ParseError{Err: fmt.Errorf("completion returned no choices")}
	}

	var analysis domain.AnalysisResponse
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &analysis); err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	if err := analysis.Validate(); err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	return &analysis, nil
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5")
}
