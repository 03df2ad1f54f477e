// Package providers registers the OpenAI-compatible chat-completion providers:
// LM Studio, Ollama and OpenAI (or OpenRouter). Import it for side effects.
package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/c360studio/semfibo/llm"
)

const chatCompletionsPath = "/chat/completions"

// Compatible speaks the OpenAI chat-completions wire format. The providers
// differ only in default URL and authentication.
type Compatible struct {
	name       string
	defaultURL string

	// apiKeyEnv names the environment variable holding a bearer token.
	apiKeyEnv string
}

// LMStudio returns the LM Studio provider.
func LMStudio() *Compatible {
	return &Compatible{name: "lmstudio", defaultURL: "http://localhost:1234/v1", apiKeyEnv: "LMSTUDIO_API_KEY"}
}

// Ollama returns the Ollama provider. It also fits vLLM and other servers
// exposing the OpenAI API.
func Ollama() *Compatible {
	return &Compatible{name: "ollama", defaultURL: "http://localhost:11434/v1", apiKeyEnv: "OPENAI_API_KEY"}
}

// OpenAI returns the OpenAI provider, usable with OpenRouter through the
// OPENROUTER_* variables.
func OpenAI() *Compatible {
	return &Compatible{name: "openai", defaultURL: "https://api.openai.com/v1", apiKeyEnv: "OPENAI_API_KEY"}
}

func init() {
	llm.RegisterProvider(LMStudio())
	llm.RegisterProvider(Ollama())
	llm.RegisterProvider(OpenAI())
}

// Name returns the provider identifier.
func (p *Compatible) Name() string {
	return p.name
}

// BuildURL constructs the chat completions endpoint.
func (p *Compatible) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = p.defaultURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, chatCompletionsPath) {
		return baseURL
	}
	return baseURL + chatCompletionsPath
}

// SetHeaders adds the bearer token and OpenRouter attribution headers when
// configured.
func (p *Compatible) SetHeaders(req *http.Request) {
	if apiKey := os.Getenv(p.apiKeyEnv); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	if p.name != "openai" {
		return
	}
	if siteURL := os.Getenv("OPENROUTER_SITE_URL"); siteURL != "" {
		req.Header.Set("HTTP-Referer", siteURL)
	}
	if siteName := os.Getenv("OPENROUTER_SITE_NAME"); siteName != "" {
		req.Header.Set("X-Title", siteName)
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// BuildRequestBody creates the request body. A nil temperature and zero
// maxTokens are omitted so the server defaults apply.
func (p *Compatible) BuildRequestBody(model string, messages []llm.Message, temperature *float64, maxTokens int) ([]byte, error) {
	req := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}
	if maxTokens > 0 {
		req.MaxTokens = &maxTokens
	}
	return json.Marshal(req)
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage llm.TokenUsage `json:"usage"`
}

// ParseResponse extracts the first choice.
func (p *Compatible) ParseResponse(body []byte, model string) (*llm.Response, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	if resp.Model == "" {
		resp.Model = model
	}
	return &llm.Response{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		Usage:        resp.Usage,
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}
