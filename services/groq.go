package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const outfitSystemPrompt = "You are a JSON-output-only assistant that suggests outfits."

// Groq occasionally decommissions models; rotate through these when the
// configured one reports model_decommissioned.
var fallbackModels = []string{
	"llama-3.1-8b-instant",
	"llama-3.1-70b-versatile",
	"mixtral-8x7b-32768",
}

// Only a quick local retry keeps the UI responsive; anything longer is
// surfaced to the user with a retry hint.
const maxLocalRetryAfterSeconds = 6

var retryAfterMessageRegex = regexp.MustCompile(`(?i)try again in\s+([0-9]*\.?[0-9]+)s`)

// LLMError is the structured descriptor for every generation-client failure:
// missing key, auth, rate limit, transport, unparsable reply. The client never
// panics or returns a bare error; callers branch on Code.
type LLMError struct {
	Message    string
	Code       string
	RetryAfter *float64
}

func (e *LLMError) Error() string {
	return e.Message
}

// GenerationCandidate is the untrusted object the model returned. Outfit
// entries stay raw until the validator inspects them one by one.
type GenerationCandidate struct {
	HasOutfit   bool
	Outfit      []json.RawMessage
	Explanation *string
	Score       *float64
}

// OutfitLLMProvider is the narrow seam the retry controller calls; the real
// implementation is GroqClient, tests plug in a scripted one.
type OutfitLLMProvider interface {
	GenerateOutfitCandidate(ctx context.Context, prompt string, temperature float64) (*GenerationCandidate, *LLMError)
}

// GroqClient speaks Groq's OpenAI-compatible chat-completions endpoint.
type GroqClient struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client

	// injected so rate-limit tests don't actually sleep
	Sleep func(d time.Duration)
}

func NewGroqClientFromEnv() *GroqClient {
	return &GroqClient{
		APIKey:     GetEnv("GROQ_API_KEY", ""),
		BaseURL:    GetEnv("GROQ_API_URL", "https://api.groq.com"),
		Model:      GetEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		MaxTokens:  350,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Sleep:      time.Sleep,
	}
}

// ResolveChatCompletionsURL accepts either the bare API base
// (https://api.groq.com) or an already-complete chat-completions endpoint and
// always returns the full endpoint URL.
func ResolveChatCompletionsURL(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		trimmed = "https://api.groq.com"
	}
	if strings.HasSuffix(trimmed, "/openai/v1/chat/completions") || strings.HasSuffix(trimmed, "/v1/chat/completions") {
		return trimmed
	}
	if strings.HasSuffix(trimmed, "/openai/v1") || strings.HasSuffix(trimmed, "/v1") {
		return trimmed + "/chat/completions"
	}
	return trimmed + "/openai/v1/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// providerErrorBody covers both {"error":{"code","message"}} and flat
// {"code","message"} provider error payloads.
type providerErrorBody struct {
	ErrorObj *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (b providerErrorBody) code() string {
	if b.ErrorObj != nil && b.ErrorObj.Code != "" {
		return b.ErrorObj.Code
	}
	return b.Code
}

func (b providerErrorBody) message() string {
	if b.ErrorObj != nil && b.ErrorObj.Message != "" {
		return b.ErrorObj.Message
	}
	return b.Message
}

func parseProviderErrorBody(body []byte) providerErrorBody {
	var parsed providerErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed = providerErrorBody{Message: string(body)}
	}
	return parsed
}

// extractRetryAfterSeconds prefers the standard Retry-After header and falls
// back to parsing "Please try again in 4.2s." out of the provider message.
func extractRetryAfterSeconds(resp *http.Response, errBody providerErrorBody) *float64 {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.ParseFloat(header, 64); err == nil {
			return &seconds
		}
	}
	if match := retryAfterMessageRegex.FindStringSubmatch(errBody.message()); len(match) == 2 {
		if seconds, err := strconv.ParseFloat(match[1], 64); err == nil {
			return &seconds
		}
	}
	return nil
}

// GenerateOutfitCandidate sends one generation request, rotating through
// fallback models on decommission errors and retrying once locally on short
// rate limits. Every failure path resolves to a structured *LLMError.
func (c *GroqClient) GenerateOutfitCandidate(ctx context.Context, prompt string, temperature float64) (*GenerationCandidate, *LLMError) {
	if c.APIKey == "" {
		return nil, &LLMError{Message: "GROQ_API_KEY not set"}
	}

	endpoint := ResolveChatCompletionsURL(c.BaseURL)

	candidateModels := []string{c.Model}
	for _, model := range fallbackModels {
		known := false
		for _, existing := range candidateModels {
			if existing == model {
				known = true
				break
			}
		}
		if !known {
			candidateModels = append(candidateModels, model)
		}
	}

	maxTokens := c.MaxTokens
	if maxTokens == 0 {
		maxTokens = 350
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	var lastError *LLMError
	for _, modelName := range candidateModels {
		requestBody := chatCompletionRequest{
			Model: modelName,
			Messages: []chatMessage{
				{Role: "system", Content: outfitSystemPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, &LLMError{Message: fmt.Sprintf("LLM request failed: %v", err)}
		}

		var resp *http.Response
		var body []byte
		for attempt := 0; attempt < 2; attempt++ {
			req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(encoded))
			if err != nil {
				return nil, &LLMError{Message: fmt.Sprintf("LLM request failed: %v", err)}
			}
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
			req.Header.Set("Content-Type", "application/json")

			resp, err = httpClient.Do(req)
			if err != nil {
				return nil, &LLMError{Message: fmt.Sprintf("LLM request failed: %v", err)}
			}
			body, err = io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, &LLMError{Message: fmt.Sprintf("LLM request failed: %v", err)}
			}

			if resp.StatusCode != http.StatusTooManyRequests {
				break
			}
			retryAfter := extractRetryAfterSeconds(resp, parseProviderErrorBody(body))
			if attempt == 0 && retryAfter != nil && *retryAfter <= maxLocalRetryAfterSeconds {
				wait := *retryAfter
				if wait < 0 {
					wait = 0
				}
				fmt.Printf("[Groq] Rate limited on %s, retrying in %.1fs\n", modelName, wait)
				sleep(time.Duration((wait + 0.3) * float64(time.Second)))
				continue
			}
			break
		}

		if resp.StatusCode >= 400 {
			errBody := parseProviderErrorBody(body)

			if resp.StatusCode == http.StatusTooManyRequests {
				retryAfter := extractRetryAfterSeconds(resp, errBody)
				waitHint := ""
				if retryAfter != nil {
					waitHint = fmt.Sprintf(" Please wait ~%.0fs and try again.", *retryAfter)
				}
				return nil, &LLMError{
					Message:    "Groq is rate limiting requests right now (token limit)." + waitHint,
					Code:       "rate_limit_exceeded",
					RetryAfter: retryAfter,
				}
			}

			if resp.StatusCode == http.StatusUnauthorized {
				if errBody.code() == "invalid_api_key" || strings.Contains(strings.ToLower(errBody.message()), "invalid api key") {
					return nil, &LLMError{Message: "Invalid GROQ_API_KEY. Set a valid Groq API key in the GROQ_API_KEY environment variable and restart the app."}
				}
				return nil, &LLMError{Message: "Unauthorized to call Groq API (401). Check GROQ_API_KEY and restart the app."}
			}

			if resp.StatusCode == http.StatusBadRequest && errBody.code() == "model_decommissioned" {
				fmt.Printf("[Groq] Model %s decommissioned, trying next fallback\n", modelName)
				lastError = &LLMError{Message: fmt.Sprintf("Groq API 400: %s", string(body))}
				continue
			}

			sentry.CaptureException(fmt.Errorf("groq API %d: %s", resp.StatusCode, string(body)))
			return nil, &LLMError{Message: fmt.Sprintf("Groq API %d: %s", resp.StatusCode, string(body))}
		}

		var completion chatCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			return nil, &LLMError{Message: "LLM returned unexpected structure"}
		}
		if len(completion.Choices) == 0 {
			return nil, &LLMError{Message: "LLM returned unexpected structure"}
		}
		content := completion.Choices[0].Message.Content
		if content == "" {
			content = completion.Choices[0].Text
		}
		if content == "" {
			return nil, &LLMError{Message: "LLM returned unexpected structure"}
		}
		return ParseCandidateText(content)
	}

	if lastError != nil {
		return nil, lastError
	}
	return nil, &LLMError{Message: "Groq API request failed"}
}

// stripCodeFences removes surrounding ``` markers and an optional leading
// "json" language tag; models wrap JSON like that even when told not to.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.Trim(trimmed, "`")
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "json"))
	return trimmed
}

// ParseCandidateText normalizes the raw reply into a GenerationCandidate or a
// structured error. Handles fenced JSON and junk around the object; a JSON
// body carrying an "error" key becomes an LLMError so validation propagates it
// as llm_error.
func ParseCandidateText(text string) (*GenerationCandidate, *LLMError) {
	cleaned := stripCodeFences(text)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end == -1 || end <= start {
			return nil, &LLMError{Message: fmt.Sprintf("LLM request failed: parse error: %v", err)}
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
			return nil, &LLMError{Message: fmt.Sprintf("LLM request failed: parse error: %v", err)}
		}
	}

	if rawErr, ok := payload["error"]; ok {
		var message string
		if err := json.Unmarshal(rawErr, &message); err != nil {
			message = string(rawErr)
		}
		return nil, &LLMError{Message: message}
	}

	candidate := &GenerationCandidate{}
	if rawOutfit, ok := payload["outfit"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(rawOutfit, &entries); err == nil {
			candidate.HasOutfit = true
			candidate.Outfit = entries
		}
	}
	if rawExplanation, ok := payload["explanation"]; ok {
		var explanation string
		if err := json.Unmarshal(rawExplanation, &explanation); err == nil {
			candidate.Explanation = &explanation
		}
	}
	if rawScore, ok := payload["score"]; ok {
		var score float64
		if err := json.Unmarshal(rawScore, &score); err == nil {
			candidate.Score = &score
		}
	}
	return candidate, nil
}
