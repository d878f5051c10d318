package fortune

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-3-flash-preview"
	defaultTimeout = 30 * time.Second

	// FallbackText is shown when the model answered without readable text
	FallbackText = "AI가 응답을 생성했지만 내용을 읽을 수 없습니다."

	systemInstruction = "You are a professional Korean fortune teller (Myeong-ri-hak expert). Provide encouraging and helpful daily fortunes."
)

var (
	// ErrMissingCredential is returned when no API key is configured
	ErrMissingCredential = errors.New("fortune api key is not configured")
	// ErrInvalidCredential is returned when the API rejects the key
	ErrInvalidCredential = errors.New("fortune api key was rejected")
	// ErrQuotaExceeded is returned when the API rate limit or quota is hit
	ErrQuotaExceeded = errors.New("fortune api quota exceeded")
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("fortune api returned no text")
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches daily fortune texts from the Gemini generateContent API
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient httpDoer
	logger     *zap.Logger
}

// NewClient creates a new Client. Empty baseURL or model select the defaults.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetHTTPClient overrides the HTTP client
func (c *Client) SetHTTPClient(client httpDoer) {
	c.httpClient = client
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"topK"`
	TopP        float64 `json:"topP"`
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// DailyFortune asks for the fortune of targetDate for someone born on birthDate.
// birthTime may be empty.
func (c *Client) DailyFortune(ctx context.Context, birthDate, birthTime, targetDate string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemInstruction}}},
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPrompt(birthDate, birthTime, targetDate)}},
		}},
		GenerationConfig: generationConfig{Temperature: 0.8, TopK: 64, TopP: 0.95},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	c.logger.Debug("Requesting daily fortune",
		zap.String("model", c.model),
		zap.String("target_date", targetDate))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call fortune api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read fortune response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", classifyError(resp.StatusCode, data)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse fortune response: %w", err)
	}

	var text strings.Builder
	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Info("Daily fortune received",
		zap.String("target_date", targetDate),
		zap.Int("length", len(out)))

	return out, nil
}

func classifyError(status int, body []byte) error {
	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrInvalidCredential, msg)
	case status == http.StatusBadRequest && strings.Contains(msg, "API key"):
		return fmt.Errorf("%w: %s", ErrInvalidCredential, msg)
	case status == http.StatusTooManyRequests || apiErr.Error.Status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	default:
		return fmt.Errorf("fortune api returned status %d: %s", status, msg)
	}
}

func buildPrompt(birthDate, birthTime, targetDate string) string {
	if strings.TrimSpace(birthTime) == "" {
		birthTime = "모름"
	}

	var b strings.Builder
	b.WriteString("당신은 유능한 명리학자이자 운세 상담가입니다.\n")
	fmt.Fprintf(&b, "사용자의 생년월일(%s)과 태어난 시간(%s), 그리고 오늘의 날짜(%s)를 바탕으로 ", birthDate, birthTime, targetDate)
	b.WriteString("한국어로 친절하고 희망적인 오늘의 운세를 작성해주세요.\n")
	b.WriteString("운세는 [총운], [금전운], [연애운], [건강운] 4가지 섹션으로 나누고, 각 섹션은 1-2문장으로 간략하게 작성하세요.\n")
	b.WriteString("마지막에는 오늘의 행운의 색과 행운의 숫자를 추천해주세요.")
	return b.String()
}
