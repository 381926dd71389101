package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/oxiforms/internal/models"
)

type fakeProvider struct {
	reply     string
	err       error
	system    string
	user      string
	maxTokens int
}

func (f *fakeProvider) Complete(_ context.Context, system, user string, maxTokens int) (string, error) {
	f.system, f.user, f.maxTokens = system, user, maxTokens
	return f.reply, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func TestEnhancePrompt(t *testing.T) {
	p := &fakeProvider{reply: "Polished text"}
	e := NewEnhancer(p)

	out, err := e.Enhance(context.Background(), "ok product", EnhanceOptions{
		Tone:         models.ToneCasual,
		Length:       models.LengthConcise,
		CustomPrompt: "keep it short",
	})
	require.NoError(t, err)
	assert.Equal(t, "Polished text", out)
	assert.Equal(t, `You are an expert editor. Improve clarity, tone ("casual"), and length ("concise"). Output ONLY the rewritten text.`, p.system)
	assert.Equal(t, "Guidance: keep it short\n\nOriginal:\nok product", p.user)
	assert.Equal(t, 1024, p.maxTokens)
}

func TestEnhanceDefaults(t *testing.T) {
	p := &fakeProvider{reply: "x"}
	_, err := NewEnhancer(p).Enhance(context.Background(), "hello", EnhanceOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.system, `tone ("professional")`)
	assert.Contains(t, p.system, `length ("moderate")`)
	assert.Equal(t, "Original:\nhello", p.user)
}

func TestSuggestCapsAtThree(t *testing.T) {
	p := &fakeProvider{reply: "one\n\n  two  \nthree\nfour\nfive\n"}
	out, err := NewEnhancer(p).Suggest(context.Background(), "text", "ctx")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, out)
	assert.Equal(t, "Context: ctx\n\nText to rewrite: text", p.user)
	assert.Equal(t, 800, p.maxTokens)
}

func TestSuggestFewerLines(t *testing.T) {
	p := &fakeProvider{reply: "only one"}
	out, err := NewEnhancer(p).Suggest(context.Background(), "text", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, out)
	assert.Equal(t, "Text to rewrite: text", p.user)
}

func TestAnalyzeSentiment(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  Sentiment
	}{
		{"plain", `{"sentiment":"positive","confidence":0.9}`, Sentiment{"positive", 0.9}},
		{"clamped high", `{"sentiment":"negative","confidence":3}`, Sentiment{"negative", 1}},
		{"clamped low", `{"sentiment":"neutral","confidence":-2}`, Sentiment{"neutral", 0}},
		{"string confidence", `{"sentiment":"neutral","confidence":"0.5"}`, Sentiment{"neutral", 0.5}},
		{"bad confidence", `{"sentiment":"neutral","confidence":"high"}`, Sentiment{"neutral", 0}},
		{"label normalised", `{"sentiment":" Positive ","confidence":0.4}`, Sentiment{"positive", 0.4}},
		{"unknown label", `{"sentiment":"mixed","confidence":0.4}`, Sentiment{"neutral", 0.4}},
		{"fenced", "```json\n{\"sentiment\":\"positive\",\"confidence\":0.7}\n```", Sentiment{"positive", 0.7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{reply: tc.reply}
			got, err := NewEnhancer(p).AnalyzeSentiment(context.Background(), "great")
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
			assert.Equal(t, 400, p.maxTokens)
		})
	}
}

func TestAnalyzeSentimentNotJSON(t *testing.T) {
	p := &fakeProvider{reply: "I think it is positive"}
	_, err := NewEnhancer(p).AnalyzeSentiment(context.Background(), "great")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)
	e := NewEnhancer(p)
	assert.False(t, e.Enabled())

	_, err = e.Enhance(context.Background(), "x", EnhanceOptions{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = e.Suggest(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "nope"})
	assert.Error(t, err)
}

func TestAnthropicClientComplete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"rewritten"}],"usage":{"input_tokens":3,"output_tokens":1}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	out, err := c.Complete(context.Background(), "sys", "usr", 55)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", out)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 55, got.MaxTokens)
	assert.Equal(t, "sys", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[0].Content)
}

func TestAnthropicClientNonTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	}))
	defer srv.Close()

	out, err := NewAnthropicClient(AnthropicConfig{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), "", "u", 10)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAnthropicClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicClient(AnthropicConfig{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), "", "u", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProvider))
	assert.Contains(t, err.Error(), "slow down")
}

func TestGeminiClientComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"rewritten"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: srv.URL, Model: "gemini-test"})
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), "sys", "usr", 55)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", out)
	assert.Contains(t, got, "systemInstruction")
	assert.Contains(t, got, "generationConfig")
}

func TestGeminiClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	p, err := NewProvider(context.Background(), Config{
		Provider:      "gemini",
		GeminiAPIKey:  "g-key",
		GeminiBaseURL: srv.URL,
		Timeout:       50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.IsType(t, &GeminiClient{}, p)

	start := time.Now()
	_, err = p.Complete(context.Background(), "", "u", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGeminiClientNeedsKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
