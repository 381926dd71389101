package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/parisxmas/oxiforms/internal/models"
)

const (
	enhanceMaxTokens   = 1024
	suggestMaxTokens   = 800
	sentimentMaxTokens = 400

	// MaxSuggestions bounds the alternatives returned by Suggest.
	MaxSuggestions = 3
)

// EnhanceOptions steers a rewrite. Zero values fall back to professional/moderate.
type EnhanceOptions struct {
	Tone         models.Tone
	Length       models.Length
	CustomPrompt string
}

// Sentiment is the classification returned by AnalyzeSentiment.
type Sentiment struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// Enhancer builds prompts and post-processes replies for a Provider.
type Enhancer struct {
	provider Provider
}

func NewEnhancer(p Provider) *Enhancer {
	if p == nil {
		p = Disabled{}
	}
	return &Enhancer{provider: p}
}

// Enabled reports whether a real provider is configured.
func (e *Enhancer) Enabled() bool {
	_, disabled := e.provider.(Disabled)
	return !disabled
}

func (e *Enhancer) Provider() string { return e.provider.Name() }

// Enhance rewrites text per opts and returns the model output unmodified.
func (e *Enhancer) Enhance(ctx context.Context, text string, opts EnhanceOptions) (string, error) {
	system, user := enhancePrompt(text, opts)
	return e.provider.Complete(ctx, system, user, enhanceMaxTokens)
}

// Suggest returns up to MaxSuggestions alternative phrasings of text.
func (e *Enhancer) Suggest(ctx context.Context, text, hint string) ([]string, error) {
	system, user := suggestPrompt(text, hint)
	out, err := e.provider.Complete(ctx, system, user, suggestMaxTokens)
	if err != nil {
		return nil, err
	}
	return splitSuggestions(out), nil
}

// AnalyzeSentiment classifies text as positive, negative or neutral.
func (e *Enhancer) AnalyzeSentiment(ctx context.Context, text string) (*Sentiment, error) {
	out, err := e.provider.Complete(ctx, sentimentSystem, text, sentimentMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseSentiment(out)
}

const (
	suggestSystem   = `Generate 3 alternative versions of the given text, each with a different approach or style. Return only the alternatives, one per line.`
	sentimentSystem = `You're a sentiment analysis AI. Output JSON with keys: "sentiment" (positive|negative|neutral) and "confidence" (0..1).`
)

func enhancePrompt(text string, opts EnhanceOptions) (string, string) {
	tone := opts.Tone
	if tone == "" {
		tone = models.ToneProfessional
	}
	length := opts.Length
	if length == "" {
		length = models.LengthModerate
	}
	system := fmt.Sprintf(`You are an expert editor. Improve clarity, tone (%s), and length (%s). Output ONLY the rewritten text.`,
		strconv.Quote(string(tone)), strconv.Quote(string(length)))

	var b strings.Builder
	if opts.CustomPrompt != "" {
		b.WriteString("Guidance: ")
		b.WriteString(opts.CustomPrompt)
		b.WriteString("\n\n")
	}
	b.WriteString("Original:\n")
	b.WriteString(text)
	return system, b.String()
}

func suggestPrompt(text, hint string) (string, string) {
	if hint != "" {
		return suggestSystem, "Context: " + hint + "\n\nText to rewrite: " + text
	}
	return suggestSystem, "Text to rewrite: " + text
}

func splitSuggestions(body string) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func parseSentiment(body string) (*Sentiment, error) {
	body = strings.TrimSpace(body)
	// Models sometimes wrap the object in prose or a code fence.
	if i, j := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}'); i >= 0 && j > i {
		body = body[i : j+1]
	}
	var raw struct {
		Sentiment  string          `json:"sentiment"`
		Confidence json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: sentiment reply is not JSON: %v", ErrProvider, err)
	}
	return &Sentiment{
		Sentiment:  normalizeLabel(raw.Sentiment),
		Confidence: clamp01(parseConfidence(raw.Confidence)),
	}, nil
}

func normalizeLabel(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "positive", "negative", "neutral":
		return s
	}
	return "neutral"
}

func parseConfidence(raw json.RawMessage) float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func clamp01(f float64) float64 {
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	}
	return f
}
