// Package generation turns a free-text craving query into a structured
// Insight by calling an OpenAI-compatible chat completions endpoint.
// Exactly one call is made per query; failures are reported as a typed
// Failure and replaced by a fallback Insight so callers never see an error.
package generation

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/pageza/crave-decoder/config"
	"github.com/pageza/crave-decoder/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const systemPrompt = "You are an empathetic nutrition and wellbeing coach. You always answer with a single valid JSON object and nothing else."

// temperature is fixed for every insight request.
const temperature = 0.8

// maxErrorBody bounds how much of a non-2xx body is kept on a Failure.
const maxErrorBody = 512

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generator calls the text-generation provider.
type Generator struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// New creates a Generator from cfg. A nil client gets one with cfg.HTTPTimeout.
func New(cfg config.Config, client *http.Client) *Generator {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Generator{
		endpoint: cfg.LLMEndpoint,
		apiKey:   cfg.LLMAPIKey,
		model:    cfg.LLMModel,
		client:   client,
	}
}

// Outcome is the result of Interpret. Failure is nil on success; otherwise
// Insight holds the fallback.
type Outcome struct {
	Insight Insight
	Failure *Failure
}

// OK reports whether the model produced the insight.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// BuildPrompt embeds the query verbatim in the fixed instruction.
func BuildPrompt(query string) string {
	return "A person described what they are craving and how they feel: \"" + query + "\". " +
		"Interpret the craving and respond ONLY with strictly valid JSON containing these keys: " +
		"\"craving\" (the food or thing they crave, in a few words), " +
		"\"insight\" (2-3 sentences on what the craving may reveal about their emotional or physical state), " +
		"\"suggestion\" (one practical, kind suggestion), " +
		"\"craving_type\" (exactly one of \"emotional\", \"psychological\" or \"physical\"), " +
		"and \"recipe_suggestion\" (the name of one real dish that satisfies the craving in a healthier way). " +
		"Do not wrap the JSON in markdown."
}

// Interpret produces an Insight for query. Empty input returns the
// placeholder without an outbound call. Any upstream failure is logged and
// converted into the fallback Insight; it never returns an error.
func (g *Generator) Interpret(ctx context.Context, query string) Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{Insight: Placeholder()}
	}

	log := logging.FromContext(ctx)
	insight, err := g.generate(ctx, query)
	if err != nil {
		var failure *Failure
		if !errors.As(err, &failure) {
			failure = &Failure{Kind: FailureNetwork, Err: err}
		}
		log.WithField("failure", failure.Kind).WithError(failure.Err).Error("insight generation failed")
		return Outcome{Insight: Fallback(query), Failure: failure}
	}

	log.WithField("craving_type", insight.CravingType).Debug("insight generated")
	return Outcome{Insight: insight}
}

func (g *Generator) generate(ctx context.Context, query string) (Insight, error) {
	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(query)},
		},
		Temperature:    temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return Insight{}, &Failure{Kind: FailureDecode, Err: errors.Wrap(err, "encode request")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Insight{}, &Failure{Kind: FailureNetwork, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return Insight{}, &Failure{Kind: FailureNetwork, Err: errors.Wrap(err, "call text-generation endpoint")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Insight{}, &Failure{Kind: FailureNetwork, Err: errors.Wrap(err, "read response")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(body)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return Insight{}, &Failure{
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("text-generation endpoint returned %s: %s", resp.Status, excerpt),
		}
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return Insight{}, &Failure{Kind: FailureDecode, Err: errors.Wrap(err, "decode completion envelope")}
	}
	if len(chat.Choices) == 0 {
		return Insight{}, &Failure{Kind: FailureMissingField, Err: errors.New("completion has no choices")}
	}
	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	if content == "" {
		return Insight{}, &Failure{Kind: FailureMissingField, Err: errors.New("completion message has no content")}
	}

	return ParseInsight(content)
}

// ParseInsight decodes the model's JSON content into an Insight. Content that
// is not valid JSON has any code fence and surrounding prose stripped and is
// repaired once before giving up. Missing or null fields become empty
// strings, except craving_type which becomes Emotional.
func ParseInsight(content string) (Insight, error) {
	fields, err := decodeObject(content)
	if err != nil {
		return Insight{}, &Failure{Kind: FailureDecode, Err: err}
	}

	return Insight{
		Craving:          strings.TrimSpace(cast.ToString(fields["craving"])),
		Insight:          strings.TrimSpace(cast.ToString(fields["insight"])),
		Suggestion:       strings.TrimSpace(cast.ToString(fields["suggestion"])),
		CravingType:      ParseCravingType(cast.ToString(fields["craving_type"])),
		RecipeSuggestion: strings.TrimSpace(cast.ToString(fields["recipe_suggestion"])),
	}, nil
}

func decodeObject(content string) (map[string]interface{}, error) {
	var fields map[string]interface{}
	err := json.UnmarshalFromString(content, &fields)
	if err == nil && fields != nil {
		return fields, nil
	}
	if err == nil {
		err = errors.New("content is not a JSON object")
	}
	originalErr := errors.Wrap(err, "decode insight content")

	candidate := extractObject(content)
	fields = nil
	if err := json.UnmarshalFromString(candidate, &fields); err == nil && fields != nil {
		return fields, nil
	}

	repaired, rerr := jsonrepair.JSONRepair(candidate)
	if rerr != nil {
		return nil, originalErr
	}
	fields = nil
	if err := json.UnmarshalFromString(repaired, &fields); err != nil || fields == nil {
		return nil, originalErr
	}
	return fields, nil
}

// extractObject drops a markdown code fence and cuts content down to its
// outermost {...} span. A missing closing brace keeps everything after the
// opening one so the repair pass can close it.
func extractObject(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(s, "`")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return strings.TrimSpace(s)
	}
	if end := strings.LastIndexByte(s, '}'); end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s[start:])
}
