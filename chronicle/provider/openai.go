// Package provider implements the pipeline's two external collaborators,
// sentiment scoring and insight generation, on the OpenAI responses API with
// structured JSON output.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
)

const sentimentInstructions = `You rate the overall emotional tone of a batch of chat messages.
Respond with a single sentiment score between -1.0 (very negative) and 1.0 (very positive).`

const insightInstructions = `You are analyzing a group chat export. Produce the requested insight
bundle exactly in the JSON schema you are given: up to five key topics, three memorable moments,
a festive holiday greeting grounded in the chat's context, a short rhyming poem about the group,
and free-form categorized message groups.`

type sentimentResponse struct {
	Score float64 `json:"score" jsonschema_description:"Sentiment score in [-1, 1]"`
}

type insightsResponse struct {
	PopularTopics    []string `json:"popular_topics" jsonschema_description:"Key topics discussed, max 5"`
	MemorableMoments []string `json:"memorable_moments" jsonschema_description:"Three most memorable moments"`
	HolidayGreeting  string   `json:"holiday_greeting" jsonschema_description:"Festive greeting based on the chat"`
	Poem             string   `json:"poem" jsonschema_description:"Short rhyming poem about the group"`
	Categories       []struct {
		Name     string   `json:"name" jsonschema_description:"Category label"`
		Messages []string `json:"messages" jsonschema_description:"Messages in this category"`
	} `json:"categories" jsonschema_description:"Free-form categorized message groups"`
}

var sentimentSchema = generateSchema[sentimentResponse]()
var insightsSchema = generateSchema[insightsResponse]()

// Client calls OpenAI for both collaborator roles. It satisfies
// chronicle.SentimentScorer and chronicle.InsightGenerator.
type Client struct {
	api   *openai.Client
	model string
}

func New(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("provider.New: apiKey is empty")
	}
	if model == "" {
		return nil, errors.New("provider.New: model is empty")
	}
	api := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{api: &api, model: model}, nil
}

// Score rates the overall sentiment of one batch of messages. The returned
// score is raw model output; the pipeline clamps it.
func (c *Client) Score(ctx context.Context, messages []string) (float64, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "SentimentScore",
			Schema:      sentimentSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Batch sentiment score JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(100),
		Instructions:    openai.String(sentimentInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(strings.Join(messages, "\n"), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}

	resp, err := callWithRetry(ctx, c.api, params)
	if err != nil {
		return 0, fmt.Errorf("Score: %w", err)
	}

	var out sentimentResponse
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return 0, fmt.Errorf("Score: unmarshal: %w", err)
	}
	return out.Score, nil
}

// Generate produces the structured insight bundle from the prepared prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (chronicle.Insights, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "ChatInsights",
			Schema:      insightsSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Chat insight bundle JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(2500),
		Instructions:    openai.String(insightInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}

	resp, err := callWithRetry(ctx, c.api, params)
	if err != nil {
		return chronicle.Insights{}, fmt.Errorf("Generate: %w", err)
	}

	var out insightsResponse
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return chronicle.Insights{}, fmt.Errorf("Generate: unmarshal: %w", err)
	}

	insights := chronicle.Insights{
		PopularTopics:     out.PopularTopics,
		MemorableMoments:  out.MemorableMoments,
		HolidayGreeting:   strings.TrimSpace(out.HolidayGreeting),
		Poem:              strings.TrimSpace(out.Poem),
		MessageCategories: map[string][]string{},
	}
	for _, c := range out.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		insights.MessageCategories[name] = append(insights.MessageCategories[name], c.Messages...)
	}
	return insights, nil
}

func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(rateLimitWaitTimes[attempt])
					continue
				}
			} else if isServerError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(serverErrorWaitTimes[attempt])
					continue
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	// Fast path: valid JSON as-is.
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	// Fallback: attempt to extract the first top-level JSON object.
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}

	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}
