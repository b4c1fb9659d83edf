package disambig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultMaxOutputTokens = 1024

var responseSchema = generateSchema[Response]()

// OpenAI resolves verbs with the Responses API and a strict JSON schema.
type OpenAI struct {
	client          *openai.Client
	model           string
	maxOutputTokens int64
	backoff         []time.Duration
}

// NewOpenAI returns a Service backed by model. Extra request options such as
// option.WithBaseURL are passed to the client.
func NewOpenAI(apiKey, model string, maxOutputTokens int, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}
	return &OpenAI{
		client:          &client,
		model:           model,
		maxOutputTokens: int64(maxOutputTokens),
		backoff:         []time.Duration{5 * time.Second, 30 * time.Second},
	}
}

// Disambiguate asks the model to pick one option per item. Results that do
// not refer to a requested item and option are dropped.
func (o *OpenAI) Disambiguate(ctx context.Context, req Request) (*Response, error) {
	if o.client == nil {
		return nil, errors.New("disambig: client is nil")
	}
	if o.model == "" {
		return nil, errors.New("disambig: model is empty")
	}
	if len(req.Items) == 0 {
		return &Response{}, nil
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxOutputTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(buildPrompt(req), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "VerbSelections",
					Schema:      responseSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Selected verb reading per item"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := o.callWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("disambig: %w", err)
	}
	var out Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.OutputText())), &out); err != nil {
		return nil, fmt.Errorf("disambig: unmarshal response: %w", err)
	}
	return Sanitize(req, &out), nil
}

func (o *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := o.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		if attempt >= len(o.backoff) || !(isRateLimitError(err) || isServerError(err)) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.backoff[attempt]):
		}
	}
}

func isRateLimitError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many requests")
}

func isServerError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "500") ||
		strings.Contains(s, "502") ||
		strings.Contains(s, "503") ||
		strings.Contains(s, "internal server error") ||
		strings.Contains(s, "server_error")
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	strictObjects(m)
	return m
}

// strictObjects marks every object schema closed with all properties
// required, as strict structured output demands.
func strictObjects(schema map[string]any) {
	if t, _ := schema["type"].(string); t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				strictObjects(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		strictObjects(items)
	}
}
