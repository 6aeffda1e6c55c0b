package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"logistics-dashboard/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// QueryInterpreter turns a natural-language list request into a core.Query.
type QueryInterpreter interface {
	InterpretQuery(ctx context.Context, text string, fields EntityFields) (*Interpretation, error)
}

// EntityFields describes what a query against one entity list may refer to.
type EntityFields struct {
	Entity   string
	Text     []string
	Statuses []string
	Flags    []string
	Sort     []string
}

// FlagSetting is one boolean filter chosen by the model.
type FlagSetting struct {
	Name  string `json:"name" jsonschema_description:"Flag name, one of the listed flags"`
	Value bool   `json:"value"`
}

// QueryIntent is the structured output requested from the model. Every field
// is required by the strict schema; empty values mean "not filtered".
type QueryIntent struct {
	Search        string        `json:"search" jsonschema_description:"Free-text search term, empty for none"`
	Statuses      []string      `json:"statuses" jsonschema_description:"Status values to keep, empty for all"`
	Flags         []FlagSetting `json:"flags"`
	SortField     string        `json:"sort_field" jsonschema_description:"Sort field, empty for natural order"`
	SortDir       string        `json:"sort_dir" jsonschema:"enum=asc,enum=desc"`
	Clarification string        `json:"clarification" jsonschema_description:"Question for the user when the request cannot be mapped, else empty"`
	Reasoning     string        `json:"reasoning"`
}

// Interpretation is either a query or a clarification request.
type Interpretation struct {
	Query         core.Query
	Clarification string
	Reasoning     string
}

type Agent struct {
	client *openai.Client
	model  shared.ResponsesModel
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, model: shared.ResponsesModel(shared.ChatModelGPT4o)}
}

func (a *Agent) InterpretQuery(ctx context.Context, text string, fields EntityFields) (*Interpretation, error) {
	schemaMap, err := intentSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: a.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(text, fields)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "dashboard_list_query",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Filter, sort and search settings for a dashboard list"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}
	return ParseIntent([]byte(content), fields)
}

// ParseIntent decodes the model output and converts it to a query restricted
// to the names in fields. Names the model invented are dropped.
func ParseIntent(content []byte, fields EntityFields) (*Interpretation, error) {
	var intent QueryIntent
	if err := json.Unmarshal(content, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if c := strings.TrimSpace(intent.Clarification); c != "" {
		return &Interpretation{Clarification: c, Reasoning: intent.Reasoning}, nil
	}
	return &Interpretation{Query: intent.toQuery(fields), Reasoning: intent.Reasoning}, nil
}

func (in QueryIntent) toQuery(fields EntityFields) core.Query {
	q := core.Query{Page: 1}.WithSearch(strings.TrimSpace(in.Search))

	var statuses []string
	for _, s := range in.Statuses {
		if v, ok := lookupFold(fields.Statuses, s); ok {
			statuses = append(statuses, v)
		}
	}
	if len(statuses) > 0 {
		q = q.WithStatuses(statuses...)
	}

	for _, f := range in.Flags {
		if name, ok := lookupFold(fields.Flags, f.Name); ok {
			q = q.WithFlag(name, f.Value)
		}
	}

	if name, ok := lookupFold(fields.Sort, in.SortField); ok {
		dir := core.SortAsc
		if strings.EqualFold(in.SortDir, string(core.SortDesc)) {
			dir = core.SortDesc
		}
		q = q.WithSort(name, dir)
	}
	return q
}

func lookupFold(names []string, s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, n := range names {
		if strings.EqualFold(n, s) {
			return n, true
		}
	}
	return "", false
}

func buildPrompt(text string, f EntityFields) string {
	return fmt.Sprintf(`You translate requests about a logistics dashboard into list filters.
The user is looking at the %s list.
Rules:
1. Use ONLY the names listed below. Leave a field empty when the request does not mention it.
2. Put free text (places, references, names) into "search". Searched fields: %s.
3. If the request cannot be expressed with these filters, fill "clarification" with a short question.

Statuses: %s
Flags (true/false): %s
Sort fields: %s

Request: %s`,
		f.Entity,
		orNone(f.Text),
		orNone(f.Statuses),
		orNone(f.Flags),
		orNone(f.Sort),
		text)
}

func orNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func intentSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(&QueryIntent{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}
