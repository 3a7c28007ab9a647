package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/providers/llm"
)

// ToolName identifies a tool the model may call.
type ToolName string

const (
	ToolProductMetadata ToolName = "get_product_metadata"
	ToolGenerateVideo   ToolName = "generate_video"
	ToolResearchProduct ToolName = "research_product"
)

// ToolSpec is a tool definition offered to the runtime.
type ToolSpec struct {
	Name        ToolName
	Description string
	Parameters  json.RawMessage
}

// ToolCall is one invocation requested by the runtime.
type ToolCall struct {
	ID        string
	Name      ToolName
	Arguments json.RawMessage
}

// ToolResult is returned to the runtime. Data carries the typed payload for
// observers: domain.ProductMetadata, *generation.Outcome, *agentql.Research,
// or the generation error when every provider failed.
type ToolResult struct {
	Text    string
	IsError bool
	Data    any
}

func errorResult(format string, args ...any) ToolResult {
	return ToolResult{Text: fmt.Sprintf(format, args...), IsError: true}
}

const (
	maxPromptChars = 500

	metadataSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string", "description": "The product page URL"}
  },
  "required": ["url"]
}`
	videoSchema = `{
  "type": "object",
  "properties": {
    "prompt": {"type": "string", "description": "Video scene description with visuals, camera movement and mood"},
    "shot_type": {"type": "string", "enum": ["single", "multi"], "description": "single for one continuous shot, multi for several scenes"}
  },
  "required": ["prompt"]
}`
	researchSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string", "description": "The product page URL"},
    "fields": {"type": "string", "description": "Comma separated fields to extract, e.g. product_name, price, features"}
  },
  "required": ["url"]
}`
)

var (
	metadataTool = ToolSpec{
		Name:        ToolProductMetadata,
		Description: "Fetch product information from a URL. Returns title, description, images, price, and brand.",
		Parameters:  json.RawMessage(metadataSchema),
	}
	videoTool = ToolSpec{
		Name:        ToolGenerateVideo,
		Description: "Generate a video advertisement using the provided prompt. The prompt should describe the video scene, including visuals, camera movement, and mood. Keep prompts under 500 characters.",
		Parameters:  json.RawMessage(videoSchema),
	}
	researchTool = ToolSpec{
		Name:        ToolResearchProduct,
		Description: "Run a structured query against the product page and return fields such as features, benefits and target audience.",
		Parameters:  json.RawMessage(researchSchema),
	}
)

// LLMTools converts specs to chat completions function tools.
func LLMTools(specs []ToolSpec) []llm.Tool {
	tools := make([]llm.Tool, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, llm.FunctionTool(string(s.Name), s.Description, s.Parameters))
	}
	return tools
}

type MetadataArgs struct {
	URL string `json:"url"`
}

func (a MetadataArgs) Validate() error {
	return validateURL(a.URL)
}

type VideoArgs struct {
	Prompt   string `json:"prompt"`
	ShotType string `json:"shot_type,omitempty"`
}

func (a VideoArgs) Validate() error {
	if strings.TrimSpace(a.Prompt) == "" {
		return errors.New("prompt is required")
	}
	switch domain.ShotType(a.ShotType) {
	case "", domain.ShotSingle, domain.ShotMulti:
		return nil
	default:
		return fmt.Errorf("shot_type must be %q or %q", domain.ShotSingle, domain.ShotMulti)
	}
}

type ResearchArgs struct {
	URL    string `json:"url"`
	Fields string `json:"fields,omitempty"`
}

func (a ResearchArgs) Validate() error {
	return validateURL(a.URL)
}

// FieldList splits the comma separated field list.
func (a ResearchArgs) FieldList() []string {
	var fields []string
	for _, f := range strings.Split(a.Fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

type validator interface {
	Validate() error
}

// decodeArgs decodes and validates tool arguments. Models occasionally wrap
// arguments in code fences, so a strict decode failure retries leniently.
func decodeArgs[T validator](raw json.RawMessage) (T, error) {
	var args T
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		lenient, lerr := llm.ParseJSON[T](string(raw))
		if lerr != nil {
			return args, fmt.Errorf("invalid arguments: %w", err)
		}
		args = lenient
	}
	if err := args.Validate(); err != nil {
		return args, err
	}
	return args, nil
}

func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", domain.ErrInvalidURL, raw)
	}
	return nil
}

// argsMap is the observer view of the raw arguments.
func argsMap(raw json.RawMessage) map[string]any {
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func encodeArgs(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}
