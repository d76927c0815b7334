package checker

import (
	"context"
	"fmt"
	"strings"

	"editflow.app/server/common/llm"
	"editflow.app/server/internal/editor"
)

const checkSystemPrompt = `You are a grammar expert. Analyze the given text for grammatical errors and suggest corrections.
IMPORTANT: Treat every occurrence of the literal token '****' (or any run of asterisks) as valid and part of the text. Do NOT remove, modify, or merge these tokens under any circumstances, and ignore them during grammar checks.
Report errors in the order they appear. "error" must be copied verbatim from the text so it can be found by exact search. "position" is the character index where the error starts.`

const transformSystemPrompt = `Rewrite the given text in the style of William Shakespeare while keeping its meaning.
IMPORTANT: Keep every run of asterisks such as '****' exactly as it appears. Return only the rewritten text.`

type llmSpan struct {
	Error      string `json:"error" jsonschema:"description=The incorrect text copied verbatim"`
	Correction string `json:"correction" jsonschema:"description=The corrected version"`
	Position   int    `json:"position" jsonschema:"description=Character index where the error starts"`
}

type llmCheckResult struct {
	Errors []llmSpan `json:"errors"`
}

type llmTransformResult struct {
	Text string `json:"text"`
}

// LLMChecker asks a chat model directly instead of going through a separate
// correction service.
type LLMChecker struct {
	client          llm.Client
	checkSchema     any
	transformSchema any
}

func NewLLMChecker(client llm.Client) *LLMChecker {
	return &LLMChecker{
		client:          client,
		checkSchema:     llm.GenerateSchema[llmCheckResult](),
		transformSchema: llm.GenerateSchema[llmTransformResult](),
	}
}

func (c *LLMChecker) Check(ctx context.Context, text string) ([]editor.ErrorSpan, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var result llmCheckResult
	_, err := c.client.Chat(ctx, llm.Request{
		SystemPrompt: checkSystemPrompt,
		UserPrompt:   fmt.Sprintf("Text: %q", text),
		SchemaName:   "grammar_errors",
		Schema:       c.checkSchema,
		MaxTokens:    2000,
		Temperature:  llm.Temp(0),
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	spans := make([]editor.ErrorSpan, 0, len(result.Errors))
	for i, s := range result.Errors {
		if s.Error == "" {
			return nil, fmt.Errorf("%w: span %d has empty error text", editor.ErrInvalidSpan, i)
		}
		pos := s.Position
		spans = append(spans, editor.ErrorSpan{Error: s.Error, Correction: s.Correction, Position: &pos})
	}
	return spans, nil
}

func (c *LLMChecker) Transform(ctx context.Context, text string) (string, error) {
	var result llmTransformResult
	_, err := c.client.Chat(ctx, llm.Request{
		SystemPrompt: transformSystemPrompt,
		UserPrompt:   text,
		SchemaName:   "transformed_text",
		Schema:       c.transformSchema,
		MaxTokens:    4000,
		Temperature:  llm.Temp(0.7),
	}, &result)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return result.Text, nil
}
