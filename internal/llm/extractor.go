package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/javiermolinar/stint/internal/task"
)

const extractPrompt = `You turn a free-form brain dump into a list of structured tasks.

Context:
- Now: %s (%s)
- Today: %s
- Tomorrow: %s

Rules:
1. One task per distinct piece of work. Keep titles short and clear.
2. duration_minutes is a positive whole number of minutes. Estimate it when the text does not say.
3. importance goes from 1 (low) to 5 (critical).
4. context is where the task can be done: phone, pc, home, outside or any.
5. energy is the effort required: low, medium or high.
6. flexibility is "fixed" only for appointments at a precise time, otherwise "flexible".
7. date is the requested day as YYYY-MM-DD. Resolve relative days against today. Leave it out when no day is named.
8. deadline is a time of day as HH:MM when the text gives one, otherwise leave it out.
9. When something is ambiguous, such as a complex task without a duration, add a short question to "questions".

Respond ONLY with JSON matching this schema (no markdown, no explanation):
%s`

// ExtractRequest is the input of one extraction.
type ExtractRequest struct {
	Input string
	Now   time.Time
}

// ExtractResult is the structured answer of the model.
type ExtractResult struct {
	Tasks     []task.Task `json:"tasks" jsonschema:"description=Tasks found in the text"`
	Questions []string    `json:"questions,omitempty" jsonschema:"description=Clarifying questions about ambiguities; empty when there are none"`
}

var responseSchema = sync.OnceValue(func() string {
	r := &jsonschema.Reflector{DoNotReference: true}
	data, err := json.MarshalIndent(r.Reflect(&ExtractResult{}), "", "  ")
	if err != nil {
		// Reflection of a static type cannot fail at runtime.
		panic(fmt.Sprintf("marshaling response schema: %v", err))
	}
	return string(data)
})

// ResponseSchema returns the JSON Schema the model is asked to follow.
func ResponseSchema() string {
	return responseSchema()
}

// Extractor uses an LLM to turn free text into tasks.
type Extractor struct {
	client Client
}

// NewExtractor creates an Extractor with the given client.
func NewExtractor(client Client) *Extractor {
	return &Extractor{client: client}
}

// Extract converts free text into tasks and clarifying questions.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	return e.ExtractWithMessages(ctx, BuildMessages(req))
}

// ExtractWithMessages runs an extraction over a prepared conversation.
// Callers use it to retry with error feedback appended.
func (e *Extractor) ExtractWithMessages(ctx context.Context, messages []Message) (*ExtractResult, error) {
	var result ExtractResult
	if err := e.client.ChatJSON(ctx, messages, &result); err != nil {
		return nil, fmt.Errorf("extracting tasks from LLM: %w", err)
	}
	return &result, nil
}

// BuildMessages creates the initial conversation for a request.
func BuildMessages(req ExtractRequest) []Message {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	tomorrow := now.AddDate(0, 0, 1)

	system := fmt.Sprintf(extractPrompt,
		now.Format("2006-01-02 15:04"),
		now.Format("Monday"),
		now.Format(task.DateLayout),
		tomorrow.Format(task.DateLayout),
		ResponseSchema(),
	)

	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: strings.TrimSpace(req.Input)},
	}
}
