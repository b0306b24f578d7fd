package ai_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/insights/internal/adapter/ai"
	"github.com/careerpilot/insights/internal/domain"
)

const answerDoc = `{"score": 72, "feedback": "Good.", "strengths": ["direct"], "improvements": ["detail"]}`

func TestParser_Parse_PlainJSON(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	out, err := p.Parse(domain.KindInterviewAnswer, answerDoc)
	require.NoError(t, err)
	assert.JSONEq(t, answerDoc, string(out))
}

func TestParser_Parse_FencedJSON(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	out, err := p.Parse(domain.KindInterviewAnswer, "```json\n"+answerDoc+"\n```")
	require.NoError(t, err)
	assert.JSONEq(t, answerDoc, string(out))
}

func TestParser_Parse_JSONEmbeddedInProse(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	raw := "Here is the assessment you asked for:\n" + answerDoc + "\nLet me know if you need anything else!"
	out, err := p.Parse(domain.KindInterviewAnswer, raw)
	require.NoError(t, err)
	assert.JSONEq(t, answerDoc, string(out))
}

func TestParser_Parse_NestedBracesInsideStrings(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	doc := `{"score": 60, "feedback": "Braces {like these} and \"quotes\" are fine.", "strengths": [], "improvements": []}`
	out, err := p.Parse(domain.KindInterviewAnswer, "noise before "+doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Contains(t, decoded["feedback"], "{like these}")
}

func TestParser_Parse_ArrayRoot(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	doc := `[{"text": "Why Go?", "category": "technical", "difficulty": "easy"}]`
	out, err := p.Parse(domain.KindInterviewQuestions, "Questions:\n"+doc)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))
}

func TestParser_Parse_NoJSONIsMalformed(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	_, err := p.Parse(domain.KindSalary, "Sure, here's your salary: 85000")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
}

func TestParser_Parse_UnbalancedJSONIsMalformed(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	_, err := p.Parse(domain.KindSalary, `{"medianSalary": 120000, "salaryRange": {`)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
}

func TestParser_Parse_WrongShapeIsSchemaInvalid(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	_, err := p.Parse(domain.KindSalary, `{"foo": 1}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
	assert.Contains(t, err.Error(), "medianSalary")
}

func TestParser_Parse_EmptyQuestionArrayIsSchemaInvalid(t *testing.T) {
	t.Parallel()
	p := ai.NewParser()
	_, err := p.Parse(domain.KindInterviewQuestions, `[]`)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"object after prose", `answer: {"a": [1, 2]} done`, `{"a": [1, 2]}`, true},
		{"array root", `[1, 2, 3]`, `[1, 2, 3]`, true},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"escaped quote in string", `{"a": "he said \"hi\" {"}`, `{"a": "he said \"hi\" {"}`, true},
		{"no json", "nothing here", "", false},
		{"unbalanced", `{"a": {`, "", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ai.ExtractJSON(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
