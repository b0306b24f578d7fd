package ai

import (
	"embed"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/careerpilot/insights/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaFiles = map[domain.Kind]string{
	domain.KindSalary:             "schemas/salary.json",
	domain.KindCareerPath:         "schemas/career_path.json",
	domain.KindResumeCritique:     "schemas/resume_critique.json",
	domain.KindSkillsFeedback:     "schemas/skills_feedback.json",
	domain.KindInterviewQuestions: "schemas/interview_questions.json",
	domain.KindInterviewAnswer:    "schemas/interview_answer.json",
}

// schemas holds the compiled JSON Schemas per kind. Compiled once at package
// init; the schema files are build-time assets so failure is a programmer
// error.
var schemas = func() map[domain.Kind]*gojsonschema.Schema {
	out := make(map[domain.Kind]*gojsonschema.Schema, len(schemaFiles))
	for kind, path := range schemaFiles {
		b, err := schemaFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("ai: read schema %s: %v", path, err))
		}
		sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
		if err != nil {
			panic(fmt.Sprintf("ai: compile schema %s: %v", path, err))
		}
		out[kind] = sch
	}
	return out
}()

// validateShape checks the document against the kind's schema and returns the
// names of missing required keys. A non-nil error means the kind is unknown
// or the document could not be validated at all.
func validateShape(kind domain.Kind, doc []byte) ([]string, error) {
	sch, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidArgument, kind)
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if res.Valid() {
		return nil, nil
	}
	missing := make([]string, 0, len(res.Errors()))
	seen := map[string]bool{}
	for _, re := range res.Errors() {
		var key string
		switch re.Type() {
		case "required":
			if p, ok := re.Details()["property"].(string); ok {
				key = p
			}
		case "invalid_type", "array_min_items":
			key = re.Field()
		}
		if key == "" {
			key = re.Field()
		}
		if !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
