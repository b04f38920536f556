package gemini

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"google.golang.org/genai"
)

//go:embed prompts/judge.tmpl
var promptFS embed.FS

var judgeTemplate = template.Must(template.ParseFS(promptFS, "prompts/judge.tmpl"))

type promptData struct {
	Question string
	Expected string
	Answer   string
}

func renderPrompt(data promptData) (string, error) {
	var buf bytes.Buffer
	if err := judgeTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// verdict is the structured reply requested from the model.
type verdict struct {
	Score       *int   `json:"score"`
	Explanation string `json:"explanation"`
}

func verdictSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": {
				Type:        genai.TypeInteger,
				Description: "0 incorrect, 1 partial, 2 mostly correct, 3 correct",
			},
			"explanation": {
				Type:        genai.TypeString,
				Description: "Short feedback for the learner",
			},
		},
		Required: []string{"score", "explanation"},
	}
}
