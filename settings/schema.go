package settings

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema returns a JSON Schema (Draft 7) describing a settings file.
func Schema() *jsonschema.Schema {
	def := Default()

	styleSchema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"start": {Type: "string", Description: "Opening comment delimiter."},
			"end":   {Type: "string", Description: "Closing comment delimiter, empty for line comments."},
		},
		Required:      []string{"start"},
		PropertyOrder: []string{"start", "end"},
	}

	section := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			KeyAutoAddOnOpen: {
				Type:        "boolean",
				Description: "Add a path comment when a document is opened.",
				Default:     defaultValue(def.AutoAddOnOpen),
			},
			KeyAutoAddOnSave: {
				Type:        "boolean",
				Description: "Add a path comment when a document is saved.",
				Default:     defaultValue(def.AutoAddOnSave),
			},
			KeyShowSkipNotifications: {
				Type:        "boolean",
				Description: "Log skipped documents at info level instead of debug.",
				Default:     defaultValue(def.ShowSkipNotifications),
			},
			KeyExcludePatterns: {
				Type:        "array",
				Description: "Glob patterns for paths or file names that are never annotated automatically.",
				Items:       &jsonschema.Schema{Type: "string"},
				Default:     defaultValue(def.ExcludePatterns),
			},
			KeyCommentStyles: {
				Type:                 "object",
				Description:          "Comment delimiters per language id, checked before the built-in table.",
				AdditionalProperties: styleSchema,
				Default:              defaultValue(def.CommentStyles),
			},
			KeyPathFormat: {
				Type:        "string",
				Description: "How the path is rendered.",
				Enum:        enum(PathFormats()),
				Default:     defaultValue(def.PathFormat),
			},
			KeyInsertPosition: {
				Type:        "string",
				Description: "Where a new path comment is inserted.",
				Enum:        enum(InsertPositions()),
				Default:     defaultValue(def.InsertPosition),
			},
			KeyEnableGitIntegration: {
				Type:        "boolean",
				Description: "Use the enclosing git repository as the workspace root.",
				Default:     defaultValue(def.EnableGitIntegration),
			},
		},
		PropertyOrder:        Keys(),
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}

	return &jsonschema.Schema{
		Schema:      "http://json-schema.org/draft-07/schema#",
		Title:       "PathPlease settings",
		Type:        "object",
		Properties:  map[string]*jsonschema.Schema{Section: section},
		Description: "Settings file for the pathplease path comment annotator.",
	}
}

func defaultValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return b
}

func enum(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}
