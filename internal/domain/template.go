package domain

import "time"

// Template is a named subject/body pattern containing {{path}} placeholders.
type Template struct {
	Name      string    `json:"name" yaml:"name" dynamodbav:"name"`
	Channel   Channel   `json:"channel" yaml:"channel" dynamodbav:"channel"`
	Subject   string    `json:"subject" yaml:"subject" dynamodbav:"subject"`
	Body      string    `json:"body" yaml:"body" dynamodbav:"body"`
	CreatedAt time.Time `json:"created" yaml:"-" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" yaml:"-" dynamodbav:"updated_at"`
}

type TemplateInput struct {
	Name    string `json:"name" yaml:"name" validate:"required,max=128"`
	Channel string `json:"channel" yaml:"channel" validate:"required"`
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body" validate:"required"`
}

type RenderRequest struct {
	Variables map[string]any `json:"variables"`
}

// Rendered is the output of a template render. Unresolved lists the
// placeholder paths that were left verbatim in the output.
type Rendered struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Channel    Channel  `json:"channel"`
	Unresolved []string `json:"unresolved,omitempty"`
}
