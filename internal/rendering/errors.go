package rendering

import "fmt"

// TemplateError represents an error parsing or executing an HTML page template
type TemplateError struct {
	Name  string
	Cause error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Name)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a failure to write a rendered page
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
