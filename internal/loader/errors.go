package loader

import "fmt"

// ParseError is returned when a schema file is not valid YAML.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "invalid schema file: " + e.Message
}

// UnknownFieldError is returned for relation fields the loader does not know.
type UnknownFieldError struct {
	Field string
	Line  int
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("line %d: unknown relation field %q (allowed: name, tier, master, description, contents)", e.Line, e.Field)
}

// DeclError reports an invalid relation declaration.
type DeclError struct {
	Name    string
	Line    int
	Message string
	Err     error
}

func (e *DeclError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Name == "" {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return fmt.Sprintf("line %d: relation %s: %s", e.Line, e.Name, msg)
}

func (e *DeclError) Unwrap() error { return e.Err }
