package siteconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigNotFound = errors.New("siteconfig: configuration file not found")
	ErrConfigParse    = errors.New("siteconfig: configuration could not be parsed")
	ErrSchemaInvalid  = errors.New("siteconfig: configuration does not match schema")
	ErrConfigInvalid  = errors.New("siteconfig: configuration invalid")
)

// Issue is a single schema violation.
type Issue struct {
	Location string
	Message  string
}

// SchemaError lists every schema violation found in the merged document.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrSchemaInvalid, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaInvalid }
