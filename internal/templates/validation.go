package templates

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

// ValidationError represents a template validation failure.
type ValidationError struct {
	Template string
	Field    string
	Message  string
}

func (e ValidationError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Template, e.Field, e.Message)
}

// ValidationResult holds all validation errors for one or more templates.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

func (vr *ValidationResult) AddError(tmpl, field, msg string) {
	vr.Errors = append(vr.Errors, ValidationError{Template: tmpl, Field: field, Message: msg})
}

func (vr *ValidationResult) AddWarning(tmpl, field, msg string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Template: tmpl, Field: field, Message: msg})
}

func (vr *ValidationResult) merge(other *ValidationResult) {
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// Validate checks a single template for correctness.
func Validate(t *Template) *ValidationResult {
	result := &ValidationResult{}
	name := t.Spec.Name

	if name == "" {
		result.AddError(t.Source, "name", "required field is missing")
	} else if !validName.MatchString(name) {
		result.AddError(name, "name", "must be lowercase alphanumeric with hyphens only")
	}

	switch t.Spec.Kind {
	case KindFile:
		if t.Spec.Path == "" {
			result.AddError(name, "path", "required for file templates")
		} else if err := checkRelative(t.Spec.Path); err != nil {
			result.AddError(name, "path", err.Error())
		}
	case KindInstructions:
		if t.Spec.Path != "" {
			result.AddWarning(name, "path", "ignored for instructions templates")
		}
	default:
		result.AddError(name, "kind", fmt.Sprintf("unknown kind: %s", t.Spec.Kind))
	}

	if strings.TrimSpace(t.Body) == "" {
		result.AddWarning(name, "body", "empty template body")
	} else if _, err := template.New(name).Parse(t.Body); err != nil {
		result.AddError(name, "body", err.Error())
	}

	if t.Spec.Description == "" {
		result.AddWarning(name, "description", "missing description")
	}

	return result
}

// ValidateSet validates every template and checks that no two file templates
// write the same path.
func ValidateSet(s *Set) *ValidationResult {
	result := &ValidationResult{}
	seen := make(map[string]string)

	for _, t := range s.List() {
		result.merge(Validate(t))

		if t.Spec.Kind != KindFile || t.Spec.Path == "" {
			continue
		}
		key := filepath.ToSlash(filepath.Clean(t.Spec.Path))
		if other, ok := seen[key]; ok {
			result.AddError(t.Spec.Name, "path", fmt.Sprintf("%s is also written by %s", key, other))
			continue
		}
		seen[key] = t.Spec.Name
	}

	if len(s.ByKind(KindFile)) == 0 {
		result.AddWarning("", "templates", "no file templates; only directories will be created")
	}

	return result
}

func checkRelative(p string) error {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("must be relative to the project root")
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == "." {
		return fmt.Errorf("must name a file")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("must stay inside the project root")
	}
	return nil
}
