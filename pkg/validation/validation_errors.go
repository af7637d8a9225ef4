package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps form field names to user-facing labels
var FieldLabels = map[string]string{
	"full_name":        "Full name",
	"email":            "Email",
	"bio":              "Bio",
	"skills":           "Skills",
	"github_url":       "GitHub URL",
	"linkedin_url":     "LinkedIn URL",
	"years_experience": "Years of experience",
	"location":         "Location",
	"company_name":     "Company name",
	"sector":           "Sector",
	"description":      "Description",
	"contact_email":    "Contact email",
	"website_url":      "Website",
	"company_size":     "Company size",
	"password":         "Password",
	"role":             "Role",
}

// FieldErrors maps a form field name to its first error message.
type FieldErrors map[string]string

// Error lists the messages in a stable order.
func (fe FieldErrors) Error() string {
	return strings.Join(fe.Messages(), "; ")
}

func (fe FieldErrors) Messages() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fe[k])
	}
	return out
}

// ToFieldErrors converts validator.ValidationErrors into per-field messages.
// It returns nil for errors of any other kind.
func ToFieldErrors(err error) FieldErrors {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fe := make(FieldErrors, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := fe[e.Field()]; seen {
			continue
		}
		fe[e.Field()] = formatSingleError(e)
	}
	return fe
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	if fe := ToFieldErrors(err); fe != nil {
		return fe.Messages()
	}
	return []string{err.Error()}
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "number":
		return fmt.Sprintf("%s must be a whole number of 0 or more", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or special symbols", label)
	case "skill_list":
		return fmt.Sprintf("%s: at most %d skills of up to %d characters", label, maxSkills, maxSkillLength)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
