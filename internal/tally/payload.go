// Package tally provides the Tally form-webhook bounded context: payload
// validation, field mapping, and lead reconciliation for inbound form
// submissions.
package tally

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	platformvalidator "admissions_crm_backend/platform/validator"

	"github.com/go-playground/validator/v10"
)

// Option is a single choice offered by a choice-type form field.
type Option struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
}

// FieldValue models the untyped value slot of a Tally field: absent, null,
// a single string, or a list of strings. Anything else is a structural error.
type FieldValue struct {
	present bool
	isList  bool
	str     string
	list    []string
}

// UnmarshalJSON accepts string, []string, or null.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = FieldValue{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FieldValue{present: true, str: s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = FieldValue{present: true, isList: true, list: list}
		return nil
	}

	return fmt.Errorf("value must be a string, an array of strings, or null")
}

// MarshalJSON round-trips the original shape.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch {
	case !v.present:
		return []byte("null"), nil
	case v.isList:
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.str)
	}
}

// HasValue reports whether the field carries a usable value. A null or absent
// value slot and an empty scalar string both count as "no value"; an empty
// list still counts as present, matching how the form builder delivers
// cleared multi-selects.
func (v FieldValue) HasValue() bool {
	return v.present && (v.isList || v.str != "")
}

// AsList returns the value as a list, wrapping a scalar in a singleton.
func (v FieldValue) AsList() []string {
	if v.isList {
		return v.list
	}
	return []string{v.str}
}

// Field is one entry of a submission's fields array. Key is the form
// builder's opaque identifier; Label is human-readable and not stable across
// form edits.
type Field struct {
	Key     string     `json:"key" validate:"required"`
	Label   string     `json:"label"`
	Type    string     `json:"type" validate:"required"`
	Value   FieldValue `json:"value"`
	Options []Option   `json:"options,omitempty" validate:"omitempty,dive"`
}

// SubmissionData is the data object of a webhook delivery.
type SubmissionData struct {
	ResponseID   string  `json:"responseId" validate:"required"`
	SubmissionID string  `json:"submissionId" validate:"required"`
	RespondentID string  `json:"respondentId,omitempty"`
	FormID       string  `json:"formId" validate:"required"`
	FormName     string  `json:"formName,omitempty"`
	CreatedAt    string  `json:"createdAt" validate:"required"`
	Fields       []Field `json:"fields" validate:"required,dive"`
}

// WebhookPayload is the full Tally webhook delivery body.
type WebhookPayload struct {
	EventID   string         `json:"eventId" validate:"required"`
	EventType string         `json:"eventType" validate:"required"`
	CreatedAt string         `json:"createdAt" validate:"required"`
	Data      SubmissionData `json:"data" validate:"required"`
}

// FieldViolation describes a single structural violation in a payload,
// identified by its JSON field path.
type FieldViolation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ConfigurePayloadValidation makes the validator report JSON tag names so
// violation paths match the wire format ("data.fields[2].key" rather than
// "Data.Fields[2].Key").
func ConfigurePayloadValidation(val *platformvalidator.Validator) {
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidatePayload checks the structural schema of a decoded payload and
// returns the violations as JSON field paths. It runs before any field
// extraction; a payload with violations is never partially processed.
func ValidatePayload(val *platformvalidator.Validator, payload *WebhookPayload) []FieldViolation {
	err := val.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Path: "", Reason: err.Error()}}
	}

	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, FieldViolation{
			Path:   violationPath(fe.Namespace()),
			Reason: violationReason(fe),
		})
	}
	return violations
}

// violationPath strips the root struct name from a validator namespace,
// leaving the JSON path of the offending field.
func violationPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func violationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is missing"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
