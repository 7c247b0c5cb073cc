package transport

import (
	"encoding/json"
	"testing"
)

func TestOptionalStringAbsent(t *testing.T) {
	var req UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"stage":"CONTACTED"}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Assignee.Set {
		t.Fatal("absent field must not be marked set")
	}
}

func TestOptionalStringNull(t *testing.T) {
	var req UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"assignee":null}`), &req); err != nil {
		t.Fatal(err)
	}
	if !req.Assignee.Set {
		t.Fatal("explicit null must be marked set")
	}
	if req.Assignee.Value != nil {
		t.Fatalf("value = %v", *req.Assignee.Value)
	}
}

func TestOptionalStringValue(t *testing.T) {
	var req UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"assignee":"김상담"}`), &req); err != nil {
		t.Fatal(err)
	}
	if !req.Assignee.Set || req.Assignee.Value == nil || *req.Assignee.Value != "김상담" {
		t.Fatalf("assignee = %+v", req.Assignee)
	}
}

func TestOptionalStringRejectsNonString(t *testing.T) {
	var req UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"assignee":3}`), &req); err == nil {
		t.Fatal("expected error for numeric assignee")
	}
}
