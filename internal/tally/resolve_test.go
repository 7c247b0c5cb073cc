package tally

import (
	"encoding/json"
	"testing"
)

func scalar(s string) FieldValue {
	return FieldValue{present: true, str: s}
}

func list(values ...string) FieldValue {
	return FieldValue{present: true, isList: true, list: values}
}

func TestResolveFieldValueChoices(t *testing.T) {
	field := Field{
		Key:   "question_abc",
		Label: "희망계열",
		Type:  "CHECKBOXES",
		Value: list("opt-1", "opt-9"),
		Options: []Option{
			{ID: "opt-1", Text: "이과"},
			{ID: "opt-2", Text: "문과"},
		},
	}

	got, ok := resolveFieldValue(field)
	if !ok {
		t.Fatalf("expected a value")
	}
	// opt-9 has no matching option and stays verbatim.
	if got != "이과, opt-9" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFieldValueChoiceWithoutOptions(t *testing.T) {
	field := Field{Key: "k", Type: "DROPDOWN", Value: scalar("raw-id")}

	got, ok := resolveFieldValue(field)
	if !ok || got != "raw-id" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestResolveFieldValueTrimsText(t *testing.T) {
	field := Field{Key: "k", Type: "INPUT_TEXT", Value: scalar("  김철수  ")}

	got, ok := resolveFieldValue(field)
	if !ok || got != "김철수" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestResolveFieldValueEmpty(t *testing.T) {
	cases := []struct {
		name  string
		field Field
	}{
		{"null value", Field{Key: "k", Type: "INPUT_TEXT"}},
		{"empty string", Field{Key: "k", Type: "INPUT_TEXT", Value: scalar("")}},
		{"whitespace only", Field{Key: "k", Type: "INPUT_TEXT", Value: scalar("   ")}},
		{"empty list", Field{Key: "k", Type: "CHECKBOXES", Value: list(), Options: []Option{{ID: "a", Text: "A"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got, ok := resolveFieldValue(tc.field); ok {
				t.Fatalf("expected no value, got %q", got)
			}
		})
	}
}

func TestFieldResolverKeyMapWins(t *testing.T) {
	resolver := LeadFieldResolver()
	fields := []Field{
		{Key: "question_g01o6D", Label: "무관한 라벨", Type: "INPUT_TEXT", Value: scalar("김학부모")},
		{Key: "question_other", Label: "학부모 성함", Type: "INPUT_TEXT", Value: scalar("다른사람")},
	}

	got, ok := resolver.Resolve(fields, ColumnParentName)
	if !ok || got != "김학부모" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestFieldResolverLabelFallback(t *testing.T) {
	resolver := LeadFieldResolver()
	fields := []Field{
		{Key: "question_zz1", Label: "학부모님 연락처를 남겨주세요", Type: "INPUT_PHONE_NUMBER", Value: scalar("01012345678")},
	}

	got, ok := resolver.Resolve(fields, ColumnParentPhone)
	if !ok || got != "01012345678" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestFieldResolverEmptyMappedFieldFallsThrough(t *testing.T) {
	resolver := LeadFieldResolver()
	fields := []Field{
		// Mapped key exists but carries no value.
		{Key: "question_g01o6D", Label: "", Type: "INPUT_TEXT", Value: scalar("")},
		{Key: "question_zz2", Label: "성함", Type: "INPUT_TEXT", Value: scalar("이학생")},
	}

	got, ok := resolver.Resolve(fields, ColumnParentName)
	if !ok || got != "이학생" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestFieldResolverMissingColumn(t *testing.T) {
	resolver := LeadFieldResolver()
	fields := []Field{
		{Key: "question_zz3", Label: "기타", Type: "INPUT_TEXT", Value: scalar("x")},
	}

	if got, ok := resolver.Resolve(fields, ColumnRegion); ok {
		t.Fatalf("expected miss, got %q", got)
	}
}

func TestExtractUTM(t *testing.T) {
	fields := []Field{
		{Key: "utm_source", Label: "utm_source", Type: "HIDDEN_FIELDS", Value: scalar("naver")},
		{Key: "utm_campaign", Label: "utm_campaign", Type: "HIDDEN_FIELDS", Value: scalar("spring2026")},
	}

	utm := ExtractUTM(fields, LeadUTMParams)
	if len(utm) != len(LeadUTMParams) {
		t.Fatalf("expected %d entries, got %d", len(LeadUTMParams), len(utm))
	}
	if utm["utm_source"] == nil || *utm["utm_source"] != "naver" {
		t.Fatalf("utm_source = %v", utm["utm_source"])
	}
	if utm["utm_campaign"] == nil || *utm["utm_campaign"] != "spring2026" {
		t.Fatalf("utm_campaign = %v", utm["utm_campaign"])
	}
	if utm["utm_medium"] != nil {
		t.Fatalf("expected nil utm_medium, got %q", *utm["utm_medium"])
	}
}

func TestFieldValueUnmarshal(t *testing.T) {
	var v FieldValue
	if err := json.Unmarshal([]byte(`"hello"`), &v); err != nil {
		t.Fatal(err)
	}
	if !v.HasValue() || v.AsList()[0] != "hello" {
		t.Fatalf("scalar round trip failed: %+v", v)
	}

	if err := json.Unmarshal([]byte(`["a","b"]`), &v); err != nil {
		t.Fatal(err)
	}
	if !v.HasValue() || len(v.AsList()) != 2 {
		t.Fatalf("list round trip failed: %+v", v)
	}

	if err := json.Unmarshal([]byte(`null`), &v); err != nil {
		t.Fatal(err)
	}
	if v.HasValue() {
		t.Fatal("null must not carry a value")
	}

	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Fatal("expected error for numeric value")
	}
}

func TestFieldValueEmptyListIsPresent(t *testing.T) {
	var v FieldValue
	if err := json.Unmarshal([]byte(`[]`), &v); err != nil {
		t.Fatal(err)
	}
	if !v.HasValue() {
		t.Fatal("empty list counts as present")
	}
}
