package tally

import (
	"context"
	"strings"
	"testing"

	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/platform/apperr"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	existing *ExistingLead
	findErr  error

	upsertID  uuid.UUID
	upsertErr error

	findCalls   int
	upserted    []Submission
	updated     []Submission
	interaction string
}

func (s *fakeStore) FindMostRecentLeadByPhone(_ context.Context, phone string) (*ExistingLead, error) {
	s.findCalls++
	return s.existing, s.findErr
}

func (s *fakeStore) UpdateLeadFromSubmission(_ context.Context, _ uuid.UUID, sub Submission) error {
	s.updated = append(s.updated, sub)
	return nil
}

func (s *fakeStore) InsertInteraction(_ context.Context, _ uuid.UUID, _, content string) error {
	s.interaction = content
	return nil
}

func (s *fakeStore) UpsertLeadIgnoringDuplicate(_ context.Context, sub Submission) (uuid.UUID, error) {
	s.upserted = append(s.upserted, sub)
	return s.upsertID, s.upsertErr
}

type fakeBus struct {
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func leadTestVariant() Variant {
	return Variant{
		Name:               "tally-webhook",
		Resolver:           LeadFieldResolver(),
		UTMParams:          LeadUTMParams,
		CollectsTiming:     true,
		HasReturningBranch: true,
		EventVariant:       "lead",
	}
}

func testPayload(fields []Field) *WebhookPayload {
	return &WebhookPayload{
		EventID:   "evt-1",
		EventType: "FORM_RESPONSE",
		CreatedAt: "2026-03-01T09:00:00.000Z",
		Data: SubmissionData{
			ResponseID:   "resp-1",
			SubmissionID: "sub-1",
			FormID:       "form-1",
			CreatedAt:    "2026-03-01T09:00:00.000Z",
			Fields:       fields,
		},
	}
}

func contactFields() []Field {
	return []Field{
		{Key: "question_g01o6D", Label: "학부모 성함", Type: "INPUT_TEXT", Value: scalar("김학부모")},
		{Key: "question_y6Ra5X", Label: "전화번호", Type: "INPUT_PHONE_NUMBER", Value: scalar("01012345678")},
		{Key: "question_XDkbPL", Label: "학년", Type: "DROPDOWN", Value: scalar("opt-g2"), Options: []Option{{ID: "opt-g2", Text: "고2"}}},
	}
}

func TestProcessNewContact(t *testing.T) {
	store := &fakeStore{upsertID: uuid.New()}
	bus := &fakeBus{}
	r := NewReturningReconciler(leadTestVariant(), store, bus, logger.New("test"))

	result, err := r.Process(context.Background(), testPayload(contactFields()), []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	if result.LeadID == nil || *result.LeadID != store.upsertID {
		t.Fatalf("result lead id = %v", result.LeadID)
	}
	if result.IsReturning || result.Duplicate {
		t.Fatalf("unexpected flags: %+v", result)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(store.upserted))
	}

	sub := store.upserted[0]
	if sub.ParentPhone != "010-1234-5678" {
		t.Fatalf("phone not normalized: %q", sub.ParentPhone)
	}
	if sub.StudentGrade == nil || *sub.StudentGrade != "고2" {
		t.Fatalf("student grade = %v", sub.StudentGrade)
	}
	if sub.SubmissionID != "sub-1" {
		t.Fatalf("submission id = %q", sub.SubmissionID)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	captured, ok := bus.published[0].(events.LeadCaptured)
	if !ok || captured.Variant != "lead" {
		t.Fatalf("event = %#v", bus.published[0])
	}
}

func TestProcessDuplicateSubmission(t *testing.T) {
	store := &fakeStore{upsertErr: ErrDuplicateSubmission}
	bus := &fakeBus{}
	r := NewReturningReconciler(leadTestVariant(), store, bus, logger.New("test"))

	result, err := r.Process(context.Background(), testPayload(contactFields()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Duplicate {
		t.Fatal("expected duplicate flag")
	}
	if result.LeadID != nil {
		t.Fatalf("duplicate must not report a lead id, got %v", result.LeadID)
	}
	if len(bus.published) != 0 {
		t.Fatalf("duplicate must not publish events, got %d", len(bus.published))
	}
}

func TestProcessReturningContact(t *testing.T) {
	existingID := uuid.New()
	store := &fakeStore{existing: &ExistingLead{ID: existingID, ParentName: "김학부모"}}
	bus := &fakeBus{}
	r := NewReturningReconciler(leadTestVariant(), store, bus, logger.New("test"))

	fields := append(contactFields(),
		Field{Key: "question_zqo65M", Label: "궁금한 점", Type: "TEXTAREA", Value: scalar("수시 상담 원합니다")},
	)

	result, err := r.Process(context.Background(), testPayload(fields), nil)
	if err != nil {
		t.Fatal(err)
	}

	if !result.IsReturning {
		t.Fatal("expected returning flag")
	}
	if result.LeadID == nil || *result.LeadID != existingID {
		t.Fatalf("result lead id = %v", result.LeadID)
	}
	if len(store.upserted) != 0 {
		t.Fatal("returning contact must not insert a new lead")
	}
	if len(store.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(store.updated))
	}

	if !strings.HasPrefix(store.interaction, "[재문의]") {
		t.Fatalf("memo = %q", store.interaction)
	}
	if !strings.Contains(store.interaction, "문의 내용: 수시 상담 원합니다") {
		t.Fatalf("memo missing inquiry: %q", store.interaction)
	}
	if !strings.Contains(store.interaction, "학년: 고2") {
		t.Fatalf("memo missing grade: %q", store.interaction)
	}
	// Fields the submission did not supply show the placeholder.
	if !strings.Contains(store.interaction, "희망계열: (없음)") {
		t.Fatalf("memo missing placeholder: %q", store.interaction)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.ReturningContactUpdated); !ok {
		t.Fatalf("event = %#v", bus.published[0])
	}
}

func TestProcessMissingRequiredFields(t *testing.T) {
	store := &fakeStore{}
	r := NewReturningReconciler(leadTestVariant(), store, &fakeBus{}, logger.New("test"))

	fields := []Field{
		{Key: "question_XDkbPL", Label: "학년", Type: "INPUT_TEXT", Value: scalar("고3")},
	}

	_, err := r.Process(context.Background(), testPayload(fields), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("kind = %v", apperr.GetKind(err))
	}
	if store.findCalls != 0 || len(store.upserted) != 0 {
		t.Fatal("store must not be touched when required fields are missing")
	}
}

func TestProcessCLevelVariantSkipsReturningBranch(t *testing.T) {
	store := &fakeStore{existing: &ExistingLead{ID: uuid.New()}, upsertID: uuid.New()}
	variant := Variant{
		Name:         "tally-c-webhook",
		Resolver:     CLeadFieldResolver(),
		UTMParams:    CLeadUTMParams,
		EventVariant: "c_lead",
	}
	r := NewReconciler(variant, store, &fakeBus{}, logger.New("test"))

	fields := []Field{
		{Key: "q1", Label: "성함", Type: "INPUT_TEXT", Value: scalar("박대표")},
		{Key: "q2", Label: "연락처", Type: "INPUT_PHONE_NUMBER", Value: scalar("01098765432")},
	}

	result, err := r.Process(context.Background(), testPayload(fields), nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.findCalls != 0 {
		t.Fatal("c-level flow must not look up returning contacts")
	}
	if result.IsReturning {
		t.Fatal("c-level flow never reports returning")
	}
	if len(store.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(store.upserted))
	}
	if _, ok := store.upserted[0].UTM["utm_term"]; ok {
		t.Fatal("c-level variant must not record utm_term")
	}
}
