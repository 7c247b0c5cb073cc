package tally

// Canonical column names shared by both lead variants.
const (
	ColumnParentName      = "parent_name"
	ColumnParentPhone     = "parent_phone"
	ColumnStudentGrade    = "student_grade"
	ColumnDesiredTrack    = "desired_track"
	ColumnDesiredTiming   = "desired_timing"
	ColumnRegion          = "region"
	ColumnQuestionContext = "question_context"
)

// UTM parameter names per variant. The ordinary form carries the full set;
// the C-level form only the first three.
var (
	LeadUTMParams  = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}
	CLeadUTMParams = []string{"utm_source", "utm_medium", "utm_campaign"}
)

// LeadFieldResolver builds the resolver for the ordinary admissions form.
// The key map mirrors the live Tally form; when the form changes, only these
// entries need updating. The label keywords are the fallback for fields the
// key map does not cover.
func LeadFieldResolver() *FieldResolver {
	return NewFieldResolver(
		NewByKey(
			KeyMapEntry{Key: "question_g01o6D", Column: ColumnParentName},
			KeyMapEntry{Key: "question_y6Ra5X", Column: ColumnParentPhone},
			KeyMapEntry{Key: "question_XDkbPL", Column: ColumnStudentGrade},
			KeyMapEntry{Key: "question_8Kyl4z", Column: ColumnDesiredTrack},
			KeyMapEntry{Key: "question_0xyWRB", Column: ColumnDesiredTiming},
			KeyMapEntry{Key: "question_zqo65M", Column: ColumnQuestionContext},
		),
		NewByLabelKeyword(map[string][]string{
			ColumnParentName:      {"성함", "이름", "학부모"},
			ColumnParentPhone:     {"전화번호", "연락처", "phone"},
			ColumnStudentGrade:    {"학년", "grade"},
			ColumnDesiredTrack:    {"희망계열", "계열", "track"},
			ColumnDesiredTiming:   {"시간대", "상담 시기", "timing"},
			ColumnQuestionContext: {"궁금", "문의", "question"},
			ColumnRegion:          {"지역", "거주지", "region"},
		}),
	)
}

// CLeadFieldResolver builds the resolver for the C-level form. That form has
// no curated key map yet, so resolution relies entirely on label keywords.
func CLeadFieldResolver() *FieldResolver {
	return NewFieldResolver(
		NewByKey(),
		NewByLabelKeyword(map[string][]string{
			ColumnParentName:      {"성함", "이름", "학부모"},
			ColumnParentPhone:     {"전화번호", "연락처", "phone"},
			ColumnStudentGrade:    {"학년", "grade"},
			ColumnDesiredTrack:    {"희망계열", "계열", "track"},
			ColumnRegion:          {"지역", "거주지", "region"},
			ColumnQuestionContext: {"궁금", "문의", "question", "내용"},
		}),
	)
}
