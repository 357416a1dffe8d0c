package models

import "encoding/json"

// SubmittedAnswers maps a question's position index to the respondent's
// raw answer payload. A question index absent from the map was not
// attempted and is excluded from grading entirely.
type SubmittedAnswers map[int]json.RawMessage

// CategorizeAnswer lists, per category index, the item strings the
// respondent placed into that category. Parallel to the question's
// Categories in length and order.
type CategorizeAnswer struct {
	Categories [][]string `json:"categories"`
}

// ClozeAnswer lists one entry per blank, left to right. Empty strings are
// permitted and scored as wrong, not rejected.
type ClozeAnswer struct {
	Blanks []string `json:"blanks"`
}

// ComprehensionAnswer lists one selected option per follow-up question.
// An empty entry means unanswered.
type ComprehensionAnswer struct {
	FollowUpAnswers []string `json:"follow_up_answers"`
}
