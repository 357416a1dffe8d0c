package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/formforge/formbuilder-service/internal/cache"
	"github.com/formforge/formbuilder-service/internal/events"
	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
	"github.com/formforge/formbuilder-service/internal/validator"
)

// ===== TEST DOUBLES =====

type stubStore struct {
	form      *models.Form
	responses []*models.Response

	updatedForm      *models.Form
	updatedQuestions *[]models.Question
	updateErr        error
}

type stubFormRepo struct{ store *stubStore }

func (r *stubFormRepo) Create(ctx context.Context, form *models.Form) error { return nil }

func (r *stubFormRepo) GetByID(ctx context.Context, id uint) (*models.Form, error) {
	if r.store.form == nil || r.store.form.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.store.form, nil
}

func (r *stubFormRepo) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Form, error) {
	return r.GetByID(ctx, id)
}

func (r *stubFormRepo) Update(ctx context.Context, form *models.Form) error     { return nil }
func (r *stubFormRepo) SetActive(ctx context.Context, id uint, active bool) error { return nil }
func (r *stubFormRepo) Delete(ctx context.Context, id uint) error                 { return nil }

func (r *stubFormRepo) GetByCreator(ctx context.Context, creatorID string, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	return nil, 0, nil
}

func (r *stubFormRepo) UpdateWithQuestions(ctx context.Context, form *models.Form, questions *[]models.Question) error {
	if r.store.updateErr != nil {
		return r.store.updateErr
	}
	r.store.updatedForm = form
	r.store.updatedQuestions = questions
	return nil
}

type stubResponseRepo struct{ store *stubStore }

func (r *stubResponseRepo) Create(ctx context.Context, response *models.Response) error {
	response.ID = uint(len(r.store.responses) + 1)
	r.store.responses = append(r.store.responses, response)
	return nil
}

func (r *stubResponseRepo) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubResponseRepo) ListByForm(ctx context.Context, formID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	return r.store.responses, int64(len(r.store.responses)), nil
}

func (r *stubResponseRepo) CountByForm(ctx context.Context, formID uint) (int64, error) {
	return int64(len(r.store.responses)), nil
}

func (r *stubResponseRepo) GetFormStats(ctx context.Context, formID uint) (*repositories.FormResponseStats, error) {
	return &repositories.FormResponseStats{ResponseCount: int64(len(r.store.responses))}, nil
}

func (r *stubResponseRepo) Delete(ctx context.Context, id uint) error { return nil }

type stubRepository struct{ store *stubStore }

func (r *stubRepository) Form() repositories.FormRepository         { return &stubFormRepo{store: r.store} }
func (r *stubRepository) Response() repositories.ResponseRepository { return &stubResponseRepo{store: r.store} }

type capturePublisher struct{ published []*events.Event }

func (p *capturePublisher) Publish(ctx context.Context, event *events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

// ===== FIXTURES =====

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(b)
}

func rawAnswer(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return json.RawMessage(b)
}

// testForm builds a three-question form: a 2-point categorize, a 2-point
// cloze with two blanks, and a 4-point comprehension with two follow-ups.
func testForm(t *testing.T, mode models.FormMode, active bool) *models.Form {
	t.Helper()
	return &models.Form{
		ID:       1,
		Title:    "Animal quiz",
		Mode:     mode,
		IsActive: active,
		Settings: models.FormSettings{FormID: 1, AllowAnonymous: true},
		Questions: []models.Question{
			{
				ID: 10, FormID: 1, Type: models.Categorize, Title: "Sort the animals",
				Points: 2, Position: 0,
				Content: mustJSON(t, models.CategorizeContent{
					Items: []string{"cat", "dog", "salmon"},
					Categories: []models.CategoryKey{
						{Name: "Mammals", Items: []string{"cat", "dog"}},
						{Name: "Fish", Items: []string{"salmon"}},
					},
				}),
			},
			{
				ID: 11, FormID: 1, Type: models.Cloze, Title: "Fill the blanks",
				Points: 2, Position: 1,
				Content: mustJSON(t, models.ClozeContent{
					Text:          "The __ chased the __.",
					Blanks:        2,
					CorrectAnswer: []string{"cat", "mouse"},
				}),
			},
			{
				ID: 12, FormID: 1, Type: models.Comprehension, Title: "Read and answer",
				Points: 4, Position: 2,
				Content: mustJSON(t, models.ComprehensionContent{
					Passage: "Cats sleep most of the day.",
					FollowUps: []models.FollowUpQuestion{
						{Question: "Who sleeps?", Options: []string{"Cats", "Dogs"}, CorrectAnswer: "Cats"},
						{Question: "When?", Options: []string{"Day", "Night"}, CorrectAnswer: "Day"},
					},
				}),
			},
		},
	}
}

func newSubmissionFixture(form *models.Form) (*stubStore, *capturePublisher, SubmissionService) {
	store := &stubStore{form: form}
	publisher := &capturePublisher{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	service := NewSubmissionService(&stubRepository{store: store}, cache.NoopFormCache{}, publisher, logger, validator.New())
	return store, publisher, service
}

func fullAnswers(t *testing.T) models.SubmittedAnswers {
	t.Helper()
	return models.SubmittedAnswers{
		0: rawAnswer(t, models.CategorizeAnswer{Categories: [][]string{{"dog", "cat"}, {"salmon"}}}),
		1: rawAnswer(t, models.ClozeAnswer{Blanks: []string{" CAT ", "mouse"}}),
		2: rawAnswer(t, models.ComprehensionAnswer{FollowUpAnswers: []string{"Cats", "Day"}}),
	}
}

// ===== TESTS =====

func TestSubmit_SurveyModeIsNeverScored(t *testing.T) {
	store, _, service := newSubmissionFixture(testForm(t, models.ModeSurvey, true))

	result, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: fullAnswers(t)}, SubmitMeta{})

	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Nil(t, result.Score)
	assert.Nil(t, result.MaxScore)
	assert.Nil(t, result.Percentage)
	assert.Nil(t, result.CorrectAnswers)

	require.Len(t, store.responses, 1)
	assert.Nil(t, store.responses[0].Score, "survey responses carry no score")
	assert.Nil(t, store.responses[0].MaxScore)
}

func TestSubmit_TestModeScoresAndReportsPercentage(t *testing.T) {
	store, publisher, service := newSubmissionFixture(testForm(t, models.ModeTest, true))

	answers := fullAnswers(t)
	// Only one of the two comprehension follow-ups is right.
	answers[2] = rawAnswer(t, models.ComprehensionAnswer{FollowUpAnswers: []string{"Cats", "Night"}})

	result, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: answers}, SubmitMeta{ClientIP: "10.0.0.9"})

	require.NoError(t, err)
	require.NotNil(t, result.Score)
	require.NotNil(t, result.MaxScore)
	// categorize 2/2, cloze 2/2 (case-insensitive and trimmed), comprehension 2/4
	assert.InDelta(t, 6.0, *result.Score, 1e-9)
	assert.InDelta(t, 8.0, *result.MaxScore, 1e-9)
	require.NotNil(t, result.Percentage)
	assert.Equal(t, 75, *result.Percentage)

	require.Len(t, store.responses, 1)
	assert.Equal(t, "10.0.0.9", store.responses[0].ClientIP)
	require.NotNil(t, store.responses[0].Score)
	assert.InDelta(t, 6.0, *store.responses[0].Score, 1e-9)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventResponseSubmitted, publisher.published[0].Type)
}

func TestSubmit_MaxScoreCountsOnlyAttemptedQuestions(t *testing.T) {
	_, _, service := newSubmissionFixture(testForm(t, models.ModeTest, true))

	answers := models.SubmittedAnswers{
		0: rawAnswer(t, models.CategorizeAnswer{Categories: [][]string{{"cat", "dog"}, {"salmon"}}}),
	}

	result, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: answers}, SubmitMeta{})

	require.NoError(t, err)
	require.NotNil(t, result.MaxScore)
	assert.InDelta(t, 2.0, *result.MaxScore, 1e-9, "skipped questions stay out of the denominator")
	require.NotNil(t, result.Percentage)
	assert.Equal(t, 100, *result.Percentage)
}

func TestSubmit_ShowResultsDisclosesAnswerKey(t *testing.T) {
	form := testForm(t, models.ModeTest, true)
	form.Settings.ShowResults = true
	_, _, service := newSubmissionFixture(form)

	result, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: fullAnswers(t)}, SubmitMeta{})

	require.NoError(t, err)
	require.NotNil(t, result.CorrectAnswers)
	require.Len(t, result.CorrectAnswers, 3)

	assert.Equal(t, [][]string{{"cat", "dog"}, {"salmon"}}, result.CorrectAnswers[0].Categories)
	assert.Equal(t, []string{"cat", "mouse"}, result.CorrectAnswers[1].Blanks)
	assert.Equal(t, []string{"Cats", "Day"}, result.CorrectAnswers[2].FollowUps)
}

func TestSubmit_FormNotFound(t *testing.T) {
	_, _, service := newSubmissionFixture(nil)

	_, err := service.Submit(context.Background(), 42, &SubmitRequest{Answers: fullAnswers(t)}, SubmitMeta{})

	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestSubmit_InactiveFormRejectsSubmissions(t *testing.T) {
	store, _, service := newSubmissionFixture(testForm(t, models.ModeTest, false))

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: fullAnswers(t)}, SubmitMeta{})

	assert.ErrorIs(t, err, ErrFormInactive)
	assert.Empty(t, store.responses)
}

func TestSubmit_AnonymousDisabledRequiresIdentification(t *testing.T) {
	form := testForm(t, models.ModeSurvey, true)
	form.Settings.AllowAnonymous = false
	store, _, service := newSubmissionFixture(form)

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: fullAnswers(t)}, SubmitMeta{})

	assert.ErrorIs(t, err, ErrAnonymousDisabled)
	assert.Empty(t, store.responses)

	name := "Ada"
	result, err := service.Submit(context.Background(), 1, &SubmitRequest{
		Answers:        fullAnswers(t),
		RespondentName: &name,
	}, SubmitMeta{})

	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Len(t, store.responses, 1)
}

func TestSubmit_EmptyAnswersRejected(t *testing.T) {
	_, _, service := newSubmissionFixture(testForm(t, models.ModeSurvey, true))

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: models.SubmittedAnswers{}}, SubmitMeta{})

	assert.ErrorIs(t, err, ErrAnswersRequired)
}

func TestSubmit_OneBadAnswerAbortsWholeSubmission(t *testing.T) {
	store, publisher, service := newSubmissionFixture(testForm(t, models.ModeTest, true))

	answers := fullAnswers(t)
	// The cloze answer must be a blanks list, not a bare string.
	answers[1] = rawAnswer(t, "not an answer object")

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: answers}, SubmitMeta{})

	var answerErr *AnswerError
	require.ErrorAs(t, err, &answerErr)
	assert.Equal(t, 1, answerErr.QuestionIndex)

	assert.Empty(t, store.responses, "nothing is persisted when any answer is invalid")
	assert.Empty(t, publisher.published)
}

func TestSubmit_AnswerForUnknownQuestionIndex(t *testing.T) {
	store, _, service := newSubmissionFixture(testForm(t, models.ModeTest, true))

	answers := fullAnswers(t)
	answers[7] = rawAnswer(t, models.ClozeAnswer{Blanks: []string{"stray"}})

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: answers}, SubmitMeta{})

	var answerErr *AnswerError
	require.ErrorAs(t, err, &answerErr)
	assert.Equal(t, 7, answerErr.QuestionIndex)
	assert.Empty(t, store.responses)
}

func TestSubmit_WrongAnswersStillPersistAndScoreZero(t *testing.T) {
	store, _, service := newSubmissionFixture(testForm(t, models.ModeTest, true))

	answers := models.SubmittedAnswers{
		// Everything in the wrong category: structurally valid, zero credit.
		0: rawAnswer(t, models.CategorizeAnswer{Categories: [][]string{{"salmon"}, {"cat", "dog"}}}),
	}

	result, err := service.Submit(context.Background(), 1, &SubmitRequest{Answers: answers}, SubmitMeta{})

	require.NoError(t, err)
	require.NotNil(t, result.Score)
	assert.Zero(t, *result.Score)
	require.NotNil(t, result.MaxScore)
	assert.InDelta(t, 2.0, *result.MaxScore, 1e-9)
	require.NotNil(t, result.Percentage)
	assert.Equal(t, 0, *result.Percentage)
	assert.Len(t, store.responses, 1)
}
