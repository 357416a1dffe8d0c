package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/formforge/formbuilder-service/internal/models"
)

type EventType string

const (
	EventResponseSubmitted EventType = "response.submitted"
	EventFormPublished     EventType = "form.published"
	EventFormClosed        EventType = "form.closed"
)

// Event is the envelope published to the events topic.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	FormID uint            `json:"form_id"`
	Mode   models.FormMode `json:"mode,omitempty"`

	// Set for response.submitted
	ResponseID uint     `json:"response_id,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	MaxScore   *float64 `json:"max_score,omitempty"`
}

func NewResponseSubmittedEvent(form *models.Form, response *models.Response) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       EventResponseSubmitted,
		Source:     "formbuilder-service",
		Timestamp:  time.Now().UTC(),
		FormID:     form.ID,
		Mode:       form.Mode,
		ResponseID: response.ID,
		Score:      response.Score,
		MaxScore:   response.MaxScore,
	}
}

func NewFormLifecycleEvent(eventType EventType, form *models.Form) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "formbuilder-service",
		Timestamp: time.Now().UTC(),
		FormID:    form.ID,
		Mode:      form.Mode,
	}
}
