package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PATIENT_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewPatientCreated(patientId uuid.UUID, name string) Event {
	return BaseEvent{
		Type: "PATIENT_CREATED",
		Data: map[string]interface{}{
			"patient_id": patientId,
			"name":       name,
		},
		OccurredAt: time.Now(),
	}
}

func NewPatientUpdated(patientId uuid.UUID) Event {
	return BaseEvent{
		Type: "PATIENT_UPDATED",
		Data: map[string]interface{}{
			"patient_id": patientId,
		},
		OccurredAt: time.Now(),
	}
}

func NewPatientDeleted(patientId uuid.UUID) Event {
	return BaseEvent{
		Type: "PATIENT_DELETED",
		Data: map[string]interface{}{
			"patient_id": patientId,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentProcessed(documents int, confidence float64) Event {
	return BaseEvent{
		Type: "DOCUMENT_PROCESSED",
		Data: map[string]interface{}{
			"documents":  documents,
			"confidence": confidence,
		},
		OccurredAt: time.Now(),
	}
}

func NewVectorIndexRebuilt(namespace string, records int) Event {
	return BaseEvent{
		Type: "VECTOR_INDEX_REBUILT",
		Data: map[string]interface{}{
			"namespace": namespace,
			"records":   records,
		},
		OccurredAt: time.Now(),
	}
}
