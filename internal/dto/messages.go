package dto

import "github.com/google/uuid"

// PublishEmbedPatientMessage is the payload on the embed topic; the consumer
// re-reads the patient row so the message stays small and replay-safe.
type PublishEmbedPatientMessage struct {
	PatientId uuid.UUID `json:"patient_id"`
}
