package audit

import "time"

// EmergencyAccessLog records one override access to a patient's records.
// Entries are append-only; there is no update or delete path anywhere in
// the package.
type EmergencyAccessLog struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	ActorName  string    `json:"actorName"`
	ActorRole  string    `json:"actorRole"`
	PatientID  string    `json:"patientId"`
	AccessedAt time.Time `json:"accessedAt"`
}
