package order

import "time"

// Status of a refill order. Orders move from pending to processed when the
// pharmacy dispenses, or to cancelled.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusCancelled Status = "cancelled"
)

// Order is a patient's request for a pharmacy to fill a prescription.
// Patient display fields are snapshotted at placement so the pharmacy work
// queue renders without directory lookups.
type Order struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patientId"`
	PatientName    string    `json:"patientName"`
	PatientPhone   string    `json:"patientPhone"`
	PharmacyID     string    `json:"pharmacyId"`
	PrescriptionID string    `json:"prescriptionId"`
	Status         Status    `json:"status"`
	PlacedAt       time.Time `json:"placedAt"`
}
