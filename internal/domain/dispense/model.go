package dispense

import "time"

// DispenseLog is the immutable record of one medicine handed over. The pair
// (PrescriptionID, MedicineName) is unique, which is what makes Dispense
// idempotent. OrderID links back to the refill order the dispense fulfilled,
// when there was one.
type DispenseLog struct {
	ID             string    `json:"id"`
	PrescriptionID string    `json:"prescriptionId"`
	PatientID      string    `json:"patientId"`
	PharmacyID     string    `json:"pharmacyId"`
	PharmacyName   string    `json:"pharmacyName"`
	DoctorID       string    `json:"doctorId"`
	MedicineName   string    `json:"medicineName"`
	Brand          string    `json:"brand,omitempty"`
	Quantity       int       `json:"quantity"`
	DispensedAt    time.Time `json:"dispensedAt"`
	Emergency      bool      `json:"emergency"`
	OrderID        *string   `json:"orderId,omitempty"`
}
