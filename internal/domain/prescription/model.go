package prescription

import "time"

// Timing says when a dose is taken relative to meals.
type Timing string

const (
	BeforeFood Timing = "before_food"
	AfterFood  Timing = "after_food"
)

// LineStatus tracks a single medicine line. Lines only ever move from
// pending to dispensed.
type LineStatus string

const (
	LinePending   LineStatus = "pending"
	LineDispensed LineStatus = "dispensed"
)

// Medicine is one line on a prescription. Total is always derived from the
// dose pattern and never taken from the caller.
type Medicine struct {
	Name      string     `json:"name"`
	Brand     string     `json:"brand,omitempty"`
	Morning   int        `json:"morning"`
	Afternoon int        `json:"afternoon"`
	Night     int        `json:"night"`
	Timing    Timing     `json:"timing"`
	Days      int        `json:"days"`
	Total     int        `json:"total"`
	Status    LineStatus `json:"status"`
}

// Prescription is immutable after issue except for line status. Doctor
// display fields are snapshotted at issue time so the record stays readable
// if the directory entry changes later.
type Prescription struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patientId"`
	DoctorID    string     `json:"doctorId"`
	DoctorName  string     `json:"doctorName"`
	DoctorPhone string     `json:"doctorPhone"`
	IssuedAt    time.Time  `json:"issuedAt"`
	Emergency   bool       `json:"emergency"`
	Medicines   []Medicine `json:"medicines"`
}

// HasPendingLine reports whether any medicine is still awaiting dispense.
func (p *Prescription) HasPendingLine() bool {
	for _, m := range p.Medicines {
		if m.Status == LinePending {
			return true
		}
	}
	return false
}
