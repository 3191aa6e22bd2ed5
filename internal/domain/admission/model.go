package admission

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusAdmitted   = "Admitted"
	StatusDischarged = "Discharged"
)

type Admission struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Ward          string     `db:"ward" json:"ward"`
	BedNo         *string    `db:"bed_no" json:"bed_no,omitempty"`
	Diagnosis     *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Status        string     `db:"status" json:"status"`
	AdmitDate     time.Time  `db:"admit_date" json:"admit_date"`
	DischargeDate *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
