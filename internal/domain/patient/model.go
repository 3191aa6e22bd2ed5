package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. PatientNo is the human-facing record
// number (PAT0001, ...) assigned at creation and never changed afterwards.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientNo        string     `db:"patient_no" json:"patient_no"`
	Name             string     `db:"name" json:"name"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Email            *string    `db:"email" json:"email,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	BloodGroup       *string    `db:"blood_group" json:"blood_group,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
