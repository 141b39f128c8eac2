package models

import "time"

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "W"
)

// QuestionnaireType enumerates the oral questionnaire variants end users fill
// in. The values travel on the wire verbatim.
type QuestionnaireType string

const (
	QuestionnaireAdultOral  QuestionnaireType = "ADULT_ORAL_MANAGEMENT"
	QuestionnaireAdultOrtho QuestionnaireType = "ADULT_ORTHO_MANAGEMENT"
	QuestionnaireChildOral  QuestionnaireType = "CHILD_ORAL_MANAGEMENT"
	QuestionnaireChildOrtho QuestionnaireType = "CHILD_ORTHO_MANAGEMENT"
)

type User struct {
	ID                       int64
	LoginID                  string
	PasswordHash             []byte
	Name                     string
	PhoneNumber              string
	Gender                   Gender
	OrganizationID           int64
	OralStatus               *string
	OralStatusTitle          *string
	OralCheckResultTotalType *string
	OralCheckDate            *time.Time
	QuestionnaireType        *string
	QuestionnaireDate        *time.Time
	Verified                 bool
	ServiceNames             []string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// UserFilter captures the user-list search form: free-text keyword over login
// id and name, enumerated filters, an inclusive date range over the
// questionnaire date, and 1-based paging.
type UserFilter struct {
	OrganizationID *int64 // nil means all organizations (super admin)
	Keyword        string
	OralStatus     string
	Questionnaire  string
	Gender         string
	Verify         string // "Y", "N" or empty
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	Size           int
}

type Paging struct {
	Number        int   `json:"number"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}
