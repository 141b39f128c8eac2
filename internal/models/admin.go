package models

import "time"

type PrincipalType string

const (
	PrincipalAdmin PrincipalType = "admin"
	PrincipalUser  PrincipalType = "user"
)

type Admin struct {
	ID             int64
	LoginID        string
	PasswordHash   []byte
	Name           string
	IsSuper        bool
	OrganizationID *int64
	FirstLogin     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Session struct {
	ID               string
	PrincipalType    PrincipalType
	PrincipalID      int64
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
