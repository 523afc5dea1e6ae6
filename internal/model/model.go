package model

import (
	"time"

	"gorm.io/datatypes"
)

// Consent types accepted by the consent API.
const (
	ConsentTerms      = "terms"
	ConsentPrivacy    = "privacy"
	ConsentHealthData = "health_data"
	ConsentMarketing  = "marketing"
)

// Deletion request states.
const (
	DeletionPending   = "pending"
	DeletionCompleted = "completed"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ConsentRecord is one acceptance of a consent type. Withdrawal stamps
// WithdrawnAt on the record instead of deleting it.
type ConsentRecord struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string         `json:"user_id" gorm:"index:idx_consent_user_type;not null"`
	ConsentType string         `json:"consent_type" gorm:"index:idx_consent_user_type;not null"`
	Version     string         `json:"version"`
	AcceptedAt  time.Time      `json:"accepted_at"`
	WithdrawnAt *time.Time     `json:"withdrawn_at,omitempty"`
	IPHash      string         `json:"-"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Active reports whether the consent is accepted and not withdrawn.
func (c ConsentRecord) Active() bool {
	return c.WithdrawnAt == nil
}

// QuestionnaireSubmission stores an encrypted questionnaire payload. Payload is
// an opaque ciphertext produced by an encryption provider.
type QuestionnaireSubmission struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Persona   string    `json:"persona" gorm:"not null"`
	Payload   string    `json:"-" gorm:"type:text;not null"`
	Scheme    string    `json:"scheme"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

type DeletionRequest struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	Status      string     `json:"status" gorm:"default:'pending'"`
	Reason      string     `json:"reason,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AuditEvent records a privacy-relevant action. Data never holds health
// answers, only counts and identifiers.
type AuditEvent struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    string         `json:"user_id" gorm:"index"`
	Event     string         `json:"event" gorm:"not null"`
	Data      datatypes.JSON `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// All lists the models migrated at startup.
func All() []any {
	return []any{
		&User{},
		&ConsentRecord{},
		&QuestionnaireSubmission{},
		&DeletionRequest{},
		&AuditEvent{},
		&CatalogProvider{},
		&CatalogProduct{},
	}
}
