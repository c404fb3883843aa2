package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Role string

const (
	RoleTeacher  Role = "teacher"
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type UserProfile struct {
	UID       string    `bson:"_id" json:"uid" firestore:"-"`
	Email     string    `bson:"email" json:"email" firestore:"email" validate:"required"`
	Name      string    `bson:"name" json:"name" firestore:"name"`
	Role      Role      `bson:"role" json:"role" firestore:"role" validate:"oneof=teacher admin employee"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitzero" firestore:"createdAt,serverTimestamp"`

	// Fallback is set on profiles synthesized for identities without a
	// stored profile document. Such profiles are never written.
	Fallback bool `bson:"-" json:"fallback,omitempty" firestore:"-"`
}

// FallbackProfile is used when an authenticated identity has no profile document.
func FallbackProfile(uid, email string) *UserProfile {
	return &UserProfile{
		UID:      uid,
		Email:    email,
		Name:     email,
		Role:     RoleTeacher,
		Fallback: true,
	}
}

func (p *UserProfile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// DisplayName falls back to the email when no name was stored.
func (p *UserProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

func (p *UserProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile %q: %w", p.UID, err)
	}
	return nil
}

// Credential is the identity provider's private login record.
type Credential struct {
	UID          string    `bson:"_id" json:"uid" firestore:"uid"`
	Email        string    `bson:"email" json:"email" firestore:"email"`
	PasswordHash string    `bson:"password_hash" json:"-" firestore:"password_hash"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at" firestore:"created_at"`
}
