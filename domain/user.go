package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleGuide     UserRole = "guide"
	RoleLeadGuide UserRole = "lead-guide"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name" validate:"required"`
	Email                string             `bson:"email" json:"email" validate:"required,email"`
	Photo                string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 UserRole           `bson:"role" json:"role" validate:"required,oneof=user guide lead-guide admin"`
	Password             string             `bson:"password" json:"-" validate:"required,min=8"`
	PasswordChangedAt    primitive.DateTime `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires primitive.DateTime `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`
}

// SignupInput is what the signup endpoint accepts. Role is not part of it;
// every signup starts as a plain user.
type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Photo           string `json:"photo"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangedPasswordAfter reports whether the password changed after the
// given token issue time (unix seconds).
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	if u.PasswordChangedAt == 0 {
		return false
	}
	return u.PasswordChangedAt.Time().Unix() > issuedAt
}

var UserPatchRules = map[string]string{
	"name":  "required",
	"email": "email",
	"role":  "oneof=user guide lead-guide admin",
}

// Password changes go through the auth service so the hash and
// passwordChangedAt stay consistent; the active flag only flips through
// soft delete.
var UserProtectedFields = []string{"password", "passwordChangedAt", "passwordResetToken", "passwordResetExpires", "active"}

// UpdatableProfileFields is the allow-list for the self-service updateMe path.
var UpdatableProfileFields = []string{"name", "email", "photo"}
