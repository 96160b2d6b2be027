package auth

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/pkg/query"
	"github.com/guarayo/cuentos/pkg/repository"
)

// User is a local account.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Confirmed reports whether the account email has been confirmed.
func (u User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// Identity returns the session identity of the account.
func (u User) Identity() session.Identity {
	return session.Identity{ID: u.ID.String(), Email: u.Email}
}

// Credentials are an email and password pair.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and lower-cases the email.
func (c *Credentials) Normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

// Validate checks the email format and the bcrypt-compatible password length.
func (c Credentials) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(3, 254),
		),
		validation.Field(&c.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 72).Error("password must be 8-72 characters"),
		),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{Errs: errs}
	}
	return err
}

// ValidationError reports rejected credential fields.
type ValidationError struct {
	Errs validation.Errors
}

func (e *ValidationError) Error() string {
	return strings.TrimSuffix(e.Errs.Error(), ".")
}

// Fields returns the validation message for each rejected field.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errs))
	for name, err := range e.Errs {
		fields[name] = err.Error()
	}
	return fields
}

const userColumns = "id, email, password_hash, confirmed_at, created_at"

var userProjection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("email", "Email").
	Project("password_hash", "PasswordHash").
	Project("confirmed_at", "ConfirmedAt").
	Project("created_at", "CreatedAt")

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ConfirmedAt, &u.CreatedAt)
	return u, err
}
