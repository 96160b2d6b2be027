package stories

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errUnknownCategory = errors.New("must be one of traditional, modern, children, historical, legend, myth")

func knownCategory(value any) error {
	var c Category
	switch v := value.(type) {
	case Category:
		c = v
	case *Category:
		if v == nil {
			return nil
		}
		c = *v
	}
	if c == "" || c.Valid() {
		return nil
	}
	return errUnknownCategory
}

// Normalize trims surrounding whitespace from the text fields.
func (c *CreateCommand) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Body = strings.TrimSpace(c.Body)
	c.Author = strings.TrimSpace(c.Author)
	c.Category = Category(strings.TrimSpace(string(c.Category)))
}

// Validate requires title, body, author, and a known category.
// Every failing field is reported in the returned *ValidationError.
func (c CreateCommand) Validate() error {
	return asValidationError(validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Body, validation.Required),
		validation.Field(&c.Author, validation.Required),
		validation.Field(&c.Category, validation.Required, validation.By(knownCategory)),
	))
}

// Normalize trims surrounding whitespace from the provided text fields.
func (c *UpdateCommand) Normalize() {
	for _, f := range []*string{c.Title, c.Body, c.Author} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if c.Category != nil {
		*c.Category = Category(strings.TrimSpace(string(*c.Category)))
	}
}

// Validate rejects provided fields that are blank and unknown categories.
func (c UpdateCommand) Validate() error {
	return asValidationError(validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.NilOrNotEmpty),
		validation.Field(&c.Body, validation.NilOrNotEmpty),
		validation.Field(&c.Author, validation.NilOrNotEmpty),
		validation.Field(&c.Category, validation.NilOrNotEmpty, validation.By(knownCategory)),
	))
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{Errs: errs}
	}
	return err
}
