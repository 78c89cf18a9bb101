package booking

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Contact is the customer information collected at the confirm step.
type Contact struct {
	Name  string `json:"name" validate:"min=2"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,number,min=10"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// contactMessages maps field and failing tag to the message shown to the
// customer.
var contactMessages = map[string]map[string]string{
	"Name": {
		"min": "Name must be at least 2 characters",
	},
	"Email": {
		"required": "Please enter a valid email address",
		"email":    "Please enter a valid email address",
	},
	"Phone": {
		"required": "Phone number must be at least 10 digits",
		"min":      "Phone number must be at least 10 digits",
		"number":   "Phone number must contain only digits",
	},
}

// Validate checks c and returns a *ValidationError listing every failing
// field, or nil.
func (c Contact) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	seen := map[string]bool{}
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		msg := contactMessages[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = "is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: jsonName(fe.Field()), Message: msg})
	}
	return out
}

func jsonName(field string) string {
	switch field {
	case "Name":
		return "name"
	case "Email":
		return "email"
	case "Phone":
		return "phone"
	}
	return field
}
