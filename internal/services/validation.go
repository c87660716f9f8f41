package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/go-playground/validator/v10"
)

const bioRequiredMessage = "Bio is required"

// ProfileValidator applies the submit rule set to a profile
type ProfileValidator struct {
	validate   *validator.Validate
	requireBio bool
}

// NewProfileValidator builds the rule set. Errors are keyed by JSON field name.
func NewProfileValidator(requireBio bool) *ProfileValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ProfileValidator{validate: v, requireBio: requireBio}
}

// Validate returns field -> message for every failing rule. An empty map means valid.
func (pv *ProfileValidator) Validate(profile *models.Profile) map[string]string {
	fieldErrors := map[string]string{}

	if err := pv.validate.Struct(profile); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fe := range validationErrors {
				fieldErrors[fe.Field()] = errorMessage(fe)
			}
		} else {
			fieldErrors["_"] = err.Error()
		}
	}

	if pv.requireBio && profile.Bio == "" {
		fieldErrors[models.FieldBio] = bioRequiredMessage
	}

	return fieldErrors
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.StructField() + " is required"
	default:
		return fe.StructField() + " is invalid"
	}
}
