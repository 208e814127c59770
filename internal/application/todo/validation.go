package todo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage"
)

// newValidate returns a validator that reports JSON field names.
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct converts validator failures into a domain.ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	ve := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: fe.Field(), Issue: issue(fe)})
	}
	return ve
}

func issue(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return "is invalid"
	}
}

// listValidator checks list shapes.
type listValidator struct {
	v *validator.Validate
}

func (lv listValidator) Validate(_ context.Context, d ListDTO) error {
	return validateStruct(lv.v, d)
}

// itemValidator checks item shapes and that the owning list exists.
type itemValidator struct {
	v     *validator.Validate
	lists func() storage.Repository[domain.List]
}

func (iv itemValidator) Validate(ctx context.Context, d ItemDTO) error {
	if err := validateStruct(iv.v, d); err != nil {
		return err
	}

	exists, err := iv.lists().Query().Where(storage.Eq(domain.FieldID, d.ListID)).Any(ctx)
	if err != nil {
		return fmt.Errorf("failed to check list %d: %w", d.ListID, err)
	}
	if !exists {
		return domain.NewValidationError("listId", "references a list that does not exist")
	}
	return nil
}
