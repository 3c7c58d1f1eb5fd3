package guidebook

import (
	"github.com/go-playground/validator"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// Форматы входного документа
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatTipTap   = "tiptap"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("docFormat", docFormatValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("nodeKind", nodeKindValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("action", actionValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i any) error {
	if err := rv.validator.Struct(i); err != nil {
		if _, ok := err.(validator.ValidationErrors); !ok {
			return nil
		}
		return err
	}
	return nil
}

func docFormatValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", FormatHTML, FormatMarkdown, FormatTipTap:
		return true
	}
	return false
}

func nodeKindValidator(fl validator.FieldLevel) bool {
	return edtypes.Kind(fl.Field().Int()) != edtypes.KindNone
}

func actionValidator(fl validator.FieldLevel) bool {
	return edtypes.ActionType(fl.Field().String()).IsValid()
}
