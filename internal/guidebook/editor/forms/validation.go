package forms

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator"
	"go.uber.org/multierr"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/codec"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
)

// FieldError - ошибка проверки одного поля формы.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError - все ошибки проверки формы. Пока она есть, атрибуты к документу не применяются.
type ValidationError struct {
	Fields []FieldError `json:"fields"`

	err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return multierr.Errors(e.err)
}

var (
	dangerousSelector = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)<object`),
		regexp.MustCompile(`(?i)<iframe`),
		regexp.MustCompile(`(?i)<embed`),
		regexp.MustCompile(`(?i)<applet`),
	}
	dangerousText = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
	}
	requirementPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^exists-reftarget$`),
		regexp.MustCompile(`^navmenu-open$`),
		regexp.MustCompile(`^on-page:.+$`),
		regexp.MustCompile(`^is-admin$`),
		regexp.MustCompile(`^has-datasource:.+$`),
		regexp.MustCompile(`^has-plugin:.+$`),
		regexp.MustCompile(`^section-completed:.+$`),
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	for tag, fn := range map[string]validator.Func{
		"sectionid":    sectionIDValidator,
		"requirement":  requirementValidator,
		"safeselector": safeSelectorValidator,
		"cssselector":  cssSelectorValidator,
		"safetext":     safeTextValidator,
		"navpath":      navPathValidator,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func sectionIDValidator(fl validator.FieldLevel) bool {
	return schema.SectionIDPattern.MatchString(fl.Field().String())
}

func requirementValidator(fl validator.FieldLevel) bool {
	return IsValidRequirement(fl.Field().String())
}

func safeSelectorValidator(fl validator.FieldLevel) bool {
	return !matchesAny(dangerousSelector, fl.Field().String())
}

func cssSelectorValidator(fl validator.FieldLevel) bool {
	_, err := cascadia.Compile(fl.Field().String())
	return err == nil
}

func safeTextValidator(fl validator.FieldLevel) bool {
	return !matchesAny(dangerousText, fl.Field().String())
}

func navPathValidator(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), "/")
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// IsValidRequirement проверяет требование по закрытой грамматике. Пустое требование допустимо.
func IsValidRequirement(requirement string) bool {
	if strings.TrimSpace(requirement) == "" {
		return true
	}
	return matchesAny(requirementPatterns, requirement)
}

// Правила проверки цели по действию
var refTargetRules = map[edtypes.ActionType]string{
	edtypes.ActionButton:    "required,safetext",
	edtypes.ActionHighlight: "required,safeselector,cssselector",
	edtypes.ActionFormFill:  "required,safeselector,cssselector",
	edtypes.ActionHover:     "required,safeselector,cssselector",
	edtypes.ActionNavigate:  "required,navpath",
}

func fieldMessage(action edtypes.ActionType, field, tag string) string {
	switch tag {
	case "required":
		switch {
		case field == edtypes.AttrID:
			return "Section ID is required for sequence actions"
		case action == edtypes.ActionNavigate:
			return "Navigation path is required"
		case action == edtypes.ActionButton:
			return "Button text cannot be empty"
		}
		return "Reference target is required"
	case "navpath":
		return "Navigation path should start with /"
	case "safeselector":
		return "Selector contains dangerous patterns"
	case "cssselector":
		return "Invalid CSS selector syntax"
	case "safetext":
		return "Button text contains dangerous content"
	case "sectionid":
		return "ID must start with letter and contain only letters, numbers, hyphens, underscores"
	case "requirement":
		return `Invalid requirement format. Expected patterns like "exists-reftarget", "on-page:/path", etc.`
	}
	return "Invalid value"
}

func checkVar(action edtypes.ActionType, field, value, rules string) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &FieldError{Field: field, Message: err.Error()}
	}
	return &FieldError{Field: field, Message: fieldMessage(action, field, verrs[0].Tag())}
}

// ValidateAttributes проверяет атрибуты хранения для действия. Возвращает *ValidationError со всеми ошибками полей.
func ValidateAttributes(action edtypes.ActionType, attrs edtypes.Attrs) error {
	return toValidationError(validateAttributes(action, codec.Sanitize(attrs)))
}

func validateAttributes(action edtypes.ActionType, attrs edtypes.Attrs) error {
	var err error

	switch {
	case action == "":
		err = multierr.Append(err, &FieldError{Field: edtypes.AttrTargetAction, Message: "Action type is required"})
	case !action.IsValid():
		err = multierr.Append(err, &FieldError{Field: edtypes.AttrTargetAction, Message: fmt.Sprintf("Invalid action type: %s", action)})
	}

	if rules, ok := refTargetRules[action]; ok {
		err = multierr.Append(err, checkVar(action, edtypes.AttrRefTarget, attrs.Get(edtypes.AttrRefTarget), rules))
	}

	idRules := "omitempty,sectionid"
	if action == edtypes.ActionSequence {
		idRules = "required,sectionid"
	}
	err = multierr.Append(err, checkVar(action, edtypes.AttrID, attrs.Get(edtypes.AttrID), idRules))
	err = multierr.Append(err, checkVar(action, edtypes.AttrRequirements, attrs.Get(edtypes.AttrRequirements), "omitempty,requirement"))
	err = multierr.Append(err, checkDoIt(action, attrs.Get(edtypes.AttrDoIt)))

	return err
}

func checkDoIt(action edtypes.ActionType, doit string) error {
	switch {
	case doit == "":
		return nil
	case action != edtypes.ActionHighlight:
		return &FieldError{Field: edtypes.AttrDoIt, Message: "Show-only flag is allowed for highlight actions only"}
	case doit != edtypes.DoItShowOnly:
		return &FieldError{Field: edtypes.AttrDoIt, Message: `Show-only flag must be absent or "false"`}
	}
	return nil
}

// ValidateKind проверяет атрибуты перед применением к ноде вида kind. Проверяются атрибуты в том виде,
// в котором они будут сохранены: после очистки и значений по умолчанию вида.
// Атрибуты не должны менять вид ноды при повторном разборе HTML.
// Комментарий не несет действий, у секции действие всегда sequence.
func ValidateKind(kind edtypes.Kind, attrs edtypes.Attrs) error {
	stored := schema.BuildAttributes(kind, codec.Sanitize(attrs))
	err := checkKindMarkup(kind, stored)

	switch kind {
	case edtypes.KindComment:
	case edtypes.KindSequence:
		err = multierr.Append(err, validateAttributes(edtypes.ActionSequence, stored))
	case edtypes.KindListItem:
		// Элемент списка без действия допустим: это обычный элемент с классом
		if stored.Has(edtypes.AttrTargetAction) {
			err = multierr.Append(err, validateAttributes(edtypes.ActionType(stored.Get(edtypes.AttrTargetAction)), stored))
		} else {
			err = multierr.Append(err, checkDoIt("", stored.Get(edtypes.AttrDoIt)))
		}
	default:
		err = multierr.Append(err, validateAttributes(edtypes.ActionType(stored.Get(edtypes.AttrTargetAction)), stored))
	}
	return toValidationError(err)
}

// checkKindMarkup проверяет, что HTML ноды с такими атрибутами распознается как тот же вид.
func checkKindMarkup(kind edtypes.Kind, attrs edtypes.Attrs) error {
	class := attrs.Get(edtypes.AttrClass)
	action := edtypes.ActionType(attrs.Get(edtypes.AttrTargetAction))

	var err error
	switch kind {
	case edtypes.KindSpan:
		if action == edtypes.ActionSequence {
			err = multierr.Append(err, &FieldError{Field: edtypes.AttrTargetAction, Message: "Sequence action requires a sequence section"})
		}
		if !edtypes.HasClass(class, edtypes.ClassInteractive) {
			err = multierr.Append(err, &FieldError{Field: edtypes.AttrClass, Message: `Interactive span class must include "interactive"`})
		}
		if edtypes.HasClass(class, edtypes.ClassComment) {
			err = multierr.Append(err, &FieldError{Field: edtypes.AttrClass, Message: `Interactive span class must not include "interactive-comment"`})
		}
	case edtypes.KindComment:
		if !edtypes.HasClass(class, edtypes.ClassComment) {
			err = multierr.Append(err, &FieldError{Field: edtypes.AttrClass, Message: `Comment class must include "interactive-comment"`})
		}
	case edtypes.KindSequence:
		if action != edtypes.ActionSequence {
			err = multierr.Append(err, &FieldError{Field: edtypes.AttrTargetAction, Message: "Sequence section action must be sequence"})
		}
	}
	return err
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	ve := &ValidationError{err: err}
	for _, e := range multierr.Errors(err) {
		if fe, ok := e.(*FieldError); ok {
			ve.Fields = append(ve.Fields, *fe)
		}
	}
	return ve
}
