package orchestrators

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"tracker/internal/domain/subject"
)

var (
	inputValidator  *validator.Validate
	inputTranslator ut.Translator
)

// custom validation tags
const (
	notBlankTag      = "notblank"
	countTag         = "count"
	attendedTotalTag = "lte_total"
)

// customTranslations are the messages of the custom tags. {0} is the field label.
var customTranslations = map[string]string{
	notBlankTag:      "{0} cannot be empty.",
	countTag:         "{0} must be a whole number of 0 or more.",
	attendedTotalTag: "{0} cannot exceed Total.",
}

// tagErrors maps a failed tag to the domain error it stands for.
var tagErrors = map[string]error{
	notBlankTag:      subject.ErrEmptyName,
	countTag:         subject.ErrNegativeCount,
	attendedTotalTag: subject.ErrAttendedOverTotal,
}

// SubjectInput is one subject as the user typed it. Adds and in-place edits are
// both checked against it, so they accept the same values.
type SubjectInput struct {
	Name     string `label:"Subject name" validate:"notblank"`
	Attended string `label:"Attended" validate:"count"`
	Total    string `label:"Total" validate:"count"`
}

// Instantiate the validator for use.
func init() {
	inputValidator = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	inputTranslator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(inputValidator, inputTranslator)

	// Use the label tag in messages instead of Go struct names.
	inputValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("label")
	})

	// register custom validators
	_ = inputValidator.RegisterValidation(notBlankTag, notBlankValidation)
	_ = inputValidator.RegisterValidation(countTag, countValidation)
	inputValidator.RegisterStructValidation(subjectInputStructValidation, SubjectInput{})

	for tag, text := range customTranslations {
		registerCustomTranslation(tag, text)
	}
}

// registerCustomTranslation registers the message for a custom validation tag.
func registerCustomTranslation(tag, text string) {
	_ = inputValidator.RegisterTranslation(
		tag, inputTranslator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// validateSubjectInput checks typed input.
// PRE: none
// POST: Returns nil, or a *ValidationError whose message names every offending field
// and whose cause is the domain error of the first one
func validateSubjectInput(in SubjectInput) error {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: MsgInvalidSubject, Err: fmt.Errorf("%w: %v", subject.ErrInvalidInput, err)}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(inputTranslator))
	}
	cause, ok := tagErrors[fieldErrs[0].Tag()]
	if !ok {
		cause = subject.ErrInvalidInput
	}
	return &ValidationError{
		Message: strings.Join(msgs, " "),
		Err:     fmt.Errorf("%w: %v", cause, err),
	}
}

// Custom Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func countValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return subject.IsCount(str)
	}
	return false
}

// subjectInputStructValidation rejects attended > total once both counts are valid.
func subjectInputStructValidation(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(SubjectInput)
	if !ok || !subject.IsCount(in.Attended) || !subject.IsCount(in.Total) {
		return
	}
	attended, _ := strconv.Atoi(in.Attended)
	total, _ := strconv.Atoi(in.Total)
	if attended > total {
		sl.ReportError(in.Attended, "Attended", "Attended", attendedTotalTag, "")
	}
}
