package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pt_translations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	requiredTag  = "required"
	requiredText = "este campo é obrigatório"

	hasAtTag  = "has_at"
	hasAtText = "{0} deve conter \"@\""

	minTag  = "min"
	minText = "{0} deve ter pelo menos {1} caracteres"
)

// NewTranslator returns the pt_BR translator used for validation messages.
func NewTranslator() ut.Translator {
	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("pt_BR")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = pt_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(hasAtTag, hasAtValidation)
	RegisterCustomTranslation(validate, translator, hasAtTag, hasAtText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, minTag, minText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
// `text` may reference the field as {0} and the tag param as {1}.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// TranslateErrors flattens validator errors into FieldErrors. Any other error is returned as is.
func TranslateErrors(err error, translator ut.Translator) ([]FieldError, error) {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil, err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
	}
	return flds, nil
}

// Custom Global Validators

// hasAtValidation only checks for an "@", no further email validation is done.
func hasAtValidation(fl validator.FieldLevel) bool {
	return strings.Contains(fl.Field().String(), "@")
}
