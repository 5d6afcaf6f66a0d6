package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptbr_translations "github.com/go-playground/validator/v10/translations/pt_BR"

	"github.com/example/intern-ledger/internal/application"
)

const (
	notBlankTag = "notblank"
	noSpaceTag  = "nospace"
)

var (
	requestValidator *validator.Validate
	translator       ut.Translator
)

func init() {
	requestValidator = validator.New(validator.WithRequiredStructEnabled())

	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	translator, _ = uni.GetTranslator("pt_BR")
	_ = ptbr_translations.RegisterDefaultTranslations(requestValidator, translator)

	// Report JSON field names instead of Go struct names.
	requestValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = requestValidator.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = requestValidator.RegisterValidation(noSpaceTag, func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(strings.TrimSpace(fl.Field().String()), " \t")
	})

	registerTranslation(notBlankTag, "{0} não pode ficar em branco")
	registerTranslation(noSpaceTag, "{0} não pode conter espaços")
}

func registerTranslation(tag, text string) {
	_ = requestValidator.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// decodeRequest reads a JSON body into dst and validates its struct tags.
// Malformed bodies return errBadRequestBody; tag violations return a
// *application.ValidationError keyed by JSON field name.
func decodeRequest(r *http.Request, dst any) error {
	if r.Body == nil {
		return errBadRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequestBody
	}
	return validateRequest(dst)
}

func validateRequest(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	vErr := &application.ValidationError{FieldErrors: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		vErr.FieldErrors[fe.Field()] = fe.Translate(translator)
	}
	return vErr
}
