// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	perr "bugprint/internal/platform/errors"
	"bugprint/internal/platform/logger"
)

// MaxBodyBytes caps a request body; a bug report with logs fits well under it
const MaxBodyBytes = 1 << 20

// FieldLevel is what a custom validation func sees
type FieldLevel = validator.FieldLevel

// ValidatorSvc pairs the validator with its english translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Get returns the process wide validator, building it on first use
// messages name fields by their json tag
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// RegisterValidationMsg adds a custom tag and the message shown when it fails
// {0} in msg is replaced by the field name
func RegisterValidationMsg(tag, msg string, fn validator.Func) error {
	svc := Get()
	if err := svc.Validator.RegisterValidation(tag, fn); err != nil {
		return err
	}
	return svc.Validator.RegisterTranslation(tag, svc.Translator,
		func(t ut.Translator) error { return t.Add(tag, msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			out, _ := t.T(tag, fe.Field())
			return out
		},
	)
}

// ParseJSON decodes one JSON object into T and validates it
// unknown fields, trailing data and oversized bodies are rejected;
// an empty body is fine for GET and DELETE and an error otherwise
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero T
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			switch r.Method {
			case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
				return zero, nil
			}
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := Get().Validator.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return zero, perr.JSONErrf("validation error")
		}
		field, msg := ValidationFieldAndMessage(err)
		return zero, perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
	}
	return dst, nil
}

// ValidationFieldAndMessage returns the first failing field and its translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &verrs) && len(verrs) > 0:
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	return "", err.Error()
}
