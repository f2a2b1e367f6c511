package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ptbr_translations "github.com/go-playground/validator/v10/translations/pt_BR"

	"todoservice/internal/core/model/response"
)

const (
	LocaleEnglish    = "en"
	LocalePortuguese = "pt_BR"
)

// Error carries every violation found in a request.
type Error struct {
	Violations []response.ValidationError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func AsError(err error) (*Error, bool) {
	var validationErr *Error
	ok := errors.As(err, &validationErr)
	return validationErr, ok
}

type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
	now      func() time.Time
}

type Option func(*Validator)

func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(jsonFieldName)

	if err := v.validate.RegisterValidation("notpast", v.notPast); err != nil {
		panic(err)
	}

	english := en.New()
	v.uni = ut.New(english, english, pt_BR.New())

	enTrans, _ := v.uni.GetTranslator(LocaleEnglish)
	if err := en_translations.RegisterDefaultTranslations(v.validate, enTrans); err != nil {
		panic(err)
	}

	ptTrans, _ := v.uni.GetTranslator(LocalePortuguese)
	if err := ptbr_translations.RegisterDefaultTranslations(v.validate, ptTrans); err != nil {
		panic(err)
	}

	v.addCustomTranslations(enTrans, englishMessages)
	v.addCustomTranslations(ptTrans, portugueseMessages)

	return v
}

// Translator returns the translator for locale, falling back to English.
func (v *Validator) Translator(locale string) ut.Translator {
	trans, found := v.uni.FindTranslator(strings.ReplaceAll(locale, "-", "_"))
	if !found {
		trans, _ = v.uni.GetTranslator(LocaleEnglish)
	}
	return trans
}

func (v *Validator) notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}

	return !t.Before(v.now())
}

func (v *Validator) addCustomTranslations(trans ut.Translator, messages map[string]string) {
	for key, text := range messages {
		if err := trans.Add(key, text, true); err != nil {
			panic(err)
		}
	}

	v.validate.RegisterTranslation("notpast", trans, func(ut ut.Translator) error {
		return nil
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(msgNotPast, fe.Field())
		return t
	})
}

// validateStruct runs the struct tags and appends translated violations,
// skipping fields that already failed to decode.
func (v *Validator) validateStruct(c *collector, s interface{}) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.addMessage("body", err.Error())
		return
	}

	for _, fieldError := range validationErrors {
		field := fieldPath(fieldError.Namespace())
		if c.failed(field) {
			continue
		}

		c.addMessage(field, fieldError.Translate(c.trans))
	}
}

// fieldPath drops the struct name from a validator namespace:
// "CreateTodoRequest.tags[0]" becomes "tags[0]".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
