// Package validation checks form input before it is sent to the backend.
// Messages are Chinese and match what the web client showed; the backend
// stays authoritative and repeats every check.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// FieldErrors maps a form field (its json name, with index for list items
// such as "shares[1].percentage") to its messages.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	return strings.Join(e.Lines(), "; ")
}

// Lines renders "field: msg1, msg2" sorted by field name.
func (e FieldErrors) Lines() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+strings.Join(e[k], ", "))
	}
	return lines
}

// First returns the first message for field, or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Validator validates the form structs in this package.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	now      func() time.Time
}

type Option func(*Validator)

// WithClock overrides the clock used by date-relative rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func New(opts ...Option) *Validator {
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ := uni.GetTranslator("zh")

	v := &Validator{
		validate: validator.New(),
		trans:    trans,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	_ = zh_translations.RegisterDefaultTranslations(v.validate, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, text := range ruleTexts {
		v.registerCustomTranslation(tag, text)
	}

	v.validate.RegisterStructValidation(v.workloadRules, WorkloadForm{})
	v.validate.RegisterStructValidation(passwordRules, PasswordForm{})
	return v
}

// registerCustomTranslation registers the message for a struct-level rule tag.
func (v *Validator) registerCustomTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(
		tag, v.trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validate checks form and returns FieldErrors when any rule fails.
func (v *Validator) Validate(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		key := fieldKey(fe.Namespace())
		out[key] = append(out[key], v.message(fe))
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	root, _, _ := strings.Cut(fe.Namespace(), ".")
	if msg, ok := fieldMessages[root+"."+fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Translate(v.trans)
}

// fieldKey strips the root struct name from a validator namespace.
func fieldKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
