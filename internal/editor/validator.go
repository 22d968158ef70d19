// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/olegiv/academy-go/internal/model"
)

// ValidationErrors maps a form field (json name) to a readable message.
type ValidationErrors map[string]string

func (ve ValidationErrors) Error() string {
	fields := make([]string, 0, len(ve))
	for f := range ve {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, ve[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks editor forms with English messages keyed by json field.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// NewValidator builds a validator with the "palette" rule for ebook colors.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
		return model.IsValidColor(fl.Field().String())
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterTranslation("palette", trans,
		func(ut ut.Translator) error {
			return ut.Add("palette", "{0} must be one of the available colors", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("palette", fe.Field())
			return msg
		},
	)

	return &Validator{v: v, trans: trans}
}

// Check validates s and returns nil when every rule passes.
func (val *Validator) Check(s any) ValidationErrors {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	fields := make(ValidationErrors)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(val.trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}
