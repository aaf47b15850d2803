package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/bantuankita/bantuankita/domain/model"
)

// offerSchema mirrors the public submission form limits
type offerSchema struct {
	Name         string `validate:"min=2,max=100"`
	Skill        string `validate:"min=3,max=200"`
	City         string `validate:"min=2,max=100"`
	PhoneNumber  string `validate:"min=10,max=15"`
	PaymentRange string `validate:"max=100"`
	Description  string `validate:"min=10,max=1000"`
}

var offerMessages = map[string]map[string]string{
	"Name":         {"min": "Nama minimal 2 karakter", "max": "Nama maksimal 100 karakter"},
	"Skill":        {"min": "Keahlian minimal 3 karakter", "max": "Keahlian maksimal 200 karakter"},
	"City":         {"min": "Kota minimal 2 karakter", "max": "Kota maksimal 100 karakter"},
	"PhoneNumber":  {"min": "Nomor HP minimal 10 digit", "max": "Nomor HP maksimal 15 digit"},
	"PaymentRange": {"max": "Tarif maksimal 100 karakter"},
	"Description":  {"min": "Deskripsi minimal 10 karakter", "max": "Deskripsi maksimal 1000 karakter"},
}

// OfferValidator checks a cleaned draft against the submission schema
type OfferValidator struct {
	validate *validator.Validate
}

func NewOfferValidator() *OfferValidator {
	return &OfferValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns *model.ValidationError listing every failed rule, in field order
func (v *OfferValidator) Validate(draft model.OfferDraft) error {
	err := v.validate.Struct(offerSchema(draft))
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &model.ValidationError{Messages: []string{"Validasi gagal"}}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := offerMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s tidak valid", fe.Field())
		}
		messages = append(messages, msg)
	}
	return &model.ValidationError{Messages: messages}
}
