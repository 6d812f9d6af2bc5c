package core_test

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/amss/core"
)

func TestInitValidators_termTag(t *testing.T) {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	type payload struct {
		Term int `json:"term" validate:"required,term"`
	}

	for term, wantErr := range map[int]bool{1: false, 2: false, 3: false, 4: true, -1: true} {
		err := validate.Struct(payload{Term: term})
		if gotErr := err != nil; gotErr != wantErr {
			t.Errorf("term %d: error = %v, wantErr %v", term, err, wantErr)
		}
	}

	// the error reports the json field name
	err := validate.Struct(payload{Term: 9})
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrs) != 1 {
		t.Fatalf("error = %v, want a single validation error", err)
	}
	if vErrs[0].Field() != "term" {
		t.Errorf("field = %s, want term", vErrs[0].Field())
	}
	if msg := vErrs[0].Translate(translator); msg != "term must be 1, 2 or 3" {
		t.Errorf("translation = %q", msg)
	}
}
