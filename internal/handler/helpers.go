package handler

import (
	"errors"
	"strconv"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stemsi/exstem-proctor/internal/validator"
)

// parseQuestionID reads the numeric :id path parameter. Any integer parses;
// ids missing from the bank are a 404 further down.
func parseQuestionID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// validationFields returns translated field errors when err came from the
// validator, or nil for decode errors.
func validationFields(err error) map[string]string {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	return validator.TranslateErrors(err)
}
