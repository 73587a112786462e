package lesson

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

var (
	lessonStatusTag  = "lessonstatus"
	lessonStatusText = fmt.Sprintf("status must be one of %s", strings.Join(statusCodes(), ", "))
)

func statusCodes() []string {
	codes := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		codes = append(codes, string(s))
	}
	return codes
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(lessonStatusTag, lessonStatusValidation)
	core.RegisterCustomTranslation(validate, translator, lessonStatusTag, lessonStatusText)
}

// lessonStatusValidation accepts status codes (any casing) and display labels.
func lessonStatusValidation(fl validator.FieldLevel) bool {
	_, err := ParseStatus(fl.Field().String())
	return err == nil
}
