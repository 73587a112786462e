package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

var (
	attendanceStatusTag  = "attendancestatus"
	attendanceStatusText = "status must be one of P, M, CM, A, ABANDON, D"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(attendanceStatusTag, attendanceStatusValidation)
	core.RegisterCustomTranslation(validate, translator, attendanceStatusTag, attendanceStatusText)
}

func attendanceStatusValidation(fl validator.FieldLevel) bool {
	_, err := ParseStatus(fl.Field().String())
	return err == nil
}
