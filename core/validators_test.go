package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type request struct {
		Date   string `json:"date" validate:"omitempty,isodate"`
		Status string `json:"status" validate:"required"`
	}

	tests := []struct {
		name string
		req  request
		want map[string]string
	}{
		{name: "valid", req: request{Date: "2024-01-08", Status: "P"}},
		{name: "date is optional", req: request{Status: "P"}},
		{
			name: "bad date & missing status",
			req:  request{Date: "08/01/2024"},
			want: map[string]string{
				"date":   "date must be formatted as YYYY-MM-DD",
				"status": "this field is required",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Equal(t, tt.want, TranslateErrors(vErrs, translator))
		})
	}
}
