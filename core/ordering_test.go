package core

import (
	"reflect"
	"testing"
)

func TestParseOrderings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Ordering
	}{
		{name: "empty", raw: ""},
		{name: "single", raw: "student", want: []Ordering{{Field: "student", Ascending: true}}},
		{
			name: "many",
			raw:  "-absences, student",
			want: []Ordering{{Field: "absences"}, {Field: "student", Ascending: true}},
		},
		{name: "blank fields are skipped", raw: ",-,presence_rate,", want: []Ordering{{Field: "presence_rate", Ascending: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOrderings(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOrderings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrdering_String(t *testing.T) {
	if got := (Ordering{Field: "student", Ascending: true}).String(); got != "student ASC" {
		t.Errorf("String() = %q", got)
	}
	if got := (Ordering{Field: "absences"}).String(); got != "absences DESC" {
		t.Errorf("String() = %q", got)
	}
}
