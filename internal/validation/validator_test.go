package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Name      string `json:"name" validate:"required,min=2,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=30,bcryptlen"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

var signupMessages = Messages{
	"name.required":  "Name field is required",
	"name":           "Name must between 2 and 30 characters",
	"email.required": "Email field is required",
	"email.email":    "Email is not valid",
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()

	fields, err := Struct(signupForm{
		Name:      "Ada",
		Email:     "ada@example.com",
		Password:  "secret1",
		Password2: "secret1",
	}, signupMessages)
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestStruct_FieldMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		form  signupForm
		field string
		want  string
	}{
		{
			name:  "custom required message",
			form:  signupForm{Email: "a@b.co", Password: "secret1", Password2: "secret1"},
			field: "name",
			want:  "Name field is required",
		},
		{
			name:  "field fallback message",
			form:  signupForm{Name: "A", Email: "a@b.co", Password: "secret1", Password2: "secret1"},
			field: "name",
			want:  "Name must between 2 and 30 characters",
		},
		{
			name:  "length counts characters not bytes",
			form:  signupForm{Name: strings.Repeat("é", 31), Email: "a@b.co", Password: "secret1", Password2: "secret1"},
			field: "name",
			want:  "Name must between 2 and 30 characters",
		},
		{
			name:  "invalid email",
			form:  signupForm{Name: "Ada", Email: "nope", Password: "secret1", Password2: "secret1"},
			field: "email",
			want:  "Email is not valid",
		},
		{
			name:  "default min message",
			form:  signupForm{Name: "Ada", Email: "a@b.co", Password: "short", Password2: "short"},
			field: "password",
			want:  "password must be at least 6 characters",
		},
		{
			name:  "default bcryptlen message",
			form:  signupForm{Name: "Ada", Email: "a@b.co", Password: strings.Repeat("😀", 20), Password2: strings.Repeat("😀", 20)},
			field: "password",
			want:  "password must be at most 72 bytes",
		},
		{
			name:  "multibyte password within limits",
			form:  signupForm{Name: "Ada", Email: "a@b.co", Password: strings.Repeat("é", 30), Password2: strings.Repeat("é", 30)},
			field: "password",
			want:  "",
		},
		{
			name:  "default eqfield message",
			form:  signupForm{Name: "Ada", Email: "a@b.co", Password: "secret1", Password2: "secret2"},
			field: "password2",
			want:  "password2 must match password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fields, err := Struct(tt.form, signupMessages)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestStruct_ReportsEveryFailingField(t *testing.T) {
	t.Parallel()

	fields, err := Struct(signupForm{}, signupMessages)
	require.NoError(t, err)
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "password2")
}

func TestStruct_NonStruct(t *testing.T) {
	t.Parallel()

	_, err := Struct("not a struct", nil)
	assert.Error(t, err)
}
