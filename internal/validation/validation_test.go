package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=7,notpassword"`
}

func TestNotPasswordRule(t *testing.T) {
	v := New()

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"plain word allowed", "secret1", false},
		{"long phrase allowed", "red fish blue fish", false},
		{"contains password", "mypassword1", true},
		{"mixed case still caught", "MyPassWord1", true},
		{"exact word", "password", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(signupForm{Email: "mike@example.com", Password: tc.password})
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEchoValidator(t *testing.T) {
	ev := &EchoValidator{V: New()}

	require.NoError(t, ev.Validate(signupForm{Email: "mike@example.com", Password: "secret1"}))
	assert.Error(t, ev.Validate(signupForm{Email: "not-an-email", Password: "secret1"}))
	assert.Error(t, ev.Validate(signupForm{Email: "mike@example.com", Password: "short"}))
}
