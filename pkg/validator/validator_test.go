package validator

import (
	"testing"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRule(t *testing.T) {
	v := validatorv10.New()
	require.NoError(t, v.RegisterValidation("password", password))

	type payload struct {
		Password string `validate:"password"`
	}

	cases := []struct {
		password string
		ok       bool
	}{
		{"secret12", true},
		{"s3cretpassword", true},
		{"short1", false},
		{"aaaaaaaa", false},
		{"12345678", false},
		{"", false},
	}

	for _, tc := range cases {
		err := v.Struct(payload{Password: tc.password})
		if tc.ok {
			assert.NoError(t, err, "password %q should pass", tc.password)
		} else {
			assert.Error(t, err, "password %q should fail", tc.password)
		}
	}
}

func TestRegisterIsSafeToCallTwice(t *testing.T) {
	Register()
	Register()
}
