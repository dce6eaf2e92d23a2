package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/validation"
)

type signup struct {
	Name     string `json:"name" validate:"notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6"`
}

func TestStruct(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		err := validation.Struct(&signup{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		assert.NoError(t, err)
	})

	t.Run("reports every failing field with its message", func(t *testing.T) {
		err := validation.Struct(signup{Name: "   ", Email: "not-an-email", Password: "123"})
		require.Error(t, err)

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 3)

		assert.Equal(t, validation.FieldError{Msg: "Name is required", Param: "name", Location: "body"}, verrs[0])
		assert.Equal(t, "Please include a valid email", verrs[1].Msg)
		assert.Equal(t, "email", verrs[1].Param)
		assert.Equal(t, "password is invalid", verrs[2].Msg)
	})

	t.Run("single message has no param", func(t *testing.T) {
		verrs := validation.Single("User already exists")
		require.Len(t, verrs, 1)
		assert.Empty(t, verrs[0].Param)
		assert.Equal(t, "User already exists", verrs.Error())
	})
}
