package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/shared"
)

func TestAddressDraft_Validate(t *testing.T) {
	d := AddressDraft{
		Name:        "  Aisha Namuli ",
		Email:       "aisha@example.ug",
		PhoneNumber: "0772 123456",
		District:    "Wakiso",
	}
	d.Normalize()
	assert.Equal(t, "Aisha Namuli", d.Name)
	require.NoError(t, d.Validate())

	missing := d
	missing.PhoneNumber = " "
	missing.Normalize()
	err := missing.Validate()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, "Name, email and phone number are required", err.Error())

	badEmail := d
	badEmail.Email = "aisha-at-example"
	assert.EqualError(t, badEmail.Validate(), "Please enter a valid email address")
}

func TestDefaultAddress(t *testing.T) {
	assert.Nil(t, DefaultAddress(nil))

	list := []Address{{ID: "1"}, {ID: "2", IsDefault: true}}
	assert.Equal(t, "2", DefaultAddress(list).ID)

	assert.Equal(t, "1", DefaultAddress(list[:1]).ID)
}
