package customer

import (
	"strings"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// Address is a saved delivery address. Uganda addresses are located by
// district, subcounty and village rather than street and postcode.
type Address struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phonenumber"`
	District    string `json:"district"`
	Subcounty   string `json:"subcounty"`
	Village     string `json:"village"`
	IsDefault   bool   `json:"isDefault"`
}

// AddressDraft is the create/update form
type AddressDraft struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phonenumber"`
	District    string `json:"district"`
	Subcounty   string `json:"subcounty"`
	Village     string `json:"village"`
	IsDefault   bool   `json:"isDefault"`
}

// Normalize trims every text field
func (d *AddressDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Address = strings.TrimSpace(d.Address)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.District = strings.TrimSpace(d.District)
	d.Subcounty = strings.TrimSpace(d.Subcounty)
	d.Village = strings.TrimSpace(d.Village)
}

// Validate enforces the required contact fields
func (d *AddressDraft) Validate() error {
	if d.Name == "" || d.Email == "" || d.PhoneNumber == "" {
		return shared.InvalidInput("Name, email and phone number are required")
	}
	if !shared.ValidEmail(d.Email) {
		return shared.InvalidInput("Please enter a valid email address")
	}
	return nil
}

// DefaultAddress picks the default address, else the first one
func DefaultAddress(addresses []Address) *Address {
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	if len(addresses) > 0 {
		return &addresses[0]
	}
	return nil
}
