package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ugmart/storefront/internal/domain/customer"
)

// AddressService is the address book use-case surface
type AddressService interface {
	List(ctx context.Context) ([]customer.Address, error)
	Create(ctx context.Context, draft customer.AddressDraft) (*customer.Address, error)
	Update(ctx context.Context, id string, draft customer.AddressDraft) (*customer.Address, error)
	Delete(ctx context.Context, id string) error
}

// AddressHandler serves the shopper's delivery addresses
type AddressHandler struct {
	BaseHandler
	service AddressService
}

// NewAddressHandler creates an AddressHandler
func NewAddressHandler(service AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// AddressRequest is the address form
type AddressRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"max=200"`
	PhoneNumber string `json:"phonenumber" binding:"required,phone"`
	District    string `json:"district" binding:"max=100"`
	Subcounty   string `json:"subcounty" binding:"max=100"`
	Village     string `json:"village" binding:"max=100"`
	IsDefault   bool   `json:"isDefault"`
}

func (r AddressRequest) draft() customer.AddressDraft {
	return customer.AddressDraft{
		Name:        r.Name,
		Email:       r.Email,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		District:    r.District,
		Subcounty:   r.Subcounty,
		Village:     r.Village,
		IsDefault:   r.IsDefault,
	}
}

func (h *AddressHandler) List(c *gin.Context) {
	addresses, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

func (h *AddressHandler) Create(c *gin.Context) {
	var req AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	addr, err := h.service.Create(c.Request.Context(), req.draft())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, addr)
}

func (h *AddressHandler) Update(c *gin.Context) {
	var req AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	addr, err := h.service.Update(c.Request.Context(), c.Param("id"), req.draft())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

func (h *AddressHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Address deleted", nil)
}
