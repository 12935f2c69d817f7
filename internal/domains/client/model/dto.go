package model

import (
	"regexp"

	"library-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var peselPattern = regexp.MustCompile(`^[0-9]{11}$`)

// ========================================
// WRITE DTOs
// ========================================

type CreateClientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Pesel       string `json:"pesel"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

func (r CreateClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Pesel,
			validation.Required,
			validation.Match(peselPattern).Error("pesel must be exactly 11 digits"),
		),
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.Length(1, 255)),
		validation.Field(&r.PhoneNumber, validation.Required, validation.Length(1, 15)),
	)
}

func (r CreateClientRequest) ToClient() *Client {
	return &Client{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Pesel:       r.Pesel,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
}

type UpdateClientRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Pesel       *string `json:"pesel"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

func (r UpdateClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Pesel,
			validation.NilOrNotEmpty,
			validation.Match(peselPattern).Error("pesel must be exactly 11 digits"),
		),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat, validation.Length(1, 255)),
		validation.Field(&r.PhoneNumber, validation.NilOrNotEmpty, validation.Length(1, 15)),
	)
}

func (r UpdateClientRequest) Apply(c *Client) {
	if r.FirstName != nil {
		c.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		c.LastName = *r.LastName
	}
	if r.Pesel != nil {
		c.Pesel = *r.Pesel
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.PhoneNumber != nil {
		c.PhoneNumber = *r.PhoneNumber
	}
}

// ========================================
// READ DTOs
// ========================================

type ListClientsRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

type ListClientsResponse struct {
	Clients    []Client         `json:"clients"`
	Pagination utils.Pagination `json:"pagination"`
}
