package model

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClient() CreateClientRequest {
	return CreateClientRequest{
		FirstName:   "Anna",
		LastName:    "Nowak",
		Pesel:       "90010112345",
		Email:       "anna.nowak@example.com",
		PhoneNumber: "+48600100200",
	}
}

func TestCreateClientRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateClientRequest)
		field  string
	}{
		{"valid", func(r *CreateClientRequest) {}, ""},
		{"pesel too short", func(r *CreateClientRequest) { r.Pesel = "1234567890" }, "pesel"},
		{"pesel with letters", func(r *CreateClientRequest) { r.Pesel = "9001011234a" }, "pesel"},
		{"bad email", func(r *CreateClientRequest) { r.Email = "not-an-email" }, "email"},
		{"long first name", func(r *CreateClientRequest) { r.FirstName = strings.Repeat("a", 51) }, "first_name"},
		{"missing last name", func(r *CreateClientRequest) { r.LastName = "" }, "last_name"},
		{"long phone", func(r *CreateClientRequest) { r.PhoneNumber = "+4860010020030040" }, "phone_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validClient()
			tt.mutate(&req)

			err := req.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestUpdateClientRequest_Apply(t *testing.T) {
	email := "new@example.com"
	req := UpdateClientRequest{Email: &email}
	require.NoError(t, req.Validate())

	c := &Client{FirstName: "Jan", Email: "old@example.com"}
	req.Apply(c)

	assert.Equal(t, "Jan", c.FirstName)
	assert.Equal(t, email, c.Email)
}

func TestUpdateClientRequest_RejectsEmptyPesel(t *testing.T) {
	empty := ""
	assert.Error(t, UpdateClientRequest{Pesel: &empty}.Validate())
}
