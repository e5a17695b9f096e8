package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/contactbook/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func TestNormalizeContactNumber(t *testing.T) {
	assert.Equal(t, "0501234567", NormalizeContactNumber("(050) 123-45-67"))
	assert.Equal(t, "0501234567", NormalizeContactNumber("050 123 45 67"))
	assert.Equal(t, "", NormalizeContactNumber("phone"))
}

func TestValidateContactNumber(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr bool
	}{
		{name: "plain 10 digits", number: "0501234567"},
		{name: "formatted 10 digits", number: "(050) 123-45-67"},
		{name: "dotted 10 digits", number: "050.123.45.67"},
		{name: "9 digits", number: "050123456", wantErr: true},
		{name: "11 digits", number: "05012345678", wantErr: true},
		{name: "11 digits formatted", number: "+1 050 123 4567", wantErr: true},
		{name: "no digits", number: "call me", wantErr: true},
		{name: "empty", number: "", wantErr: true},
		{name: "too long raw value", number: "050-----123-----45-----67", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContactNumber(tt.number)
			if tt.wantErr {
				var vErr *Error
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "contact_number", vErr.Field)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseBirthday(t *testing.T) {
	got, err := ParseBirthday("1990-04-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.April, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseBirthday("05.04.1990")
	assert.Error(t, err)

	_, err = ParseBirthday("")
	assert.Error(t, err)
}

func TestValidateBirthday(t *testing.T) {
	today := time.Date(2024, time.April, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		birthday time.Time
		name     string
		wantErr  bool
	}{
		{name: "past", birthday: time.Date(1990, time.April, 5, 0, 0, 0, 0, time.UTC)},
		{name: "today", birthday: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{name: "tomorrow", birthday: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC), wantErr: true},
		{name: "next year", birthday: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBirthday(tt.birthday, today)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Invalid birthday")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateContact(t *testing.T) {
	today := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	valid := func() *models.Contact {
		return &models.Contact{
			FirstName:             "Taras",
			LastName:              "Shevchenko",
			Email:                 "taras@example.com",
			ContactNumber:         "(050) 123-45-67",
			Birthday:              time.Date(1990, time.March, 9, 0, 0, 0, 0, time.UTC),
			AdditionalInformation: strPtr("poet"),
		}
	}

	require.NoError(t, ValidateContact(valid(), today))

	tests := []struct {
		mutate func(c *models.Contact)
		name   string
		field  string
	}{
		{name: "empty first name", field: "first_name", mutate: func(c *models.Contact) { c.FirstName = "" }},
		{name: "long first name", field: "first_name", mutate: func(c *models.Contact) { c.FirstName = strings.Repeat("a", 16) }},
		{name: "long last name", field: "last_name", mutate: func(c *models.Contact) { c.LastName = strings.Repeat("b", 16) }},
		{name: "bad email", field: "email", mutate: func(c *models.Contact) { c.Email = "taras" }},
		{name: "bad number", field: "contact_number", mutate: func(c *models.Contact) { c.ContactNumber = "123" }},
		{name: "future birthday", field: "birthday", mutate: func(c *models.Contact) { c.Birthday = today.AddDate(0, 0, 1) }},
		{name: "long notes", field: "additional_information", mutate: func(c *models.Contact) {
			c.AdditionalInformation = strPtr(strings.Repeat("n", 251))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)

			err := ValidateContact(c, today)
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateContact_MaxLengthsAccepted(t *testing.T) {
	today := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	c := &models.Contact{
		FirstName:             strings.Repeat("Я", MaxNameLen),
		LastName:              strings.Repeat("b", MaxNameLen),
		Email:                 "x@example.com",
		ContactNumber:         "0501234567",
		Birthday:              today,
		AdditionalInformation: strPtr(strings.Repeat("n", MaxAdditionalInfoLen)),
	}
	assert.NoError(t, ValidateContact(c, today))
}
