package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/validation"
	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

func (c *Cli) runAdd(ctx context.Context) error {
	c.io.Println("=== Add Contact ===")
	c.io.Println()

	req, err := c.readContact(nil)
	if err != nil {
		return err
	}

	var contact *pkgapi.Contact
	err = c.withToken(ctx, func(token string) error {
		var err error
		contact, err = c.apiClient.CreateContact(ctx, token, *req)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Contact added successfully!")
	c.io.Printf("ID: %d\n", contact.ID)
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	id, err := parseID(args, "contacts edit <id>")
	if err != nil {
		return err
	}

	current, err := c.fetchContact(ctx, id)
	if err != nil {
		return err
	}

	c.io.Println("=== Edit Contact ===")
	c.io.Println("Press Enter to keep the current value.")
	c.io.Println()

	req, err := c.readContact(current)
	if err != nil {
		return err
	}

	err = c.withToken(ctx, func(token string) error {
		_, err := c.apiClient.UpdateContact(ctx, token, id, *req)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Contact updated successfully!")
	return nil
}

// readContact запрашивает поля контакта. Для current пустой ввод
// оставляет прежнее значение.
func (c *Cli) readContact(current *pkgapi.Contact) (*pkgapi.ContactRequest, error) {
	var base pkgapi.Contact
	if current != nil {
		base = *current
	}

	var req pkgapi.ContactRequest
	var err error

	fields := []struct {
		dst    *string
		prompt string
		value  string
	}{
		{&req.FirstName, "First name", base.FirstName},
		{&req.LastName, "Last name", base.LastName},
		{&req.Email, "Email", base.Email},
		{&req.ContactNumber, "Phone", base.ContactNumber},
		{&req.Birthday, "Birthday (YYYY-MM-DD)", base.Birthday},
	}
	for _, f := range fields {
		if *f.dst, err = c.readWithDefault(f.prompt, f.value); err != nil {
			return nil, err
		}
	}

	info := ""
	if base.AdditionalInformation != nil {
		info = *base.AdditionalInformation
	}
	if info, err = c.readWithDefault("Notes (optional)", info); err != nil {
		return nil, err
	}
	if info != "" {
		req.AdditionalInformation = &info
	}

	if err := validateContactRequest(&req, time.Now()); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Cli) readWithDefault(prompt, value string) (string, error) {
	if value != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, value)
	}
	input, err := c.io.ReadInput(prompt + ": ")
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", prompt, err)
	}
	if input == "" {
		return value, nil
	}
	return input, nil
}

func validateContactRequest(req *pkgapi.ContactRequest, today time.Time) error {
	birthday, err := validation.ParseBirthday(req.Birthday)
	if err != nil {
		return err
	}
	return validation.ValidateContact(&models.Contact{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		ContactNumber:         req.ContactNumber,
		Birthday:              birthday,
		AdditionalInformation: req.AdditionalInformation,
	}, today)
}
