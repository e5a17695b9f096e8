package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/contactbook/internal/validation"
)

func (c *Cli) runForgotPassword(ctx context.Context, args []string) error {
	email, err := c.firstArg(args, "Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail("email", email); err != nil {
		return err
	}

	msg, err := c.apiClient.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	c.io.Println(msg)
	return nil
}

func (c *Cli) runResetPassword(ctx context.Context, args []string) error {
	token, err := c.firstArg(args, "Reset token: ")
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("reset token is required")
	}

	password, err := c.io.ReadPassword("New password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	if err := validation.ValidatePassword("new_password", password); err != nil {
		return err
	}

	msg, err := c.apiClient.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	c.io.Println(msg)
	return nil
}
