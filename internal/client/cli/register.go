package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/contactbook/internal/validation"
	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

func (c *Cli) runSignup(ctx context.Context) error {
	c.io.Println("=== Sign Up ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
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

	// те же правила, что и на сервере, чтобы не тратить запрос
	if err := validation.ValidateSignup(email, username, password); err != nil {
		return err
	}

	resp, err := c.apiClient.Signup(ctx, pkgapi.SignupRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Account created!")
	c.io.Printf("Email: %s\n", resp.User.Email)
	c.io.Println(resp.Detail)
	c.io.Println()
	c.io.Println("Confirm your email, then run 'contacts login'.")

	return nil
}

func (c *Cli) runRequestEmail(ctx context.Context, args []string) error {
	email, err := c.firstArg(args, "Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail("email", email); err != nil {
		return err
	}

	msg, err := c.apiClient.RequestEmail(ctx, email)
	if err != nil {
		return err
	}
	c.io.Println(msg)
	return nil
}
