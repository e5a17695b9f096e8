package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	authData, err := c.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", authData.Email)
	if authData.ExpiresAt != 0 {
		c.io.Printf("Session valid until: %s\n", time.Unix(authData.ExpiresAt, 0).Format(time.RFC3339))
	}

	return nil
}
