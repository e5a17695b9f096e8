package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	isAuth, err := c.authService.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !isAuth {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'contacts login' to authenticate.")
		return nil
	}

	authData, err := c.authService.Current(ctx)
	if err != nil {
		return err
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", authData.Email)

	if authData.ExpiresAt != 0 {
		expiresAt := time.Unix(authData.ExpiresAt, 0)
		c.io.Printf("Session expires: %s\n", expiresAt.Format(time.RFC3339))
		c.io.Printf("Time remaining: %s\n", time.Until(expiresAt).Round(time.Second))
	}

	return nil
}
