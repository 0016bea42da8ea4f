package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nestodo/nestodo/internal/services/auth"
)

// NewCreateUserCmd creates the create-user command
func NewCreateUserCmd() *cobra.Command {
	var username, password, email string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Bootstrap a user account",
		Long:  "Create a user account directly against the configured storage backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			store, err := openConfiguredStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
				}
			}()

			var emailPtr *string
			if email != "" {
				emailPtr = &email
			}

			// The token secret is irrelevant here; only Register is used.
			service := auth.New(store, "unused", 0, zap.NewNop())
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			user, err := service.Register(ctx, username, password, emailPtr)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("✓ Created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Optional email address")
	return cmd
}
