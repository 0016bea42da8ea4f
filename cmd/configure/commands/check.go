package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nestodo/nestodo/internal/config"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check backend connectivity",
		Long:  "Ping the configured storage backend and, if rate limiting is enabled, Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			failed := false

			store, err := openConfiguredStore()
			if err != nil {
				fmt.Printf("✗ Storage (%s): %v\n", cfg.StorageBackend, err)
				failed = true
			} else {
				if err := store.Ping(ctx); err != nil {
					fmt.Printf("✗ Storage (%s): %v\n", cfg.StorageBackend, err)
					failed = true
				} else {
					fmt.Printf("✓ Storage (%s) reachable\n", cfg.StorageBackend)
				}
				if err := store.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
				}
			}

			if cfg.RateLimitOn {
				opts, err := redis.ParseURL(cfg.RedisURL)
				if err != nil {
					fmt.Printf("✗ Redis: invalid URL: %v\n", err)
					failed = true
				} else {
					client := redis.NewClient(opts)
					if err := client.Ping(ctx).Err(); err != nil {
						fmt.Printf("✗ Redis: %v\n", err)
						failed = true
					} else {
						fmt.Println("✓ Redis reachable")
					}
					if err := client.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close redis connection: %v\n", err)
					}
				}
			}

			if failed {
				return fmt.Errorf("one or more backends are unreachable")
			}
			return nil
		},
	}
}
