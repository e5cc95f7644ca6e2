package commands

import (
	"context"
	"fmt"

	"github.com/marketarea/gateway/internal/backend"
	"github.com/marketarea/gateway/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewProbeCmd creates the probe command.
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe backend connectivity",
		Long:  "Resolve the backend address the way the gateway does and probe its health and API endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client := backend.New(cfg.BackendBaseURL, zap.NewNop())
			ctx := context.Background()

			fmt.Printf("Backend URL:    %s\n", cfg.BackendBaseURL)
			fmt.Printf("Address source: %s\n", cfg.BackendAddressSource)
			fmt.Println()

			health := client.ProbeHealth(ctx)
			fmt.Printf("Health endpoint: %s\n", health.Status)
			if health.Detail != "" {
				fmt.Printf("  Detail: %s\n", health.Detail)
			}

			api := client.ProbeAPI(ctx)
			fmt.Printf("API endpoint:    %s\n", api.Status)
			if api.Detail != "" {
				fmt.Printf("  Detail: %s\n", api.Detail)
			}

			if health.Status != "connected" || api.Status != "connected" {
				return fmt.Errorf("backend is not fully reachable")
			}
			fmt.Println("\n✓ Backend is reachable")
			return nil
		},
	}

	return cmd
}
