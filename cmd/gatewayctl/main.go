package main

import (
	"fmt"
	"os"

	"github.com/marketarea/gateway/cmd/gatewayctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "gatewayctl",
		Short: "Operator tool for the market-area gateway",
		Long:  "CLI tool for minting and inspecting backend credentials and probing backend connectivity",
	}

	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewProbeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
