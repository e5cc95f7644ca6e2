package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/marketarea/gateway/internal/identity"
	"github.com/marketarea/gateway/internal/token"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command group.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint and inspect backend credentials",
		Long:  "Mint short-lived backend credentials for manual API calls, or inspect an existing one",
	}

	cmd.AddCommand(newTokenMintCmd())
	cmd.AddCommand(newTokenInspectCmd())
	return cmd
}

func credentialSecret() (string, error) {
	secret := os.Getenv("CREDENTIAL_SECRET")
	if secret == "" {
		return "", fmt.Errorf("CREDENTIAL_SECRET is not set")
	}
	return secret, nil
}

func newTokenMintCmd() *cobra.Command {
	var (
		subject string
		email   string
		name    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a backend credential",
		Long:  "Mint a short-lived credential signed with CREDENTIAL_SECRET, for calling the backend directly during debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}

			secret, err := credentialSecret()
			if err != nil {
				return err
			}

			signer, err := token.NewSigner(secret, token.WithTTL(ttl))
			if err != nil {
				return fmt.Errorf("failed to create signer: %w", err)
			}

			credential, err := signer.Sign(identity.Claims{
				Subject: subject,
				Email:   email,
				Name:    name,
			})
			if err != nil {
				return fmt.Errorf("failed to mint credential: %w", err)
			}

			fmt.Println(credential)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Subject identifier for the credential (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&name, "name", "", "Display name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", token.DefaultTTL, "Credential lifetime")
	return cmd
}

func newTokenInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <credential>",
		Short: "Verify and print a backend credential",
		Long:  "Verify a credential against CREDENTIAL_SECRET and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := credentialSecret()
			if err != nil {
				return err
			}

			signer, err := token.NewSigner(secret)
			if err != nil {
				return fmt.Errorf("failed to create signer: %w", err)
			}

			claims, err := signer.Verify(args[0])
			if err != nil {
				return fmt.Errorf("credential is invalid: %w", err)
			}

			fmt.Printf("Subject: %s\n", claims.Subject)
			if claims.Email != "" {
				fmt.Printf("Email:   %s\n", claims.Email)
			}
			if claims.Name != "" {
				fmt.Printf("Name:    %s\n", claims.Name)
			}
			if claims.Picture != "" {
				fmt.Printf("Picture: %s\n", claims.Picture)
			}
			return nil
		},
	}

	return cmd
}
