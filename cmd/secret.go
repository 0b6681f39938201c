package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/farm-management/internal/crypto"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a random credential encryption secret",
	Long:  `Generate a random secret suitable for the SECURITY_ENCRYPTION_SECRET environment variable. Rotating the secret invalidates every stored tenant database credential, so re-encrypt them after a rotation.`,
	Run: func(cmd *cobra.Command, args []string) {
		secret, err := crypto.GenerateRandomSecret()
		if err != nil {
			log.Fatalf("failed to generate secret: %v", err)
		}
		fmt.Println(secret)
	},
}
