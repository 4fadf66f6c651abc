package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schemeportal/pkg/secrets"
)

func secretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Issue tokens for operator endpoints",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "scrape-token",
		Short: "Generate a /metrics bearer token and its hash",
		Long: `Generate a random bearer token for the Prometheus scraper together with the
bcrypt hash to set as METRICS_TOKEN_HASH on the server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := secrets.GenerateToken()
			if err != nil {
				return err
			}
			hash, err := secrets.HashToken(token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token: %s\n", token)
			fmt.Fprintf(out, "METRICS_TOKEN_HASH=%s\n", hash)
			return nil
		},
	})
	return cmd
}
