package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxynet/blog/internal/openapi"
)

var openapiOut string

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the OpenAPI document for both services",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out, err := openapi.JSON(cmd.Context(), openapi.Document(cfg.Auth.CookieName))
		if err != nil {
			return fmt.Errorf("openapi: %w", err)
		}

		if openapiOut == "" {
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		}
		return os.WriteFile(openapiOut, append(out, '\n'), 0o644)
	},
}

func init() {
	openapiCmd.Flags().StringVar(&openapiOut, "write", "", "write the document to this file instead of stdout")
	rootCmd.AddCommand(openapiCmd)
}
