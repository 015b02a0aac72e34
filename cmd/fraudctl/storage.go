package main

import (
	"github.com/spf13/cobra"

	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/storage"
)

func artifactStore(cmd *cobra.Command) *storage.Router {
	creds, _ := cmd.Flags().GetString("gcs-credentials")
	return storage.NewRouter(storage.Options{GCSCredentialsFile: creds})
}
