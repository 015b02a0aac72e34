package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fraudshield/fraud-analyzer/pkg/tlsutil"
)

func certsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a development CA and gRPC server certificate",
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")
			hosts, _ := cmd.Flags().GetStringSlice("host")
			validity, _ := cmd.Flags().GetDuration("validity")

			if err := tlsutil.WriteDevCertificates(outDir, tlsutil.DevCertOptions{
				Hosts:        hosts,
				Organization: "fraudshield",
				Validity:     validity,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "GRPC_TLS_CERT_FILE=%s\nGRPC_TLS_KEY_FILE=%s\n",
				filepath.Join(outDir, tlsutil.ServerFile),
				filepath.Join(outDir, tlsutil.ServerKeyFile),
			)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "certs", "Output directory")
	cmd.Flags().StringSlice("host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs for the server certificate")
	cmd.Flags().Duration("validity", 365*24*time.Hour, "Server certificate lifetime")

	return cmd
}
