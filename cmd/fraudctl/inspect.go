package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fraudshield/fraud-analyzer/internal/domain/valueobject"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
)

// inspection is what inspect prints for an artifact.
type inspection struct {
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Source      string            `json:"source" yaml:"source"`
	Format      string            `json:"format" yaml:"format"`
	Kind        string            `json:"kind" yaml:"kind"`
	Capability  string            `json:"capability" yaml:"capability"`
	Threshold   float64           `json:"threshold" yaml:"threshold"`
	NumFeatures int               `json:"n_features" yaml:"n_features"`
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [location]",
		Short: "Describe a model artifact",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	cmd.Flags().StringP("output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	store := artifactStore(cmd)
	defer store.Close()

	c, a, err := ml.Read(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	info := ml.Describe(args[0], a, c)
	return writeDocument(cmd.OutOrStdout(), output, inspection{
		Metadata:    info.Metadata,
		Source:      info.Source,
		Format:      info.Format,
		Kind:        info.Kind,
		Capability:  info.Capability,
		Threshold:   valueobject.ExplainModel.Threshold(),
		NumFeatures: info.NumFeatures,
	})
}

func writeDocument(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}
