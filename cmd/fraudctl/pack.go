package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
)

func packCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack [description]",
		Short: "Build a model artifact from a YAML or JSON description",
		Long: `Read a model description (format, kind, n_features, params, metadata),
validate it by building the classifier, and write the artifact to --out.
--out may be a local path or a gs://bucket/object URI.`,
		Args: cobra.ExactArgs(1),
		RunE: runPack,
	}

	cmd.Flags().StringP("out", "o", "model.json", "Artifact destination")
	cmd.Flags().Bool("gzip", true, "Gzip-compress the artifact")

	return cmd
}

func runPack(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	compress, _ := cmd.Flags().GetBool("gzip")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read description: %w", err)
	}
	a, err := parseDescription(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	data, err := ml.Encode(a, compress)
	if err != nil {
		return fmt.Errorf("invalid model description: %w", err)
	}

	store := artifactStore(cmd)
	defer store.Close()

	w, err := store.Create(cmd.Context(), out)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s artifact (%d features, %d bytes) to %s\n",
		a.Kind, a.NumFeatures, len(data), out)
	return nil
}

// parseDescription accepts YAML or JSON. The document is normalized through
// JSON so that params reach the decoder as raw JSON.
func parseDescription(raw []byte) (ml.Artifact, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return ml.Artifact{}, err
	}
	if doc == nil {
		return ml.Artifact{}, fmt.Errorf("empty description")
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return ml.Artifact{}, err
	}

	var a ml.Artifact
	if err := json.Unmarshal(normalized, &a); err != nil {
		return ml.Artifact{}, err
	}
	return a, nil
}
