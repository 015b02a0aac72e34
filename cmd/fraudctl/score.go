package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/application/usecase"
	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
	grpcpresentation "github.com/fraudshield/fraud-analyzer/internal/presentation/grpc"
	"github.com/fraudshield/fraud-analyzer/pkg/observability"
)

// scoreLine is one line of score output: a response or the error for that record.
type scoreLine struct {
	*dto.InferResponse
	Error string `json:"error,omitempty"`
	Index int    `json:"index"`
}

type inferFunc func(ctx context.Context, req dto.InferRequest) (*dto.InferResponse, error)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [transactions.json]",
		Short: "Score a JSON array of transactions",
		Long: `Score each transaction in a JSON array and print one JSON result per line.
By default the transactions are scored in-process against --model (heuristic
scores when the artifact is missing). With --server they are sent to a running
fraud analyzer over gRPC.`,
		Args: cobra.ExactArgs(1),
		RunE: runScore,
	}

	cmd.Flags().StringP("model", "m", "", "Model artifact location for in-process scoring")
	cmd.Flags().String("server", "", "gRPC address of a running fraud analyzer")
	cmd.Flags().Duration("timeout", 30*time.Second, "Model load or per-request timeout")
	cmd.Flags().String("log-level", "warn", "Log level for in-process scoring")

	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	logLevel, _ := cmd.Flags().GetString("log-level")

	if modelPath != "" && server != "" {
		return fmt.Errorf("--model and --server are mutually exclusive")
	}

	records, err := readTransactions(args[0])
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  logLevel,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	var infer inferFunc
	if server != "" {
		client, err := grpcpresentation.NewClient(server)
		if err != nil {
			return err
		}
		defer client.Close()
		infer = func(ctx context.Context, req dto.InferRequest) (*dto.InferResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return client.Infer(ctx, &req)
		}
	} else {
		handle := model.AbsentModel()
		if modelPath != "" {
			store := artifactStore(cmd)
			handle = ml.NewLoader(store, timeout, logger).Load(cmd.Context(), modelPath)
			_ = store.Close()
		}
		uc := usecase.NewInferTransaction(service.NewScoringEngine(handle), nil, nil, logger)
		infer = func(ctx context.Context, req dto.InferRequest) (*dto.InferResponse, error) {
			resp, err := uc.Execute(ctx, req)
			if err != nil {
				return nil, err
			}
			return &resp, nil
		}
	}

	return scoreAll(cmd.Context(), cmd.OutOrStdout(), records, infer)
}

func readTransactions(path string) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%s: expected a JSON array of transactions: %w", path, err)
	}
	return records, nil
}

// scoreAll reports per-record failures inline and keeps going.
func scoreAll(ctx context.Context, w io.Writer, records []json.RawMessage, infer inferFunc) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		line := scoreLine{Index: i}

		var req dto.InferRequest
		if err := json.Unmarshal(rec, &req); err != nil {
			line.Error = err.Error()
		} else if resp, err := infer(ctx, req); err != nil {
			line.Error = err.Error()
		} else {
			line.InferResponse = resp
		}

		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
