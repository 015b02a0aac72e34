package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
)

// Client calls a remote FraudAnalyzer over the JSON codec.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target. Without extra options the connection is
// plaintext.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)))

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Infer calls FraudAnalyzer/Infer.
func (c *Client) Infer(ctx context.Context, req *dto.InferRequest) (*dto.InferResponse, error) {
	resp := new(dto.InferResponse)
	if err := c.conn.Invoke(ctx, MethodInfer, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Evaluate calls FraudAnalyzer/Evaluate.
func (c *Client) Evaluate(ctx context.Context, req *dto.RuleRequest) (*dto.RuleResponse, error) {
	resp := new(dto.RuleResponse)
	if err := c.conn.Invoke(ctx, MethodEvaluate, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Conn exposes the underlying connection, e.g. for health checks.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
