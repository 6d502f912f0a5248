package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/skillguard/internal/hook"
	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/server"
)

// DefaultTimeout bounds a remote validation so the host tool is never kept waiting.
const DefaultTimeout = 2 * time.Second

// Client connects to a skillguard gRPC server.
type Client struct {
	conn *grpc.ClientConn
}

// New creates a client for addr. The connection is established lazily.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to skillguard server: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Validate asks the server for a verdict.
func (c *Client) Validate(ctx context.Context, ref string) (model.Verdict, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, server.ValidateMethod, wrapperspb.String(ref), out); err != nil {
		return model.Verdict{}, fmt.Errorf("remote validate: %w", err)
	}
	return server.VerdictFromStruct(out)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Remote is anything that can validate over the network.
type Remote interface {
	Validate(ctx context.Context, ref string) (model.Verdict, error)
}

// Fallback validates remotely and falls back to Local on any error, so an
// unreachable server never changes the outcome of a well-formed check.
type Fallback struct {
	Remote  Remote
	Local   hook.Validator
	Timeout time.Duration
	Log     *slog.Logger
}

// Validate implements hook.Validator.
func (f *Fallback) Validate(ref string) model.Verdict {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, err := f.Remote.Validate(ctx, ref)
	if err == nil {
		return v
	}

	log := f.Log
	if log == nil {
		log = slog.Default()
	}
	log.Warn("remote validation failed, using local policy", "error", err)
	return f.Local.Validate(ref)
}
