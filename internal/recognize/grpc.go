package recognize

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rbright/livescribe/internal/pcm"
)

// Metadata keys carried on every gRPC transcription call.
const (
	MetadataModel      = "x-livescribe-model"
	MetadataLanguage   = "x-livescribe-language"
	MetadataSampleRate = "x-livescribe-sample-rate"
)

// GRPC calls a unary recognizer: PCM16 bytes in, transcript string out.
type GRPC struct {
	conn    *grpc.ClientConn
	method  string
	model   string
	timeout time.Duration
}

func loadGRPC(ctx context.Context, opts Options) (*GRPC, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is empty")
	}
	if !strings.HasPrefix(opts.GRPCMethod, "/") {
		return nil, fmt.Errorf("invalid grpc method %q", opts.GRPCMethod)
	}

	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", endpoint, err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	conn.Connect()
	if err := waitForReady(readyCtx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("wait for %q: %w", endpoint, err)
	}
	if err := checkHealth(readyCtx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &GRPC{conn: conn, method: opts.GRPCMethod, model: opts.Model, timeout: opts.Timeout}, nil
}

// Transcribe implements Engine.
func (g *GRPC) Transcribe(ctx context.Context, samples []float32, language string) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	callCtx = metadata.AppendToOutgoingContext(callCtx,
		MetadataModel, g.model,
		MetadataLanguage, language,
		MetadataSampleRate, strconv.Itoa(pcm.SampleRate),
	)

	var reply wrapperspb.StringValue
	if err := g.conn.Invoke(callCtx, g.method, wrapperspb.Bytes(pcm.Denormalize(samples)), &reply); err != nil {
		return "", fmt.Errorf("invoke %s: %w", g.method, err)
	}
	return strings.TrimSpace(reply.GetValue()), nil
}

// Close implements Engine.
func (g *GRPC) Close() error {
	return g.conn.Close()
}

// waitForReady blocks until the connection is Ready or the context ends.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("connection shut down")
		}
		if !conn.WaitForStateChange(ctx, state) {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("still %s: %w", state, err)
			}
			return fmt.Errorf("still %s", state)
		}
	}
}

// checkHealth asks the standard health service whether the server is serving.
// Servers that do not implement it are assumed healthy once connected.
func checkHealth(ctx context.Context, conn *grpc.ClientConn) error {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if status.Code(err) == codes.Unimplemented {
		return nil
	}
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health check: %s", resp.GetStatus())
	}
	return nil
}
