package sports

import (
	"context"
	"crypto/tls"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// NewLogger installs the process-wide text logger and returns it.
func NewLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// GetClientOptions builds Temporal client options from TEMPORAL_HOST,
// TEMPORAL_NAMESPACE and, for anything but a local dev server,
// TEMPORAL_API_KEY. Missing settings exit the process.
func GetClientOptions() client.Options {
	logger := NewLogger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, relying on environment variables")
	}

	address := requireEnv("TEMPORAL_HOST")
	namespace := requireEnv("TEMPORAL_NAMESPACE")

	opts := client.Options{
		HostPort:  address,
		Namespace: namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	}

	if isLocalTemporal(address) {
		return opts
	}

	opts.ConnectionOptions = client.ConnectionOptions{
		TLS: &tls.Config{},
		DialOptions: []grpc.DialOption{
			grpc.WithUnaryInterceptor(namespaceInterceptor(namespace)),
		},
	}
	opts.Credentials = client.NewAPIKeyStaticCredentials(requireEnv("TEMPORAL_API_KEY"))
	return opts
}

func isLocalTemporal(address string) bool {
	return address == "localhost:7233" || address == "host.docker.internal:7233"
}

// namespaceInterceptor adds the temporal-namespace header Temporal Cloud
// routes API key requests by.
func namespaceInterceptor(namespace string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "temporal-namespace", namespace)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		slog.Error(key + " environment variable is not set")
		os.Exit(1)
	}
	return val
}
