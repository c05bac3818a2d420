package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/theory-cloud/cfkeypair"
	"github.com/theory-cloud/cfkeypair/pkg/accesswindow"
	"github.com/theory-cloud/cfkeypair/pkg/logger"
	"github.com/theory-cloud/cfkeypair/pkg/observability"
	obszap "github.com/theory-cloud/cfkeypair/pkg/observability/zap"
	"github.com/theory-cloud/cfkeypair/pkg/secretstore"
)

type runtimeDeps struct {
	lookupEnv func(string) (string, bool)
	newStore  func(ctx context.Context, opts secretstore.ClientOptions) (secretstore.Store, error)
	newLogger func(ctx context.Context, cfg observability.LoggerConfig) (observability.StructuredLogger, error)
}

func defaultDeps() runtimeDeps {
	return runtimeDeps{
		lookupEnv: os.LookupEnv,
		newStore:  secretstore.NewFromConfig,
		newLogger: func(ctx context.Context, cfg observability.LoggerConfig) (observability.StructuredLogger, error) {
			notifier, err := obszap.NotifierFromEnv(ctx, os.LookupEnv)
			if err != nil {
				return nil, err
			}
			l, err := obszap.New(cfg, obszap.WithNotifier(notifier))
			if err != nil {
				return nil, err
			}
			return l, nil
		},
	}
}

// buildHandler wires the handler for the Lambda runtime and installs its logger as the process-wide
// logger. When the access window variables are set, reads outside the window are refused
// in-process as well as by IAM.
func buildHandler(ctx context.Context, deps runtimeDeps) (*cfkeypair.Handler, error) {
	log, err := deps.newLogger(ctx, observability.LoggerConfigFromEnv(deps.lookupEnv))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.SetLogger(log)

	store, err := deps.newStore(ctx, secretstore.ClientOptionsFromEnv(deps.lookupEnv))
	if err != nil {
		return nil, fmt.Errorf("secret store: %w", err)
	}

	window, ok, err := accesswindow.FromEnv(deps.lookupEnv)
	if err != nil {
		return nil, err
	}
	if ok {
		store = secretstore.Windowed(store, window, cfkeypair.RealClock{})
		log = log.WithField("access_window", window.String())
	}

	return cfkeypair.New(
		cfkeypair.WithStore(store),
		cfkeypair.WithLogger(log),
		cfkeypair.WithEnv(deps.lookupEnv),
	), nil
}

func main() {
	ctx := context.Background()
	h, err := buildHandler(ctx, defaultDeps())
	if err != nil {
		logger.Logger().Error("keypair-handler startup failed", map[string]any{"error": err.Error()})
		_ = logger.Flush(ctx)
		fmt.Fprintf(os.Stderr, "keypair-handler: FAIL: %v\n", err)
		os.Exit(1)
	}
	// Error notifications are sent asynchronously; flush before the sandbox is frozen.
	lambda.Start(func(ctx context.Context, payload json.RawMessage) (cfkeypair.Response, error) {
		defer func() { _ = logger.Flush(ctx) }()
		return h.HandleRaw(ctx, payload)
	})
}
