// Package cfkeypair reconciles the CloudFront key-pair custom resource.
//
// The handler reads an RSA private key from the secret store, derives its SubjectPublicKeyInfo
// PEM and reports it to the custom resource provider as the PublicKeyEncoded attribute.
package cfkeypair

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/theory-cloud/cfkeypair/pkg/keyderive"
	"github.com/theory-cloud/cfkeypair/pkg/observability"
	"github.com/theory-cloud/cfkeypair/pkg/sanitization"
	"github.com/theory-cloud/cfkeypair/pkg/secretstore"
)

// Handler is the custom resource onEvent handler. It keeps no state between invocations.
type Handler struct {
	store     secretstore.Store
	deriver   keyderive.Deriver
	logger    observability.StructuredLogger
	clock     Clock
	ids       IDGenerator
	lookupEnv func(string) (string, bool)
}

type Option func(*Handler)

// New creates a handler. Without options it derives keys with keyderive.PEM, logs nowhere and
// reads configuration from the process environment; a Store must be supplied with WithStore.
func New(opts ...Option) *Handler {
	h := &Handler{
		deriver:   keyderive.PEM{},
		logger:    observability.NewNoOpLogger(),
		clock:     RealClock{},
		ids:       ULIDGenerator{},
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

func WithStore(store secretstore.Store) Option {
	return func(h *Handler) {
		h.store = store
	}
}

func WithDeriver(deriver keyderive.Deriver) Option {
	return func(h *Handler) {
		if deriver == nil {
			h.deriver = keyderive.PEM{}
			return
		}
		h.deriver = deriver
	}
}

func WithLogger(logger observability.StructuredLogger) Option {
	return func(h *Handler) {
		if logger == nil {
			h.logger = observability.NewNoOpLogger()
			return
		}
		h.logger = logger
	}
}

func WithClock(clock Clock) Option {
	return func(h *Handler) {
		if clock == nil {
			h.clock = RealClock{}
			return
		}
		h.clock = clock
	}
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(h *Handler) {
		if ids == nil {
			h.ids = ULIDGenerator{}
			return
		}
		h.ids = ids
	}
}

// WithEnv replaces os.LookupEnv as the configuration source.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(h *Handler) {
		if lookup == nil {
			h.lookupEnv = os.LookupEnv
			return
		}
		h.lookupEnv = lookup
	}
}

// Handle reconciles one lifecycle event.
//
// A missing private key parameter fails before dispatch and returns no response. Every other
// failure returns a Failed response together with the error, so the invoking framework can apply
// its own retry and alerting.
func (h *Handler) Handle(ctx context.Context, event cfn.Event) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := h.invocationLogger(ctx, event)
	log.Info("custom resource event received", eventFields(event))

	cfg, err := LoadConfig(h.lookupEnv)
	if err != nil {
		log.Error("handler configuration invalid", map[string]any{"error_code": CodeOf(err), "error": err.Error()})
		return Response{}, err
	}

	physicalResourceID := PhysicalResourceID(event)

	resp, err := h.dispatch(ctx, cfg, event, physicalResourceID)
	if err != nil {
		err = classifyError(err)
		log.Error("error handling custom resource event", map[string]any{
			"error_code":           CodeOf(err),
			"error":                err.Error(),
			"retryable":            Retryable(err),
			"physical_resource_id": physicalResourceID,
		})
		return newResponse(event, StatusFailed, physicalResourceID, ""), err
	}

	log.Info("custom resource event handled", map[string]any{
		"status":               string(resp.Status),
		"physical_resource_id": resp.PhysicalResourceID,
		"public_key_returned":  resp.Data.PublicKeyEncoded != "",
	})
	return resp, nil
}

// HandleRaw decodes payload as a custom resource event and passes it to Handle. Payloads that do
// not decode are logged in sanitized form and rejected without a response.
func (h *Handler) HandleRaw(ctx context.Context, payload json.RawMessage) (Response, error) {
	var event cfn.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		h.invocationLogger(ctx, event).Error("custom resource event rejected", map[string]any{
			"error_code": ErrorCodeInvalidEvent,
			"payload":    sanitization.SanitizeJSON(payload),
		})
		return Response{}, NewError(ErrorCodeInvalidEvent, errorMessageInvalidEvent).WithCause(err)
	}
	return h.Handle(ctx, event)
}

func (h *Handler) dispatch(ctx context.Context, cfg Config, event cfn.Event, physicalResourceID string) (Response, error) {
	switch event.RequestType {
	case cfn.RequestCreate, cfn.RequestUpdate:
		publicKey, err := h.derivePublicKey(ctx, cfg.PrivateKeyParameter)
		if err != nil {
			return Response{}, err
		}
		return newResponse(event, StatusSuccess, physicalResourceID, publicKey), nil
	case cfn.RequestDelete:
		return newResponse(event, StatusSuccess, physicalResourceID, ""), nil
	default:
		return Response{}, NewError(ErrorCodeInvalidRequestType,
			errorMessageInvalidRequestType+": "+strings.TrimSpace(string(event.RequestType)))
	}
}

func (h *Handler) derivePublicKey(ctx context.Context, parameterName string) (string, error) {
	if h.store == nil {
		return "", NewError(ErrorCodeConfiguration, errorMessageMissingStore)
	}
	privateKey, err := h.store.Get(ctx, parameterName, true)
	if err != nil {
		return "", err
	}
	return h.deriver.DerivePublicKey(privateKey)
}

func (h *Handler) invocationLogger(ctx context.Context, event cfn.Event) observability.StructuredLogger {
	requestID := ""
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		requestID = strings.TrimSpace(lc.AwsRequestID)
	}
	if requestID == "" {
		requestID = event.RequestID
	}

	log := h.logger.WithInvocation(observability.Invocation{
		RequestID:         requestID,
		InvocationID:      h.ids.NewID(),
		RequestType:       string(event.RequestType),
		LogicalResourceID: event.LogicalResourceID,
		StackID:           event.StackID,
	})
	if remaining := remainingMSFromContext(ctx, h.clock); remaining > 0 {
		log = log.WithField("remaining_ms", remaining)
	}
	return log
}

func eventFields(event cfn.Event) map[string]any {
	return map[string]any{
		"cfn_request_id":      event.RequestID,
		"resource_type":       event.ResourceType,
		"resource_properties": event.ResourceProperties,
	}
}

func remainingMSFromContext(ctx context.Context, clock Clock) int {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	now := time.Now()
	if clock != nil {
		now = clock.Now()
	}
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Millisecond)
}
