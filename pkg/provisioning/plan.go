package provisioning

import (
	"time"

	"github.com/theory-cloud/cfkeypair"
	"github.com/theory-cloud/cfkeypair/pkg/accesswindow"
	"github.com/theory-cloud/cfkeypair/pkg/observability"
)

// ErrorTopicEnvVar carries Config.ErrorTopicARN into the handler.
const ErrorTopicEnvVar = "CFKEYPAIR_ERROR_NOTIFICATIONS_TOPIC_ARN"

// Plan is a Config resolved at a single point in time. The access window is fixed when the plan is
// built, so every backend grants and enforces the same interval.
type Plan struct {
	Config Config
	Window accesswindow.Window
}

func NewPlan(cfg Config, now time.Time) Plan {
	return Plan{Config: cfg, Window: accesswindow.New(now)}
}

func (p Plan) Timeout() time.Duration {
	return time.Duration(p.Config.TimeoutSeconds) * time.Second
}

// HandlerEnvironment returns the handler's environment. The parameter names may be unresolved
// deployment tokens.
func (p Plan) HandlerEnvironment(privateKeyParameter, publicKeyParameter string) map[string]string {
	env := map[string]string{
		cfkeypair.EnvPrivateKeyParameter: privateKeyParameter,
		cfkeypair.EnvPublicKeyParameter:  publicKeyParameter,
		observability.EnvLogLevel:        p.Config.LogLevel,
		observability.EnvLogFormat:       "json",
	}
	for k, v := range p.Window.Env() {
		env[k] = v
	}
	if p.Config.ErrorTopicARN != "" {
		env[ErrorTopicEnvVar] = p.Config.ErrorTopicARN
	}
	return env
}

// ReadConditions returns the IAM conditions attached to the private key read grant.
func (p Plan) ReadConditions() map[string]any {
	return p.Window.Conditions()
}

// CustomResourceProperties returns the properties sent with every lifecycle event.
func (p Plan) CustomResourceProperties() map[string]any {
	if p.Config.PhysicalResourceID == "" {
		return nil
	}
	return map[string]any{cfkeypair.PropertyPhysicalResourceID: p.Config.PhysicalResourceID}
}

// Outputs are the values a backend exposes after provisioning. Values may be deployment tokens.
type Outputs struct {
	PrivateKeyParameterName string
	PublicKeyParameterName  string
	PublicKeyEncoded        string
	PublicKeyID             string
	KeyGroupID              string
}

// Adapter materializes a Plan on a provisioning backend.
type Adapter interface {
	Provision(plan Plan) (Outputs, error)
}
