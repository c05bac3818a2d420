package cdk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/cfkeypair"
	"github.com/theory-cloud/cfkeypair/pkg/provisioning"
)

// Adapter provisions a Plan as a CDK stack under its scope, usually an awscdk.App.
type Adapter struct {
	scope      constructs.Construct
	stackProps *awscdk.StackProps
	code       awslambda.Code

	stack awscdk.Stack
}

var _ provisioning.Adapter = (*Adapter)(nil)

type AdapterOption func(*Adapter)

// WithStackProps sets account, region and other stack-level properties.
func WithStackProps(props *awscdk.StackProps) AdapterOption {
	return func(a *Adapter) {
		a.stackProps = props
	}
}

// WithCode replaces the handler asset.
func WithCode(code awslambda.Code) AdapterOption {
	return func(a *Adapter) {
		a.code = code
	}
}

func NewAdapter(scope constructs.Construct, opts ...AdapterOption) *Adapter {
	a := &Adapter{scope: scope}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Provision adds the key-pair stack, and the sample distribution when enabled, to the scope.
// The returned outputs are deployment tokens.
func (a *Adapter) Provision(plan provisioning.Plan) (provisioning.Outputs, error) {
	if a == nil || a.scope == nil {
		return provisioning.Outputs{}, errors.New("provisioning/cdk: scope is nil")
	}
	if err := plan.Config.Validate(); err != nil {
		return provisioning.Outputs{}, err
	}
	if a.code == nil {
		if err := checkHandlerAsset(plan.Config.HandlerAssetPath); err != nil {
			return provisioning.Outputs{}, err
		}
	}

	stack := awscdk.NewStack(a.scope, jsii.String(plan.Config.StackName()), a.stackProps)
	generator := NewKeyPairGenerator(stack, "CloudFrontKeyPairGenerator", &KeyPairGeneratorProps{
		Plan: plan,
		Code: a.code,
	})

	out := provisioning.Outputs{
		PrivateKeyParameterName: *generator.PrivateKeyParameter.ParameterName(),
		PublicKeyParameterName:  *generator.PublicKeyParameter.ParameterName(),
		PublicKeyEncoded:        *generator.CustomResource.GetAttString(jsii.String(cfkeypair.AttributePublicKeyEncoded)),
		PublicKeyID:             *generator.PublicKey.PublicKeyId(),
	}

	if plan.Config.DemoDistributionEnabled() {
		keyGroup := newDemoDistribution(stack, generator, plan.Config.OriginDomain)
		out.KeyGroupID = *keyGroup.KeyGroupId()
		awscdk.NewCfnOutput(stack, jsii.String("KeyGroupId"), &awscdk.CfnOutputProps{Value: keyGroup.KeyGroupId()})
	}

	awscdk.NewCfnOutput(stack, jsii.String("PublicKeyId"), &awscdk.CfnOutputProps{Value: generator.PublicKey.PublicKeyId()})
	awscdk.NewCfnOutput(stack, jsii.String("PrivateKeyParameterName"), &awscdk.CfnOutputProps{Value: generator.PrivateKeyParameter.ParameterName()})
	awscdk.NewCfnOutput(stack, jsii.String("AccessWindow"), &awscdk.CfnOutputProps{Value: jsii.String(plan.Window.String())})

	a.stack = stack
	return out, nil
}

// Stack returns the stack created by the last Provision call.
func (a *Adapter) Stack() awscdk.Stack {
	return a.stack
}

// newDemoDistribution puts a distribution behind a key group trusting the generated public key.
func newDemoDistribution(scope constructs.Construct, generator *KeyPairGenerator, originDomain string) awscloudfront.KeyGroup {
	publicKey := awscloudfront.PublicKey_FromPublicKeyId(scope, jsii.String("CloudFrontPublicKey"), generator.PublicKey.PublicKeyId())

	keyGroup := awscloudfront.NewKeyGroup(scope, jsii.String("KeyGroup"), &awscloudfront.KeyGroupProps{
		Items: &[]awscloudfront.IPublicKey{publicKey},
	})

	awscloudfront.NewDistribution(scope, jsii.String("Distribution"), &awscloudfront.DistributionProps{
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:           awscloudfrontorigins.NewHttpOrigin(jsii.String(originDomain), nil),
			TrustedKeyGroups: &[]awscloudfront.IKeyGroup{keyGroup},
		},
	})
	return keyGroup
}

func checkHandlerAsset(dir string) error {
	info, err := os.Stat(filepath.Join(dir, handlerEntrypoint))
	if err != nil {
		return fmt.Errorf("provisioning/cdk: handler asset: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("provisioning/cdk: handler asset %s is a directory", filepath.Join(dir, handlerEntrypoint))
	}
	return nil
}
