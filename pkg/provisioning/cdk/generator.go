// Package cdk provisions the key-pair stack with the AWS CDK.
package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/cfkeypair"
	"github.com/theory-cloud/cfkeypair/pkg/naming"
	"github.com/theory-cloud/cfkeypair/pkg/provisioning"
)

const handlerEntrypoint = "bootstrap"

type KeyPairGeneratorProps struct {
	Plan provisioning.Plan

	// Code is the handler bundle. Defaults to an asset at Plan.Config.HandlerAssetPath.
	Code awslambda.Code
}

// KeyPairGenerator creates an RSA key pair, derives its public key through a custom resource and
// registers it with CloudFront.
//
// The handler may read the private key only during the plan's access window.
type KeyPairGenerator struct {
	constructs.Construct

	PrivateKeyParameter awsssm.IStringParameter
	PublicKeyParameter  awsssm.StringParameter
	Function            awslambda.Function
	CustomResource      awscdk.CustomResource
	PublicKey           awscloudfront.PublicKey
}

func NewKeyPairGenerator(scope constructs.Construct, id string, props *KeyPairGeneratorProps) *KeyPairGenerator {
	this := constructs.NewConstruct(scope, jsii.String(id))
	plan := props.Plan

	code := props.Code
	if code == nil {
		code = awslambda.Code_FromAsset(jsii.String(plan.Config.HandlerAssetPath), nil)
	}

	keyPair := awsec2.NewKeyPair(this, jsii.String("CloudFrontKeyPair"), &awsec2.KeyPairProps{
		Type:   awsec2.KeyPairType_RSA,
		Format: awsec2.KeyPairFormat_PEM,
	})
	privateKey := keyPair.PrivateKey()

	publicKeyParameter := awsssm.NewStringParameter(this, jsii.String("PublicKeyParameter"), &awsssm.StringParameterProps{
		ParameterName: jsii.String(naming.PublicKeyParameterName(*awscdk.Names_UniqueId(scope))),
		StringValue:   jsii.String(provisioning.PublicKeyPlaceholder),
	})

	env := plan.HandlerEnvironment(*privateKey.ParameterName(), *publicKeyParameter.ParameterName())
	fn := awslambda.NewFunction(this, jsii.String("CloudFrontKeyPairGenerator"), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String(handlerEntrypoint),
		Code:         code,
		Timeout:      awscdk.Duration_Seconds(jsii.Number(float64(plan.Config.TimeoutSeconds))),
		Environment:  stringMap(env),
		LogGroup:     newLogGroup(this, "CloudFrontKeyPairGeneratorLogs", plan.Config.LogRetentionDays),
	})

	publicKeyParameter.GrantWrite(fn)

	conditions := plan.ReadConditions()
	for _, statement := range *privateKey.GrantRead(fn).PrincipalStatements() {
		statement.AddConditions(&conditions)
	}

	provider := customresources.NewProvider(this, jsii.String("CloudFrontKeyPairProvider"), &customresources.ProviderProps{
		OnEventHandler: fn,
		LogGroup:       newLogGroup(this, "CloudFrontKeyPairProviderLogs", plan.Config.LogRetentionDays),
	})

	resourceProps := &awscdk.CustomResourceProps{
		ServiceToken: provider.ServiceToken(),
	}
	if properties := plan.CustomResourceProperties(); properties != nil {
		resourceProps.Properties = &properties
	}
	resource := awscdk.NewCustomResource(this, jsii.String("CloudFrontKeyPairCustomResource"), resourceProps)

	publicKey := awscloudfront.NewPublicKey(this, jsii.String("PublicKey"), &awscloudfront.PublicKeyProps{
		EncodedKey: resource.GetAttString(jsii.String(cfkeypair.AttributePublicKeyEncoded)),
	})
	publicKey.Node().AddDependency(resource)

	return &KeyPairGenerator{
		Construct:           this,
		PrivateKeyParameter: privateKey,
		PublicKeyParameter:  publicKeyParameter,
		Function:            fn,
		CustomResource:      resource,
		PublicKey:           publicKey,
	}
}

func newLogGroup(scope constructs.Construct, id string, days int) awslogs.LogGroup {
	return awslogs.NewLogGroup(scope, jsii.String(id), &awslogs.LogGroupProps{
		Retention:     retention(days),
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})
}

func stringMap(in map[string]string) *map[string]*string {
	out := make(map[string]*string, len(in))
	for k, v := range in {
		out[k] = jsii.String(v)
	}
	return &out
}

var retentionByDays = map[int]awslogs.RetentionDays{
	1:    awslogs.RetentionDays_ONE_DAY,
	3:    awslogs.RetentionDays_THREE_DAYS,
	5:    awslogs.RetentionDays_FIVE_DAYS,
	7:    awslogs.RetentionDays_ONE_WEEK,
	14:   awslogs.RetentionDays_TWO_WEEKS,
	30:   awslogs.RetentionDays_ONE_MONTH,
	60:   awslogs.RetentionDays_TWO_MONTHS,
	90:   awslogs.RetentionDays_THREE_MONTHS,
	120:  awslogs.RetentionDays_FOUR_MONTHS,
	150:  awslogs.RetentionDays_FIVE_MONTHS,
	180:  awslogs.RetentionDays_SIX_MONTHS,
	365:  awslogs.RetentionDays_ONE_YEAR,
	400:  awslogs.RetentionDays_THIRTEEN_MONTHS,
	545:  awslogs.RetentionDays_EIGHTEEN_MONTHS,
	731:  awslogs.RetentionDays_TWO_YEARS,
	1096: awslogs.RetentionDays_THREE_YEARS,
	1827: awslogs.RetentionDays_FIVE_YEARS,
	2192: awslogs.RetentionDays_SIX_YEARS,
	2557: awslogs.RetentionDays_SEVEN_YEARS,
	2922: awslogs.RetentionDays_EIGHT_YEARS,
	3288: awslogs.RetentionDays_NINE_YEARS,
	3653: awslogs.RetentionDays_TEN_YEARS,
}

// retention maps a validated day count to its CDK enum, falling back to one day.
func retention(days int) awslogs.RetentionDays {
	if r, ok := retentionByDays[days]; ok {
		return r
	}
	return awslogs.RetentionDays_ONE_DAY
}
