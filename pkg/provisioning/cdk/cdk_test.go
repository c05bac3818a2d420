package cdk

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/cfkeypair/pkg/accesswindow"
	"github.com/theory-cloud/cfkeypair/pkg/provisioning"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node is required for CDK synthesis")
	}
}

func handlerAsset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, handlerEntrypoint), []byte("#!/bin/sh\n"), 0o755))
	return dir
}

func synth(t *testing.T, cfg provisioning.Config) (assertions.Template, provisioning.Outputs) {
	t.Helper()

	app := awscdk.NewApp(&awscdk.AppProps{Outdir: jsii.String(t.TempDir())})
	adapter := NewAdapter(app, WithCode(awslambda.Code_FromAsset(jsii.String(handlerAsset(t)), nil)))
	out, err := adapter.Provision(provisioning.NewPlan(cfg, testNow))
	require.NoError(t, err)
	return assertions.Template_FromStack(adapter.Stack(), nil), out
}

func TestKeyPairGenerator_Resources(t *testing.T) {
	requireNode(t)

	template, out := synth(t, provisioning.DefaultConfig())

	template.ResourceCountIs(jsii.String("AWS::EC2::KeyPair"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::EC2::KeyPair"), map[string]any{
		"KeyType":   "rsa",
		"KeyFormat": "pem",
	})
	template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]any{
		"Type":  "String",
		"Value": provisioning.PublicKeyPlaceholder,
		"Name":  assertions.Match_StringLikeRegexp(jsii.String("^publickey-")),
	})
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]any{
		"Runtime": "provided.al2023",
		"Handler": "bootstrap",
		"Timeout": 30,
		"Environment": map[string]any{
			"Variables": assertions.Match_ObjectLike(&map[string]any{
				accesswindow.EnvNotBefore: "2026-03-01T12:00:00.000Z",
				accesswindow.EnvNotAfter:  "2026-03-01T15:00:00.000Z",
				"PRIVATEKEY_PARAMETER":    assertions.Match_AnyValue(),
				"PUBLICKEY_PARAMETER":     assertions.Match_AnyValue(),
			}),
		},
	})
	template.HasResourceProperties(jsii.String("AWS::Logs::LogGroup"), map[string]any{
		"RetentionInDays": 1,
	})
	template.ResourceCountIs(jsii.String("AWS::CloudFormation::CustomResource"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::CloudFront::PublicKey"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::CloudFront::KeyGroup"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(1))

	require.NotEmpty(t, out.PublicKeyEncoded)
	require.NotEmpty(t, out.KeyGroupID)
}

func TestKeyPairGenerator_ReadGrantIsTimeBounded(t *testing.T) {
	requireNode(t)

	template, _ := synth(t, provisioning.DefaultConfig())

	template.HasResourceProperties(jsii.String("AWS::IAM::Policy"), map[string]any{
		"PolicyDocument": assertions.Match_ObjectLike(&map[string]any{
			"Statement": assertions.Match_ArrayWith(&[]any{
				assertions.Match_ObjectLike(&map[string]any{
					"Action": assertions.Match_ArrayWith(&[]any{"ssm:GetParameter"}),
					"Condition": map[string]any{
						"DateGreaterThanEquals": map[string]any{"aws:CurrentTime": "2026-03-01T12:00:00.000Z"},
						"DateLessThan":          map[string]any{"aws:CurrentTime": "2026-03-01T15:00:00.000Z"},
					},
				}),
			}),
		}),
	})
}

func TestKeyPairGenerator_OptionalSettings(t *testing.T) {
	requireNode(t)

	disabled := false
	cfg := provisioning.DefaultConfig()
	cfg.PhysicalResourceID = "abc"
	cfg.LogRetentionDays = 7
	cfg.DemoDistribution = &disabled

	template, out := synth(t, cfg)

	template.HasResourceProperties(jsii.String("AWS::CloudFormation::CustomResource"), map[string]any{
		"physicalResourceId": "abc",
	})
	template.HasResourceProperties(jsii.String("AWS::Logs::LogGroup"), map[string]any{
		"RetentionInDays": 7,
	})
	template.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(0))
	template.ResourceCountIs(jsii.String("AWS::CloudFront::KeyGroup"), jsii.Number(0))
	require.Empty(t, out.KeyGroupID)
}

func TestAdapter_RequiresScope(t *testing.T) {
	t.Parallel()

	_, err := NewAdapter(nil).Provision(provisioning.NewPlan(provisioning.DefaultConfig(), testNow))
	require.Error(t, err)

	var adapter *Adapter
	_, err = adapter.Provision(provisioning.NewPlan(provisioning.DefaultConfig(), testNow))
	require.Error(t, err)
}

func TestAdapter_RejectsMissingAssetAndBadConfig(t *testing.T) {
	requireNode(t)

	app := awscdk.NewApp(&awscdk.AppProps{Outdir: jsii.String(t.TempDir())})

	cfg := provisioning.DefaultConfig()
	cfg.HandlerAssetPath = filepath.Join(t.TempDir(), "missing")
	_, err := NewAdapter(app).Provision(provisioning.NewPlan(cfg, testNow))
	require.Error(t, err)

	cfg.TimeoutSeconds = 0
	_, err = NewAdapter(app, WithCode(awslambda.Code_FromAsset(jsii.String(handlerAsset(t)), nil))).
		Provision(provisioning.NewPlan(cfg, testNow))
	require.ErrorIs(t, err, provisioning.ErrInvalidConfig)
}

func TestCheckHandlerAsset(t *testing.T) {
	t.Parallel()

	require.Error(t, checkHandlerAsset(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, checkHandlerAsset(t.TempDir()))
	require.NoError(t, checkHandlerAsset(handlerAsset(t)))

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, handlerEntrypoint), 0o755))
	require.Error(t, checkHandlerAsset(dir))
}

func TestRetention(t *testing.T) {
	t.Parallel()

	require.Equal(t, awslogs.RetentionDays_ONE_DAY, retention(1))
	require.Equal(t, awslogs.RetentionDays_ONE_WEEK, retention(7))
	require.Equal(t, awslogs.RetentionDays_TEN_YEARS, retention(3653))
	require.Equal(t, awslogs.RetentionDays_ONE_DAY, retention(2))
}
