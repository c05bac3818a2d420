package testkit

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

func TestFakeSSMClient_GetParameter(t *testing.T) {
	var nilClient *FakeSSMClient
	_, err := nilClient.GetParameter(context.Background(), &ssm.GetParameterInput{})
	require.Error(t, err)

	client := NewFakeSSMClient().Seed("/keys/private", "pem")
	_, err = client.GetParameter(context.Background(), nil)
	require.Error(t, err)

	out, err := client.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name:           aws.String("/keys/private"),
		WithDecryption: aws.Bool(true),
	})
	require.NoError(t, err)
	require.Equal(t, "pem", aws.ToString(out.Parameter.Value))
	require.Equal(t, []SSMGetCall{{Name: "/keys/private", WithDecryption: true}}, client.GetCalls)

	_, err = client.GetParameter(context.Background(), &ssm.GetParameterInput{Name: aws.String("missing")})
	var notFound *ssmtypes.ParameterNotFound
	require.True(t, errors.As(err, &notFound))

	client.GetErr = context.Canceled
	_, err = client.GetParameter(context.Background(), &ssm.GetParameterInput{Name: aws.String("/keys/private")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFakeSSMClient_PutParameter(t *testing.T) {
	client := NewFakeSSMClient()

	out, err := client.PutParameter(context.Background(), &ssm.PutParameterInput{
		Name:  aws.String("publickey-x"),
		Value: aws.String("dummy"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Version)

	_, err = client.PutParameter(context.Background(), &ssm.PutParameterInput{
		Name:  aws.String("publickey-x"),
		Value: aws.String("again"),
	})
	var exists *ssmtypes.ParameterAlreadyExists
	require.True(t, errors.As(err, &exists))

	_, err = client.PutParameter(context.Background(), &ssm.PutParameterInput{
		Name:      aws.String("publickey-x"),
		Value:     aws.String("again"),
		Overwrite: aws.Bool(true),
	})
	require.NoError(t, err)
	require.Equal(t, "again", client.Parameters["publickey-x"])
	require.Len(t, client.PutCalls, 3)
}
