package testkit_test

import (
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/cfkeypair/testkit"
)

func TestManualClock(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := testkit.NewManualClock(now)

	require.Equal(t, now, clock.Now())
	require.Equal(t, now.Add(time.Hour), clock.Advance(time.Hour))

	later := now.Add(24 * time.Hour)
	clock.Set(later)
	require.Equal(t, later, clock.Now())
}

func TestManualIDGenerator(t *testing.T) {
	ids := testkit.NewManualIDGenerator()
	ids.Queue("fixed")

	require.Equal(t, "fixed", ids.NewID())
	require.Equal(t, "test-id-1", ids.NewID())
	require.Equal(t, "test-id-2", ids.NewID())
}

func TestCustomResourceEvent_Defaults(t *testing.T) {
	event := testkit.CustomResourceEvent(testkit.CustomResourceEventOptions{})

	require.Equal(t, cfn.RequestCreate, event.RequestType)
	require.Equal(t, "req-1", event.RequestID)
	require.Equal(t, "CloudFrontKeyPairCustomResource", event.LogicalResourceID)
	require.NotContains(t, event.ResourceProperties, "physicalResourceId")
	require.Contains(t, event.ResourceProperties, "ServiceToken")
}

func TestCustomResourceEvent_PhysicalResourceIDProperty(t *testing.T) {
	id := "abc"
	event := testkit.CustomResourceEvent(testkit.CustomResourceEventOptions{
		RequestType:                cfn.RequestDelete,
		PropertyPhysicalResourceID: &id,
		Properties:                 map[string]any{"extra": 1},
	})

	require.Equal(t, cfn.RequestDelete, event.RequestType)
	require.Equal(t, "abc", event.ResourceProperties["physicalResourceId"])
	require.Equal(t, 1, event.ResourceProperties["extra"])
}

func TestRSAKeyPair_IsStable(t *testing.T) {
	first := testkit.RSAKeyPair(t)
	second := testkit.RSAKeyPair(t)

	require.Equal(t, first.PKCS1PEM, second.PKCS1PEM)
	require.Contains(t, first.PKCS1PEM, "BEGIN RSA PRIVATE KEY")
	require.Contains(t, first.PKCS8PEM, "BEGIN PRIVATE KEY")
	require.Contains(t, first.PublicPEM, "BEGIN PUBLIC KEY")
}
