package cfkeypair

import (
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
)

// Status is the reconciliation outcome reported to the provisioning framework.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "Failed"
)

const (
	// DefaultPhysicalResourceID is used when the event does not carry its own identifier.
	DefaultPhysicalResourceID = "PublicKeyGenerator"

	PropertyPhysicalResourceID = "physicalResourceId"

	// AttributePublicKeyEncoded is the custom resource attribute holding the derived key.
	AttributePublicKeyEncoded = "PublicKeyEncoded"
)

type ResponseData struct {
	PublicKeyEncoded string `json:"PublicKeyEncoded,omitempty"`
}

// Response is the reconciliation result returned to the custom resource provider.
type Response struct {
	Status             Status       `json:"Status"`
	LogicalResourceID  string       `json:"LogicalResourceId"`
	PhysicalResourceID string       `json:"PhysicalResourceId"`
	RequestID          string       `json:"RequestId"`
	Data               ResponseData `json:"Data"`
}

func newResponse(event cfn.Event, status Status, physicalResourceID, publicKey string) Response {
	return Response{
		Status:             status,
		LogicalResourceID:  event.LogicalResourceID,
		PhysicalResourceID: physicalResourceID,
		RequestID:          event.RequestID,
		Data:               ResponseData{PublicKeyEncoded: publicKey},
	}
}

// PhysicalResourceID returns the caller-supplied identifier from the event's resource properties,
// or DefaultPhysicalResourceID when it is absent or empty.
func PhysicalResourceID(event cfn.Event) string {
	if raw, ok := event.ResourceProperties[PropertyPhysicalResourceID]; ok {
		if id, ok := raw.(string); ok && strings.TrimSpace(id) != "" {
			return id
		}
	}
	return DefaultPhysicalResourceID
}
