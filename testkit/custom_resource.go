package testkit

import (
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
)

type CustomResourceEventOptions struct {
	RequestType        cfn.RequestType
	RequestID          string
	LogicalResourceID  string
	PhysicalResourceID string
	StackID            string
	ResourceType       string

	// Properties are copied into ResourceProperties. A non-nil PropertyPhysicalResourceID is
	// written under the "physicalResourceId" key.
	Properties                 map[string]any
	PropertyPhysicalResourceID *string
}

// CustomResourceEvent builds a provider-framework onEvent payload with stable defaults.
func CustomResourceEvent(opts CustomResourceEventOptions) cfn.Event {
	requestType := opts.RequestType
	if strings.TrimSpace(string(requestType)) == "" {
		requestType = cfn.RequestCreate
	}
	requestID := strings.TrimSpace(opts.RequestID)
	if requestID == "" {
		requestID = "req-1"
	}
	logicalID := strings.TrimSpace(opts.LogicalResourceID)
	if logicalID == "" {
		logicalID = "CloudFrontKeyPairCustomResource"
	}
	stackID := strings.TrimSpace(opts.StackID)
	if stackID == "" {
		stackID = "arn:aws:cloudformation:us-east-1:000000000000:stack/keypair/00000000-0000-0000-0000-000000000000"
	}
	resourceType := strings.TrimSpace(opts.ResourceType)
	if resourceType == "" {
		resourceType = "AWS::CloudFormation::CustomResource"
	}

	props := make(map[string]any, len(opts.Properties)+2)
	props["ServiceToken"] = "arn:aws:lambda:us-east-1:000000000000:function:provider"
	for k, v := range opts.Properties {
		props[k] = v
	}
	if opts.PropertyPhysicalResourceID != nil {
		props["physicalResourceId"] = *opts.PropertyPhysicalResourceID
	}

	return cfn.Event{
		RequestType:        requestType,
		RequestID:          requestID,
		ResponseURL:        "https://cloudformation-custom-resource-response.invalid/" + requestID,
		ResourceType:       resourceType,
		PhysicalResourceID: strings.TrimSpace(opts.PhysicalResourceID),
		LogicalResourceID:  logicalID,
		StackID:            stackID,
		ResourceProperties: props,
	}
}

func CreateEvent() cfn.Event {
	return CustomResourceEvent(CustomResourceEventOptions{RequestType: cfn.RequestCreate})
}

func UpdateEvent() cfn.Event {
	return CustomResourceEvent(CustomResourceEventOptions{RequestType: cfn.RequestUpdate})
}

func DeleteEvent() cfn.Event {
	return CustomResourceEvent(CustomResourceEventOptions{RequestType: cfn.RequestDelete})
}
