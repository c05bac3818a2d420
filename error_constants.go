package cfkeypair

const (
	ErrorCodeConfiguration      = "keypair.configuration"
	ErrorCodeInvalidRequestType = "keypair.invalid_request_type"
	ErrorCodeInvalidEvent       = "keypair.invalid_event"
	ErrorCodeAccessDenied       = "keypair.access_denied"
	ErrorCodeNotFound           = "keypair.not_found"
	ErrorCodeMalformedKey       = "keypair.malformed_key"
	ErrorCodeUnavailable        = "keypair.unavailable"
	ErrorCodeInternal           = "keypair.internal"
)

const (
	errorMessageMissingPrivateKeyParameter = "private key parameter name is not set"
	errorMessageMissingStore               = "secret store is not configured"
	errorMessageInvalidRequestType         = "invalid request type"
	errorMessageInvalidEvent               = "custom resource event is not valid JSON"
	errorMessageAccessDenied               = "private key read denied"
	errorMessageNotFound                   = "private key parameter not found"
	errorMessageMalformedKey               = "private key is malformed"
	errorMessageUnavailable                = "secret store unavailable"
	errorMessageInternal                   = "internal error"
)
