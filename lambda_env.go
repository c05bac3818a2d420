package cfkeypair

import "os"

// IsLambda reports whether the process runs inside the AWS Lambda execution environment.
func IsLambda() bool {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return true
	}
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		return true
	}
	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		return true
	}
	if os.Getenv("AWS_EXECUTION_ENV") != "" {
		return true
	}
	return false
}
