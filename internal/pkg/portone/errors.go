package portone

import "fmt"

// GatewayAuthError means no access token could be obtained.
type GatewayAuthError struct {
	Code    int
	Message string
}

func (e *GatewayAuthError) Error() string {
	return fmt.Sprintf("portone: access token request failed: code=%d message=%s", e.Code, e.Message)
}

// GatewayLookupError means the payment record could not be fetched.
type GatewayLookupError struct {
	ImpUID  string
	Code    int
	Message string
}

func (e *GatewayLookupError) Error() string {
	return fmt.Sprintf("portone: payment lookup for %s failed: code=%d message=%s", e.ImpUID, e.Code, e.Message)
}
