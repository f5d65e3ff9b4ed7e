// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps HTTP route templates to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operational - Public
	"/healthz": SecurityPublic,
	"/metrics": SecurityPublic,

	// The payment provider redirects the payer here without our token
	"/api/v1/payments/capture": SecurityPublic,

	// ToolService - Access Protected
	"/api/v1/tools":      SecurityAccess,
	"/api/v1/tools/{id}": SecurityAccess,

	// RentalService - Access Protected
	"/api/v1/rents":              SecurityAccess,
	"/api/v1/rents/{id}":         SecurityAccess,
	"/api/v1/rents/{id}/approve": SecurityAccess,
	"/api/v1/rents/{id}/reject":  SecurityAccess,
	"/api/v1/rents/{id}/cancel":  SecurityAccess,

	// PaymentService - Access Protected
	"/api/v1/payments/orders": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route template
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
