package instance

import "os"

// GetID returns the gateway instance identifier or a default value.
func GetID() string {
	if id := os.Getenv("GATEWAY_INSTANCE"); id != "" {
		return id
	}
	return "gateway-0"
}
