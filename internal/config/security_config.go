// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps gRPC methods and HTTP routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// BookingService - Public
	"/toolshare.booking.v1.BookingService/Ping": SecurityPublic,

	// BookingService - Access Protected
	"/toolshare.booking.v1.BookingService/RequestBooking":    SecurityAccess,
	"/toolshare.booking.v1.BookingService/ApproveBooking":    SecurityAccess,
	"/toolshare.booking.v1.BookingService/DeclineBooking":    SecurityAccess,
	"/toolshare.booking.v1.BookingService/RescheduleBooking": SecurityAccess,
	"/toolshare.booking.v1.BookingService/CancelBooking":     SecurityAccess,
	"/toolshare.booking.v1.BookingService/MarkReturned":      SecurityAccess,
	"/toolshare.booking.v1.BookingService/ConfirmReturn":     SecurityAccess,
	"/toolshare.booking.v1.BookingService/GetRental":         SecurityAccess,

	// ListingService - Access Protected
	"/toolshare.booking.v1.ListingService/UpdateListingTier": SecurityAccess,
	"/toolshare.booking.v1.ListingService/AddBlackout":       SecurityAccess,
	"/toolshare.booking.v1.ListingService/RemoveBlackout":    SecurityAccess,

	// Query API - Public
	"GET /api/v1/health": SecurityPublic,
	"GET /api/v1/listings/{listing_id}/unavailable-dates": SecurityPublic,
	"GET /api/v1/listings/{listing_id}/quote":             SecurityPublic,
	"GET /api/v1/listings/{listing_id}/blackouts":         SecurityPublic,
	"POST /api/v1/tier-preview":                           SecurityPublic,

	// Query API - Access Protected
	"GET /api/v1/me/rentals":  SecurityAccess,
	"GET /api/v1/me/lendings": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
