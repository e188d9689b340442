package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "mesero"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort        = "8080"
	DefaultLogLevel    = "info"
	DefaultEnvironment = "production"

	DefaultWhatsAppAPIURL = "http://localhost:8081"

	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultGeminiTimeout = 20 * time.Second

	DefaultBookingEventsTopic = "booking-events"
	DefaultBookingEventsDLQ   = "booking-events-dlq"
	DefaultNotifierGroupID    = "mesero-notifier"

	DefaultRestaurantPhone    = "+34961234567"
	DefaultRestaurantTimezone = "Europe/Madrid"
	DefaultMaxAdvanceDays     = 35
	DefaultOpeningTime        = "13:00"
	DefaultClosingTime        = "15:30"
	DefaultSlotIntervalMin    = 30
	DefaultSlotCapacity       = 30
	DefaultDayCapacity        = 120
	DefaultMaxOnlinePartySize = 20
	DefaultRiceMinServings    = 2
	DefaultSessionIdleTTL     = 30 * time.Minute

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultHistoryDepth = 20
)

// Weekdays without service unless an operator forces a date open.
var DefaultClosedWeekdays = []string{"monday", "tuesday"}

// Year-agnostic dd/MM dates that are never bookable online, overrides included.
var DefaultSpecialDates = []string{"24/12", "25/12", "31/12", "01/01", "06/01"}

// Arroces offered for pre-order. Matching is accent- and case-insensitive.
var DefaultRiceMenu = []string{
	"Arroz de chorizo",
	"Arroz meloso de pulpo y gambones",
	"Arroz a banda",
	"Arroz del señoret",
	"Arroz de carrillada con boletus",
	"Paella de verduras",
}
