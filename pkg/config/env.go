package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvEnvironment = "ENVIRONMENT"

	EnvWhatsAppAPIURL        = "WHATSAPP_API_URL"
	EnvWhatsAppToken         = "WHATSAPP_API_TOKEN"
	EnvWhatsAppWebhookSecret = "WHATSAPP_WEBHOOK_SECRET"
	EnvOperatorPhones        = "OPERATOR_PHONES"

	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvGeminiModel   = "GEMINI_MODEL"
	EnvGeminiTimeout = "GEMINI_TIMEOUT"

	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQ   = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID    = "NOTIFIER_GROUP_ID"

	EnvRestaurantPhone    = "RESTAURANT_PHONE"
	EnvRestaurantTimezone = "RESTAURANT_TIMEZONE"
	EnvMaxAdvanceDays     = "MAX_ADVANCE_DAYS"
	EnvClosedWeekdays     = "CLOSED_WEEKDAYS"
	EnvSpecialDates       = "SPECIAL_DATES"
	EnvOpeningTime        = "OPENING_TIME"
	EnvClosingTime        = "CLOSING_TIME"
	EnvSlotIntervalMin    = "SLOT_INTERVAL_MIN"
	EnvSlotCapacity       = "SLOT_CAPACITY"
	EnvDayCapacity        = "DAY_CAPACITY"
	EnvMaxOnlinePartySize = "MAX_ONLINE_PARTY_SIZE"
	EnvRiceMinServings    = "RICE_MIN_SERVINGS"
	EnvSessionIdleTTL     = "SESSION_IDLE_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
