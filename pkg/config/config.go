package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mesero/pkg/client"
	"mesero/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port        string
	Environment string

	WhatsAppAPIURL        string
	WhatsAppToken         string
	WhatsAppWebhookSecret string
	OperatorPhones        []string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	BookingEventsTopic string
	BookingEventsDLQ   string
	NotifierGroupID    string

	RestaurantPhone    string
	RestaurantTimezone string
	MaxAdvanceDays     int
	ClosedWeekdays     []string
	SpecialDates       []string
	OpeningTime        string
	ClosingTime        string
	SlotIntervalMin    int
	SlotCapacity       int
	DayCapacity        int
	MaxOnlinePartySize int
	RiceMinServings    int
	RiceMenu           []string
	SessionIdleTTL     time.Duration
	HistoryDepth       int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Location *time.Location

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:        getEnvStr(EnvPort, DefaultPort),
		Environment: getEnvStr(EnvEnvironment, DefaultEnvironment),

		WhatsAppAPIURL:        getEnvStr(EnvWhatsAppAPIURL, DefaultWhatsAppAPIURL),
		WhatsAppToken:         getEnvStr(EnvWhatsAppToken, ""),
		WhatsAppWebhookSecret: getEnvStr(EnvWhatsAppWebhookSecret, ""),
		OperatorPhones:        getEnvList(EnvOperatorPhones, nil),

		GeminiAPIKey:  getEnvStr(EnvGeminiAPIKey, ""),
		GeminiModel:   getEnvStr(EnvGeminiModel, DefaultGeminiModel),
		GeminiTimeout: getEnvDuration(EnvGeminiTimeout, DefaultGeminiTimeout),

		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQ:   getEnvStr(EnvBookingEventsDLQ, DefaultBookingEventsDLQ),
		NotifierGroupID:    getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		RestaurantPhone:    getEnvStr(EnvRestaurantPhone, DefaultRestaurantPhone),
		RestaurantTimezone: getEnvStr(EnvRestaurantTimezone, DefaultRestaurantTimezone),
		MaxAdvanceDays:     getEnvNum(EnvMaxAdvanceDays, DefaultMaxAdvanceDays),
		ClosedWeekdays:     getEnvList(EnvClosedWeekdays, DefaultClosedWeekdays),
		SpecialDates:       getEnvList(EnvSpecialDates, DefaultSpecialDates),
		OpeningTime:        getEnvStr(EnvOpeningTime, DefaultOpeningTime),
		ClosingTime:        getEnvStr(EnvClosingTime, DefaultClosingTime),
		SlotIntervalMin:    getEnvNum(EnvSlotIntervalMin, DefaultSlotIntervalMin),
		SlotCapacity:       getEnvNum(EnvSlotCapacity, DefaultSlotCapacity),
		DayCapacity:        getEnvNum(EnvDayCapacity, DefaultDayCapacity),
		MaxOnlinePartySize: getEnvNum(EnvMaxOnlinePartySize, DefaultMaxOnlinePartySize),
		RiceMinServings:    getEnvNum(EnvRiceMinServings, DefaultRiceMinServings),
		RiceMenu:           DefaultRiceMenu,
		SessionIdleTTL:     getEnvDuration(EnvSessionIdleTTL, DefaultSessionIdleTTL),
		HistoryDepth:       DefaultHistoryDepth,

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) IsDevelopment() bool {
	return strings.EqualFold(cfg.Environment, "development")
}

var (
	timeRegex     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	dayMonthRegex = regexp.MustCompile(`^([0-2][0-9]|3[01])/(0[1-9]|1[0-2])$`)
	mongoRegex    = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

var validWeekdays = map[string]struct{}{
	"sunday": {}, "monday": {}, "tuesday": {}, "wednesday": {},
	"thursday": {}, "friday": {}, "saturday": {},
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !mongoRegex.MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	loc, err := time.LoadLocation(cfg.RestaurantTimezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("RestaurantTimezone is not a valid IANA zone: %s", cfg.RestaurantTimezone))
	} else {
		cfg.Location = loc
	}

	if !timeRegex.MatchString(cfg.OpeningTime) {
		errs = append(errs, fmt.Sprintf("OpeningTime must be in HH:MM format, got: %s", cfg.OpeningTime))
	}
	if !timeRegex.MatchString(cfg.ClosingTime) {
		errs = append(errs, fmt.Sprintf("ClosingTime must be in HH:MM format, got: %s", cfg.ClosingTime))
	}
	if timeRegex.MatchString(cfg.OpeningTime) && timeRegex.MatchString(cfg.ClosingTime) && cfg.ClosingTime <= cfg.OpeningTime {
		errs = append(errs, fmt.Sprintf("ClosingTime (%s) must be after OpeningTime (%s)", cfg.ClosingTime, cfg.OpeningTime))
	}

	for _, day := range cfg.ClosedWeekdays {
		if _, ok := validWeekdays[strings.ToLower(strings.TrimSpace(day))]; !ok {
			errs = append(errs, fmt.Sprintf("ClosedWeekdays contains an invalid weekday name: %s", day))
		}
	}
	if len(cfg.ClosedWeekdays) >= 7 {
		errs = append(errs, "ClosedWeekdays cannot cover the whole week")
	}

	for _, d := range cfg.SpecialDates {
		if !dayMonthRegex.MatchString(strings.TrimSpace(d)) {
			errs = append(errs, fmt.Sprintf("SpecialDates entries must be dd/MM, got: %s", d))
		}
	}

	if cfg.MaxAdvanceDays <= 0 {
		errs = append(errs, fmt.Sprintf("MaxAdvanceDays must be positive, got: %d", cfg.MaxAdvanceDays))
	}
	if cfg.SlotIntervalMin <= 0 {
		errs = append(errs, fmt.Sprintf("SlotIntervalMin must be positive, got: %d", cfg.SlotIntervalMin))
	}
	if cfg.SlotCapacity <= 0 {
		errs = append(errs, fmt.Sprintf("SlotCapacity must be positive, got: %d", cfg.SlotCapacity))
	}
	if cfg.DayCapacity < cfg.SlotCapacity {
		errs = append(errs, fmt.Sprintf("DayCapacity (%d) must be >= SlotCapacity (%d)", cfg.DayCapacity, cfg.SlotCapacity))
	}
	if cfg.MaxOnlinePartySize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxOnlinePartySize must be positive, got: %d", cfg.MaxOnlinePartySize))
	}
	if cfg.RiceMinServings <= 0 {
		errs = append(errs, fmt.Sprintf("RiceMinServings must be positive, got: %d", cfg.RiceMinServings))
	}
	if len(cfg.RiceMenu) == 0 {
		errs = append(errs, "RiceMenu cannot be empty")
	}
	if cfg.RestaurantPhone == "" {
		errs = append(errs, "RestaurantPhone cannot be empty")
	}
	if cfg.SessionIdleTTL <= 0 {
		errs = append(errs, fmt.Sprintf("SessionIdleTTL must be positive, got: %s", cfg.SessionIdleTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.GeminiTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("GeminiTimeout must be positive, got: %s", cfg.GeminiTimeout))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"port", cfg.Port,
		"environment", cfg.Environment,
		"whatsapp_api_url", cfg.WhatsAppAPIURL,
		"whatsapp_token_set", cfg.WhatsAppToken != "",
		"webhook_secret_set", cfg.WhatsAppWebhookSecret != "",
		"operator_phones", len(cfg.OperatorPhones),
		"gemini_model", cfg.GeminiModel,
		"gemini_key_set", cfg.GeminiAPIKey != "",
		"booking_events_topic", cfg.BookingEventsTopic,
		"restaurant_timezone", cfg.RestaurantTimezone,
		"max_advance_days", cfg.MaxAdvanceDays,
		"closed_weekdays", strings.Join(cfg.ClosedWeekdays, ","),
		"special_dates", strings.Join(cfg.SpecialDates, ","),
		"opening_time", cfg.OpeningTime,
		"closing_time", cfg.ClosingTime,
		"slot_interval_min", cfg.SlotIntervalMin,
		"slot_capacity", cfg.SlotCapacity,
		"day_capacity", cfg.DayCapacity,
		"max_online_party_size", cfg.MaxOnlinePartySize,
		"rice_min_servings", cfg.RiceMinServings,
		"session_idle_ttl", cfg.SessionIdleTTL,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}
