package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every subsystem's configuration.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Speech    SpeechConfig
	Telephony TelephonyConfig
	Session   SessionConfig
	Dialogue  DialogueConfig
	Booking   BookingConfig
	LogLevel  string
}

// BookingConfig describes where completed bookings are handed off.
type BookingConfig struct {
	// DeskWebhookURL receives the booking summary as JSON when set.
	DeskWebhookURL string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	telephony, err := loadTelephonyConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	dialogue, err := loadDialogueConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Speech:    speech,
		Telephony: telephony,
		Session:   session,
		Dialogue:  dialogue,
		Booking:   BookingConfig{DeskWebhookURL: strings.TrimSpace(os.Getenv("BOOKING_WEBHOOK_URL"))},
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the ark chat model backing the assistant.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// SpeechConfig describes the TTS vendor connection.
type SpeechConfig struct {
	Enabled        bool
	BaseURL        string
	AccessToken    string
	Voice          string
	Format         string
	SampleRate     int
	Speed          float32
	TimeoutSeconds int
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("TTS_TIMEOUT_SECONDS")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 10
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	sampleRate, err := parseOptionalIntEnv("TTS_SAMPLE_RATE")
	if err != nil {
		return SpeechConfig{}, err
	}
	rate := 24000
	if sampleRate != nil && *sampleRate > 0 {
		rate = *sampleRate
	}

	speed, err := parseOptionalFloat32Env("TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0)
	if speed != nil {
		ttsSpeed = *speed
	}

	baseURL := strings.TrimSpace(os.Getenv("TTS_BASE_URL"))
	accessToken := strings.TrimSpace(os.Getenv("TTS_ACCESS_TOKEN"))

	return SpeechConfig{
		Enabled:        baseURL != "" && accessToken != "",
		BaseURL:        baseURL,
		AccessToken:    accessToken,
		Voice:          getEnvOrDefault("TTS_VOICE", "en_female_warm"),
		Format:         getEnvOrDefault("TTS_FORMAT", "mp3"),
		SampleRate:     rate,
		Speed:          ttsSpeed,
		TimeoutSeconds: timeoutSeconds,
	}, nil
}

// TelephonyConfig describes how directives are rendered for the vendor.
type TelephonyConfig struct {
	// OperatorNumber is dialed on escalation.
	OperatorNumber string
	// DialTimeoutSeconds bounds how long the operator's phone rings.
	DialTimeoutSeconds int
	// PublicBaseURL prefixes audio playback URLs in rendered markup.
	PublicBaseURL string
}

func loadTelephonyConfig() (TelephonyConfig, error) {
	dialTimeout, err := parseOptionalIntEnv("DIAL_TIMEOUT_SECONDS")
	if err != nil {
		return TelephonyConfig{}, err
	}
	timeoutSeconds := 20
	if dialTimeout != nil && *dialTimeout > 0 {
		timeoutSeconds = *dialTimeout
	}

	return TelephonyConfig{
		OperatorNumber:     strings.TrimSpace(os.Getenv("OPERATOR_NUMBER")),
		DialTimeoutSeconds: timeoutSeconds,
		PublicBaseURL:      strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
	}, nil
}

// SessionConfig describes session storage and expiry.
type SessionConfig struct {
	// TTLMinutes is the inactivity window before a session is treated as gone.
	TTLMinutes int
	// RedisAddr switches the session store to Redis when set.
	RedisAddr string
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseOptionalIntEnv("SESSION_TTL_MINUTES")
	if err != nil {
		return SessionConfig{}, err
	}
	ttlMinutes := 30
	if ttl != nil && *ttl > 0 {
		ttlMinutes = *ttl
	}

	return SessionConfig{
		TTLMinutes: ttlMinutes,
		RedisAddr:  strings.TrimSpace(os.Getenv("REDIS_ADDR")),
	}, nil
}

// DialogueConfig tunes the dialogue engine.
type DialogueConfig struct {
	// HistoryLimit caps how many transcript turns beyond the system turn are
	// sent to the model.
	HistoryLimit int
	// ModelTimeoutSeconds bounds a single model invocation.
	ModelTimeoutSeconds int
}

func loadDialogueConfig() (DialogueConfig, error) {
	history, err := parseOptionalIntEnv("HISTORY_LIMIT")
	if err != nil {
		return DialogueConfig{}, err
	}
	historyLimit := 10
	if history != nil && *history > 0 {
		historyLimit = *history
	}

	timeout, err := parseOptionalIntEnv("MODEL_TIMEOUT_SECONDS")
	if err != nil {
		return DialogueConfig{}, err
	}
	timeoutSeconds := 15
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	return DialogueConfig{
		HistoryLimit:        historyLimit,
		ModelTimeoutSeconds: timeoutSeconds,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
