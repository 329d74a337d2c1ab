package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"

	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StoreSupabase = "supabase"

	// placeholderAPIKey 是示例 .env 中的占位密钥，视为未配置。
	placeholderAPIKey = "test_key_for_development"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server           ServerConfig
	AI               AIConfig
	Generator        GeneratorConfig
	Store            StoreConfig
	QuestionBankPath string
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	generator, err := loadGeneratorConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:           server,
		AI:               ai,
		Generator:        generator,
		Store:            store,
		QuestionBankPath: strings.TrimSpace(os.Getenv("QUESTION_BANK_PATH")),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5001"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5001" 或 "127.0.0.1:5001"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider        string
	APIKey          string
	AccessKey       string
	SecretKey       string
	Model           string
	BaseURL         string
	Region          string
	OpenAIKey       string
	OpenAIBaseURL   string
	DevelopmentMode bool
}

// Enabled 表示当前提供方的必需密钥与模型是否齐全。
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIKey != ""
	default:
		return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
	}
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s 凭证或模型配置缺失", c.Provider)
	}

	switch c.Provider {
	case ProviderOpenAI:
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: c.OpenAIBaseURL,
			APIKey:  c.OpenAIKey,
			Model:   c.Model,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	default:
		cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:   c.BaseURL,
			Region:    c.Region,
			APIKey:    c.APIKey,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Model:     c.Model,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	}
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderArk))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	devMode, err := parseBoolEnv("DEVELOPMENT_MODE", false)
	if err != nil {
		return AIConfig{}, err
	}

	defaultModel := ""
	if provider == ProviderOpenAI {
		defaultModel = "gpt-4o-mini"
	}

	cfg := AIConfig{
		Provider:      provider,
		APIKey:        apiKeyEnv("ARK_API_KEY"),
		AccessKey:     strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:     strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:         getEnvOrDefault("AI_MODEL", defaultModel),
		BaseURL:       getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:        getEnvOrDefault("ARK_REGION", "cn-beijing"),
		OpenAIKey:     apiKeyEnv("OPENAI_API_KEY"),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}
	// 没有可用密钥时自动进入开发模式，只使用静态题库。
	cfg.DevelopmentMode = devMode || !cfg.Enabled()
	return cfg, nil
}

// GeneratorConfig 描述题目生成、缓存与重试策略。
type GeneratorConfig struct {
	CachingEnabled bool
	MaxRetries     int
	DailyLimit     int
	RetryBaseDelay time.Duration
	RetryMaxJitter time.Duration
}

func loadGeneratorConfig() (GeneratorConfig, error) {
	caching, err := parseBoolEnv("CACHING_ENABLED", true)
	if err != nil {
		return GeneratorConfig{}, err
	}

	cfg := GeneratorConfig{
		CachingEnabled: caching,
		MaxRetries:     3,
		DailyLimit:     200,
		RetryBaseDelay: time.Second,
		RetryMaxJitter: time.Second,
	}

	if retries, err := parseOptionalIntEnv("MAX_RETRIES"); err != nil {
		return GeneratorConfig{}, err
	} else if retries != nil {
		cfg.MaxRetries = max(1, *retries)
	}

	if limit, err := parseOptionalIntEnv("DAILY_API_LIMIT"); err != nil {
		return GeneratorConfig{}, err
	} else if limit != nil {
		if *limit < 1 {
			return GeneratorConfig{}, fmt.Errorf("DAILY_API_LIMIT must be positive, got %d", *limit)
		}
		cfg.DailyLimit = *limit
	}

	if cfg.RetryBaseDelay, err = parseDurationEnv("RETRY_BASE_DELAY", cfg.RetryBaseDelay); err != nil {
		return GeneratorConfig{}, err
	}
	if cfg.RetryMaxJitter, err = parseDurationEnv("RETRY_MAX_JITTER", cfg.RetryMaxJitter); err != nil {
		return GeneratorConfig{}, err
	}

	return cfg, nil
}

// StoreConfig 描述会话存储后端。
type StoreConfig struct {
	Backend       string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
}

func loadStoreConfig() (StoreConfig, error) {
	cfg := StoreConfig{
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "interview.db"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SupabaseURL:   strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseKey:   strings.TrimSpace(os.Getenv("SUPABASE_KEY")),
		SupabaseTable: getEnvOrDefault("SUPABASE_TABLE", "sessions"),
	}

	if db, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return StoreConfig{}, err
	} else if db != nil {
		cfg.RedisDB = *db
	}

	ttl, err := parseDurationEnv("REDIS_SESSION_TTL", 0)
	if err != nil {
		return StoreConfig{}, err
	}
	cfg.RedisTTL = ttl

	// 未显式指定时，配置了 Supabase 就使用它，否则退回内存存储。
	defaultBackend := StoreMemory
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		defaultBackend = StoreSupabase
	}
	cfg.Backend = strings.ToLower(getEnvOrDefault("SESSION_STORE", defaultBackend))

	switch cfg.Backend {
	case StoreMemory, StoreSQLite, StoreRedis:
	case StoreSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return StoreConfig{}, fmt.Errorf("SESSION_STORE=supabase requires SUPABASE_URL and SUPABASE_KEY")
		}
	default:
		return StoreConfig{}, fmt.Errorf("invalid SESSION_STORE value %q", cfg.Backend)
	}

	return cfg, nil
}

func apiKeyEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == placeholderAPIKey {
		return ""
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
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

// parseDurationEnv 接受 "1500ms" 这类时长，纯数字按秒处理。
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}
