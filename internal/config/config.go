package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

type Config struct {
	Port        string
	MetricsPort string

	SupabaseURL  string
	SupabaseKey  string
	DatabaseURL  string
	StoreBackend string

	UPCItemDBKey string
	SearchAPIKey string
	Retailers    []string

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
	OpenAIKey    string

	RegisterProducts bool
	RateLimitRPS     int
	RateLimitBurst   int
	RefreshWorkers   int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		SupabaseURL: strings.TrimSuffix(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		UPCItemDBKey: os.Getenv("UPCITEMDB_KEY"),
		SearchAPIKey: os.Getenv("SEARCH_API_KEY"),
		Retailers:    SplitList(getEnv("RETAILERS", "woolworths,coles")),

		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: SplitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "price-events"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),

		RegisterProducts: getBool("REGISTER_PRODUCTS", false),
		RateLimitRPS:     getInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 20),
		RefreshWorkers:   getInt("REFRESH_WORKERS", 4),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	cfg.StoreBackend = os.Getenv("STORE_BACKEND")
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = BackendSupabase
		if cfg.DatabaseURL != "" {
			cfg.StoreBackend = BackendPostgres
		}
	}

	return cfg
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func getBool(k string, d bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return d
	}
	return v
}

// SplitList splits a comma-separated list, lowercasing and dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
