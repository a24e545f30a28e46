package config

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env     string
	Network string
	Index   string
	Debug   bool
	LogPath string

	Admin           string
	Custody         string
	FeeRate         uint64
	FeeRecipient    string
	SupportedTokens []string
	RoyaltyCacheTtl time.Duration

	Api           ApiConfig
	ElasticSearch ElasticSearchConfig
	Nats          NatsConfig
	Webhook       WebhookConfig
	Keeper        KeeperConfig
}

type ApiConfig struct {
	Port string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	BulkPersistCount int
	Refresh          string
}

// Enabled reports whether action history is persisted to Elasticsearch rather than kept in memory.
func (c ElasticSearchConfig) Enabled() bool {
	return len(c.Hosts) != 0
}

type NatsConfig struct {
	Url     string
	Subject string
}

// KeeperConfig controls the background job that ends auctions once their bidding window has passed.
type KeeperConfig struct {
	Enabled  bool
	Account  string
	Interval time.Duration
}

type WebhookConfig struct {
	Url     string
	Retries int
}

// Init loads .env when present and installs the logger writing to LOG_PATH/<name>.log.
func Init(name string) {
	err := godotenv.Load(".env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		zap.L().With(zap.Error(err)).Fatal("Unable to init config")
	}

	initLogger(name)
}

func initLogger(name string) {
	log.NewLogger(filepath.Join(Get().LogPath, name+".log"), Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:             getString("ENV", ""),
		Network:         getString("NETWORK", "zilliqa"),
		Index:           getString("INDEX_NAME", "marketplace"),
		Debug:           getBool("DEBUG", false),
		LogPath:         getString("LOG_PATH", os.TempDir()),
		Admin:           getString("ADMIN_ADDRESS", "admin"),
		Custody:         getString("MARKET_ADDRESS", "marketplace"),
		FeeRate:         getUint64("PLATFORM_FEE_RATE", 25),
		FeeRecipient:    getString("FEE_RECIPIENT", ""),
		SupportedTokens: getSlice("SUPPORTED_TOKENS", make([]string, 0), ","),
		RoyaltyCacheTtl: time.Duration(getInt("ROYALTY_CACHE_TTL", 300)) * time.Second,
		Api: ApiConfig{
			Port: getString("API_PORT", "8080"),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
		Nats: NatsConfig{
			Url:     getString("NATS_URL", ""),
			Subject: getString("NATS_SUBJECT", "marketplace.events"),
		},
		Webhook: WebhookConfig{
			Url:     getString("WEBHOOK_URL", ""),
			Retries: getInt("WEBHOOK_RETRIES", 3),
		},
		Keeper: KeeperConfig{
			Enabled:  getBool("KEEPER_ENABLED", true),
			Account:  getString("KEEPER_ADDRESS", "keeper"),
			Interval: time.Duration(getInt("KEEPER_INTERVAL", 30)) * time.Second,
		},
	}
}

// Tokens parses SUPPORTED_TOKENS entries of the form contract:SYMBOL:decimals.
func (c *Config) Tokens() ([]entity.SupportedToken, error) {
	tokens := make([]entity.SupportedToken, 0, len(c.SupportedTokens))
	for _, raw := range c.SupportedTokens {
		parts := strings.Split(strings.TrimSpace(raw), ":")
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid supported token %q", raw)
		}

		decimals, err := strconv.ParseInt(parts[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid decimals for token %q: %w", raw, err)
		}

		tokens = append(tokens, entity.SupportedToken{
			Method:   entity.Token(parts[0]),
			Symbol:   parts[1],
			Decimals: int32(decimals),
		})
	}

	return tokens, nil
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getUint64(key string, defaultValue uint) uint64 {
	return uint64(getInt(key, int(defaultValue)))
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
