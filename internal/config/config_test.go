package config

import (
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestGet_Defaults(t *testing.T) {
	cfg := Get()

	check.Equal(t, "zilliqa", cfg.Network)
	check.Equal(t, "marketplace", cfg.Custody)
	check.Equal(t, uint64(25), cfg.FeeRate)
	check.Equal(t, 5*time.Minute, cfg.RoyaltyCacheTtl)
	check.False(t, cfg.ElasticSearch.Enabled())
	check.Equal(t, "marketplace.events", cfg.Nats.Subject)
}

func TestGet_FromEnvironment(t *testing.T) {
	t.Setenv("PLATFORM_FEE_RATE", "50")
	t.Setenv("ADMIN_ADDRESS", "0xadmin")
	t.Setenv("ELASTIC_SEARCH_HOSTS", "http://es1:9200,http://es2:9200")
	t.Setenv("DEBUG", "true")
	t.Setenv("WEBHOOK_RETRIES", "not-a-number")

	cfg := Get()

	check.Equal(t, uint64(50), cfg.FeeRate)
	check.Equal(t, "0xadmin", cfg.Admin)
	check.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ElasticSearch.Hosts)
	check.True(t, cfg.ElasticSearch.Enabled())
	check.True(t, cfg.Debug)
	check.Equal(t, 3, cfg.Webhook.Retries)
}

func TestConfig_Tokens(t *testing.T) {
	t.Setenv("SUPPORTED_TOKENS", "0xUSD:USD:6, 0xgzil:gZIL:15")

	tokens, err := Get().Tokens()
	assert.NoError(t, err)
	check.Equal(t, 2, len(tokens))
	check.Equal(t, entity.Token("0xusd"), tokens[0].Method)
	check.Equal(t, "USD", tokens[0].Symbol)
	check.Equal(t, int32(15), tokens[1].Decimals)
}

func TestConfig_TokensInvalid(t *testing.T) {
	for _, raw := range []string{"0xusd", "0xusd:USD:x", ":USD:6"} {
		_, err := (&Config{SupportedTokens: []string{raw}}).Tokens()
		check.Error(t, err)
	}
}
