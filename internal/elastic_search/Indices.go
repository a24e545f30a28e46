package elastic_search

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
)

type Indices string

var (
	MarketplaceActionIndex Indices = "marketplaceaction"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}

var mappings = map[Indices]string{
	MarketplaceActionIndex: `{
  "mappings": {
    "properties": {
      "contract":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "tokenId":     {"type": "unsigned_long"},
      "ref":         {"type": "keyword"},
      "receiptId":   {"type": "keyword"},
      "action":      {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "from":        {"type": "keyword"},
      "to":          {"type": "keyword"},
      "marketplace": {"type": "keyword"},
      "cost":        {"type": "keyword"},
      "fee":         {"type": "keyword"},
      "royalty":     {"type": "keyword"},
      "fungible":    {"type": "keyword"},
      "time":        {"type": "date"}
    }
  }
}`,
}
