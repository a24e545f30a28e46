package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"strconv"
	"strings"
)

// AssetId identifies a single non-fungible token: the collection contract plus the token id within it.
type AssetId struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
}

func NewAssetId(contract string, tokenId uint64) AssetId {
	return AssetId{Contract: strings.ToLower(contract), TokenId: tokenId}
}

func (a AssetId) Slug() string {
	return CreateNftSlug(a.TokenId, a.Contract)
}

func (a AssetId) String() string {
	return fmt.Sprintf("%s#%d", a.Contract, a.TokenId)
}

func CreateNftSlug(tokenId uint64, contract string) string {
	return slug.Make(fmt.Sprintf("nft-%d-%s", tokenId, contract))
}

// ParseAssetId accepts the "contract#tokenId" form produced by String.
func ParseAssetId(s string) (AssetId, error) {
	parts := strings.Split(s, "#")
	if len(parts) != 2 || parts[0] == "" {
		return AssetId{}, fmt.Errorf("invalid asset id %q", s)
	}

	tokenId, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return AssetId{}, fmt.Errorf("invalid token id %q: %w", parts[1], err)
	}

	return NewAssetId(parts[0], tokenId), nil
}

type Royalty struct {
	Receiver string `json:"receiver"`
	RateBps  uint64 `json:"rateBps"`
}
