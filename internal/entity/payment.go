package entity

import (
	"fmt"
	"github.com/shopspring/decimal"
	"math/big"
	"strings"
)

type PaymentKind string

const (
	NativePayment PaymentKind = "native"
	TokenPayment  PaymentKind = "token"
)

const (
	NativeSymbol   string = "ZIL"
	NativeDecimals int32  = 12
)

// PaymentMethod is either the native currency attached to a call or a fungible token identified by its contract.
type PaymentMethod struct {
	Kind  PaymentKind `json:"kind"`
	Token string      `json:"token,omitempty"`
}

var Native = PaymentMethod{Kind: NativePayment}

func Token(contract string) PaymentMethod {
	return PaymentMethod{Kind: TokenPayment, Token: strings.ToLower(contract)}
}

func (p PaymentMethod) IsNative() bool {
	return p.Kind == NativePayment
}

func (p PaymentMethod) String() string {
	if p.IsNative() {
		return NativeSymbol
	}
	return p.Token
}

// ParsePaymentMethod maps "native"/"zil" to the native method and anything else to a token contract.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return PaymentMethod{}, fmt.Errorf("empty payment method")
	case "native", "zil":
		return Native, nil
	}

	return Token(s), nil
}

type SupportedToken struct {
	Method   PaymentMethod `json:"method"`
	Symbol   string        `json:"symbol"`
	Decimals int32         `json:"decimals"`
}

func NativeToken() SupportedToken {
	return SupportedToken{Method: Native, Symbol: NativeSymbol, Decimals: NativeDecimals}
}

// FormatAmount renders base units with the token's decimals, e.g. 1500000000000 with 12 decimals is "1.5".
func FormatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).String()
}

// ParseAmount is the inverse of FormatAmount and rejects values with more precision than the token supports.
func ParseAmount(value string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", value)
	}

	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s exceeds %d decimals", value, decimals)
	}

	units := shifted.BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows", value)
	}

	return units.Uint64(), nil
}
