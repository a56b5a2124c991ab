// Package quotes maps market families to their price sources. Each
// market has one adapter; adapters consult the shared price cache
// before touching the network.
package quotes

import (
	"strings"

	"networth/internal/domain"
)

// tickerToCoinID maps short crypto tickers to CoinGecko identifiers.
// Unmapped tickers pass through lowercased - best effort, not an error.
var tickerToCoinID = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"BNB":  "binancecoin",
	"SOL":  "solana",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"USDT": "tether",
	"USDC": "usd-coin",
}

// NormalizeDomestic canonicalizes an A-share symbol into an
// exchange-qualified feed key, e.g. "600519" -> "sh600519".
//
// Rules are part of the adapter contract: two spellings of the same
// instrument must normalize to the same key so they share one cache
// entry. A ".SH"/".SZ" suffix fixes the exchange; without a suffix the
// leading digit decides (6xxxxx codes list in Shanghai, everything
// else in Shenzhen).
func NormalizeDomestic(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	switch {
	case strings.HasSuffix(s, ".SH"):
		return "sh" + strings.TrimSuffix(s, ".SH")
	case strings.HasSuffix(s, ".SZ"):
		return "sz" + strings.TrimSuffix(s, ".SZ")
	case strings.HasPrefix(s, "SH") && len(s) > 2 && isDigits(s[2:]):
		return "sh" + s[2:]
	case strings.HasPrefix(s, "SZ") && len(s) > 2 && isDigits(s[2:]):
		return "sz" + s[2:]
	case len(s) > 0 && s[0] == '6':
		return "sh" + s
	default:
		return "sz" + s
	}
}

// NormalizeCrossBorder canonicalizes a Hong Kong listing into a feed
// key, e.g. "700" or "0700.HK" -> "hk00700". Numeric codes are
// left-padded to five digits.
func NormalizeCrossBorder(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".HK")
	s = strings.TrimPrefix(s, "HK")

	if isDigits(s) {
		for len(s) < 5 {
			s = "0" + s
		}
	}
	return "hk" + strings.ToLower(s)
}

// NormalizeDigital maps a crypto ticker to its canonical CoinGecko id.
func NormalizeDigital(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := tickerToCoinID[s]; ok {
		return id
	}
	return strings.ToLower(s)
}

// CacheKey returns the cache key for a position, qualified by market so
// equal raw symbols in different markets never collide.
func CacheKey(market domain.Market, symbol string) string {
	switch market {
	case domain.MarketDomesticEquity:
		return "cn:" + NormalizeDomestic(symbol)
	case domain.MarketCrossBorderEquity:
		return "hk:" + NormalizeCrossBorder(symbol)
	case domain.MarketDigitalAsset:
		return "crypto:" + NormalizeDigital(symbol)
	default:
		return string(market) + ":" + strings.ToLower(strings.TrimSpace(symbol))
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
