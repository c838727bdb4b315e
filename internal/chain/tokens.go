// Package chain holds the static token, chain and router tables.
package chain

import (
	"strings"

	"github.com/xtrntr/tradedesk/internal/models"
)

// NativeTokenAddress is the placeholder address for a chain's gas token
const NativeTokenAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

var ethereumTokens = []models.Token{
	{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/2518/small/weth.png"},
	{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Name: "Tether USD", Decimals: 6, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/325/small/Tether.png"},
	{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Name: "USD Coin", Decimals: 6, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/6319/small/USD_Coin_icon.png"},
	{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/9956/small/dai-multi-collateral-mcd.png"},
	{Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Symbol: "WBTC", Name: "Wrapped Bitcoin", Decimals: 8, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/7598/small/wrapped_bitcoin_wbtc.png"},
	{Address: "0x514910771AF9Ca656af840dff83E8264EcF986CA", Symbol: "LINK", Name: "Chainlink", Decimals: 18, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/877/small/chainlink-new-logo.png"},
	{Address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", Symbol: "UNI", Name: "Uniswap", Decimals: 18, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/12504/small/uniswap-uni.png"},
	{Address: "0x7D1AfA7B718fb893dB30A3aBc0Cfc608AaCfeBB0", Symbol: "MATIC", Name: "Polygon", Decimals: 18, ChainID: 1, LogoURI: "https://assets.coingecko.com/coins/images/4713/small/matic-token-icon.png"},
}

var bscTokens = []models.Token{
	{Address: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", Symbol: "WBNB", Name: "Wrapped BNB", Decimals: 18, ChainID: 56},
	{Address: "0x55d398326f99059fF775485246999027B3197955", Symbol: "USDT", Name: "Tether USD", Decimals: 18, ChainID: 56},
	{Address: "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", Symbol: "BUSD", Name: "Binance USD", Decimals: 18, ChainID: 56},
}

var bscTestnetTokens = []models.Token{
	{Address: "0x2D974F61dEB29F8cd7D547b1aaEC540001Ab8A23", Symbol: "USDT", Name: "Binance-Peg BSC-USD", Decimals: 18, ChainID: 97, LogoURI: "https://assets.coingecko.com/coins/images/325/small/Tether.png"},
	{Address: "0xae13d989daC2f0dEbFf460aC112a837C89BAa7cd", Symbol: "WBNB", Name: "Wrapped BNB", Decimals: 18, ChainID: 97},
}

var polygonTokens = []models.Token{
	{Address: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", Symbol: "WMATIC", Name: "Wrapped Matic", Decimals: 18, ChainID: 137},
	{Address: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", Symbol: "USDT", Name: "Tether USD", Decimals: 6, ChainID: 137},
	{Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Symbol: "USDC", Name: "USD Coin", Decimals: 6, ChainID: 137},
}

// Tokens returns every known token
func Tokens() []models.Token {
	all := make([]models.Token, 0, len(ethereumTokens)+len(bscTokens)+len(bscTestnetTokens)+len(polygonTokens))
	all = append(all, ethereumTokens...)
	all = append(all, bscTokens...)
	all = append(all, bscTestnetTokens...)
	all = append(all, polygonTokens...)
	return all
}

// SwapTokens are the tokens offered by the swap panel
func SwapTokens() []models.Token {
	return append([]models.Token{}, ethereumTokens...)
}

// TokenByAddress matches address case-insensitively within a chain
func TokenByAddress(address string, chainID int64) (models.Token, bool) {
	for _, t := range Tokens() {
		if t.ChainID == chainID && strings.EqualFold(t.Address, address) {
			return t, true
		}
	}
	return models.Token{}, false
}

// TokenBySymbol matches symbol case-insensitively within a chain
func TokenBySymbol(symbol string, chainID int64) (models.Token, bool) {
	for _, t := range Tokens() {
		if t.ChainID == chainID && strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return models.Token{}, false
}

// TokensByChain lists the tokens of a chain in table order
func TokensByChain(chainID int64) []models.Token {
	var out []models.Token
	for _, t := range Tokens() {
		if t.ChainID == chainID {
			out = append(out, t)
		}
	}
	return out
}
