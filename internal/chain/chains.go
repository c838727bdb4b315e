package chain

import (
	"strings"

	"github.com/xtrntr/tradedesk/internal/models"
)

func ether() models.NativeCurrency {
	return models.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}
}

var chains = []models.Chain{
	{ID: 1, Key: "ethereum", Name: "Ethereum", Network: "mainnet", NativeCurrency: ether(),
		RPCURLs: []string{"https://eth.llamarpc.com"}, ExplorerName: "Etherscan", ExplorerURL: "https://etherscan.io"},
	{ID: 56, Key: "bsc", Name: "BNB Smart Chain", Network: "bsc", NativeCurrency: models.NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18},
		RPCURLs: []string{"https://bsc-dataseed.binance.org"}, ExplorerName: "BscScan", ExplorerURL: "https://bscscan.com"},
	{ID: 137, Key: "polygon", Name: "Polygon", Network: "polygon", NativeCurrency: models.NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: 18},
		RPCURLs: []string{"https://polygon-rpc.com"}, ExplorerName: "PolygonScan", ExplorerURL: "https://polygonscan.com"},
	{ID: 42161, Key: "arbitrum", Name: "Arbitrum One", Network: "arbitrum", NativeCurrency: ether(),
		RPCURLs: []string{"https://arb1.arbitrum.io/rpc"}, ExplorerName: "Arbiscan", ExplorerURL: "https://arbiscan.io"},
	{ID: 10, Key: "optimism", Name: "Optimism", Network: "optimism", NativeCurrency: ether(),
		RPCURLs: []string{"https://mainnet.optimism.io"}, ExplorerName: "Optimistic Etherscan", ExplorerURL: "https://optimistic.etherscan.io"},
	{ID: 8453, Key: "base", Name: "Base", Network: "base", NativeCurrency: ether(),
		RPCURLs: []string{"https://mainnet.base.org"}, ExplorerName: "BaseScan", ExplorerURL: "https://basescan.org"},
	{ID: 43114, Key: "avalanche", Name: "Avalanche", Network: "avalanche", NativeCurrency: models.NativeCurrency{Name: "AVAX", Symbol: "AVAX", Decimals: 18},
		RPCURLs: []string{"https://api.avax.network/ext/bc/C/rpc"}, ExplorerName: "SnowTrace", ExplorerURL: "https://snowtrace.io"},
	{ID: 97, Key: "bscTestnet", Name: "BSC Testnet", Network: "bsc-testnet", NativeCurrency: models.NativeCurrency{Name: "tBNB", Symbol: "tBNB", Decimals: 18},
		RPCURLs: []string{"https://data-seed-prebsc-1-s1.binance.org:8545"}, ExplorerName: "BscScan Testnet", ExplorerURL: "https://testnet.bscscan.com", Testnet: true},
}

// Routers maps DEX names to their Ethereum mainnet router addresses
var Routers = map[string]string{
	"uniswapV2":   "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
	"uniswapV3":   "0xE592427A0AEce92De3Edee1F18E0157C05861564",
	"pancakeSwap": "0x10ED43C718714eb63d5aA57B78B54704E256024E",
	"sushiSwap":   "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F",
}

// Chains returns the chain table, testnets included
func Chains() []models.Chain {
	out := make([]models.Chain, len(chains))
	copy(out, chains)
	return out
}

func ChainByID(id int64) (models.Chain, bool) {
	for _, c := range chains {
		if c.ID == id {
			return c, true
		}
	}
	return models.Chain{}, false
}

// ChainByName looks a chain up by its table key, ignoring case
func ChainByName(name string) (models.Chain, bool) {
	for _, c := range chains {
		if strings.EqualFold(c.Key, name) {
			return c, true
		}
	}
	return models.Chain{}, false
}

// ExplorerTxURL links a transaction hash on the chain's block explorer
func ExplorerTxURL(chainID int64, hash string) (string, bool) {
	c, ok := ChainByID(chainID)
	if !ok {
		return "", false
	}
	return c.ExplorerURL + "/tx/" + hash, true
}
