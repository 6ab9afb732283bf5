package market

// Pair is immutable exchange reference data: the symbol the exchange
// recognizes plus a human readable name for logs and the dashboard.
type Pair struct {
	Symbol string
	Name   string
}

// fullNames maps Kraken pair codes to display names. Pairs missing from the
// table fall back to their raw symbol.
var fullNames = map[string]string{
	"XXBTZUSD": "Bitcoin",
	"XETHZUSD": "Ethereum",
	"XXRPZUSD": "Ripple",
	"XLTCZUSD": "Litecoin",
	"BCHUSD":   "Bitcoin Cash",
	"XDGUSD":   "Dogecoin",
	"ADAZUSD":  "Cardano",
	"DOTZUSD":  "Polkadot",
	"LINKZUSD": "Chainlink",
	"XXLMZUSD": "Stellar",
	"XMRZUSD":  "Monero",
	"XTZZUSD":  "Tezos",
	"EOSZUSD":  "EOS",
	"XETCZUSD": "Ethereum Classic",
	"ATOMZUSD": "Cosmos",
	"ALGOZUSD": "Algorand",
	"PEPEZUSD": "Pepe",
}

func NewPair(symbol string) Pair {
	return Pair{Symbol: symbol, Name: DisplayName(symbol)}
}

func DisplayName(symbol string) string {
	if name, ok := fullNames[symbol]; ok {
		return name
	}

	return symbol
}
