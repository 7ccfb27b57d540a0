package universe

import "github.com/wonny/momentum-scanner/internal/contracts"

// Nifty50 is the default scan list (NSE symbols, no provider suffix)
var Nifty50 = []string{
	"RELIANCE", "TCS", "HDFCBANK", "ICICIBANK", "INFY", "ITC", "HINDUNILVR", "LT", "SBIN", "AXISBANK",
	"KOTAKBANK", "BHARTIARTL", "BAJFINANCE", "ADANIENT", "ADANIPORTS", "HCLTECH", "SUNPHARMA", "MARUTI",
	"TITAN", "ASIANPAINT", "ULTRACEMCO", "WIPRO", "POWERGRID", "NTPC", "ONGC", "TATASTEEL", "TATAMOTORS",
	"JSWSTEEL", "M&M", "TECHM", "GRASIM", "COALINDIA", "HDFCLIFE", "DIVISLAB", "BRITANNIA", "BAJAJFINSV",
	"DRREDDY", "CIPLA", "EICHERMOT", "HEROMOTOCO", "BPCL", "SHREECEM", "NESTLEIND", "HINDALCO", "INDUSINDBK",
	"SBILIFE", "TATACONSUM", "APOLLOHOSP",
}

// Default returns the NIFTY 50 universe
func Default() *contracts.Universe {
	return contracts.NewUniverse(Nifty50...)
}
