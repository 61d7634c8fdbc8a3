package constant

import "fmt"

const (
	DefaultListingURLTemplate = "https://api.nasdaq.com/api/screener/stocks?tableonly=true&limit=25&offset=0&exchange=%s&download=true"
	DefaultUserAgent          = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:85.0) Gecko/20100101 Firefox/85.0"
	DefaultCompanyTableURL    = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

	SymbolsDir         = "symbols"
	MergedDir          = "all"
	CompanyTableDir    = "fortune500"
	CompanyTableFile   = "fortune500_list.json"
	DefaultMergedFile  = "all_symbols.txt"
	JSONIndent         = "    "
	SymbolsStreamName  = "symbols"
	SymbolsSubjectAll  = "symbols.*"
	SymbolsMergedEvent = "symbols.merged"
)

// storage paths are slash separated and relative to the data directory

func ExchangeDir(exchange string) string {
	return fmt.Sprintf("%s/%s", SymbolsDir, exchange)
}

func FullSymbolsPath(exchange string) string {
	return fmt.Sprintf("%s/%s_full_symbols.json", ExchangeDir(exchange), exchange)
}

func SymbolsJSONPath(exchange string) string {
	return fmt.Sprintf("%s/%s_symbols.json", ExchangeDir(exchange), exchange)
}

func SymbolsTextPath(exchange string) string {
	return fmt.Sprintf("%s/%s_symbols.txt", ExchangeDir(exchange), exchange)
}

func MergedPath(outputName string) string {
	return fmt.Sprintf("%s/%s/%s", SymbolsDir, MergedDir, outputName)
}

func CompanyTablePath() string {
	return fmt.Sprintf("%s/%s/%s", SymbolsDir, CompanyTableDir, CompanyTableFile)
}
