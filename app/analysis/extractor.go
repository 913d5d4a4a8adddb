package analysis

import (
	"sort"
	"strings"
)

// Extractor finds stock symbol mentions in article text. Verbatim symbols
// are dictionary tickers literally present as tokens ("ITM", "$ITM");
// deduced symbols are tickers implied by a company name or alias mention.
type Extractor struct {
	dict *Dictionary
}

func NewExtractor(dict *Dictionary) *Extractor {
	return &Extractor{dict: dict}
}

// Run scans the given text and returns the verbatim and deduced symbol
// sets, each sorted and deduplicated.
func (e *Extractor) Run(text string) (verbatim []string, deduced []string) {
	tokens := tokenize(text)
	lower := strings.ToLower(text)

	verbatimSet := make(map[string]bool)
	deducedSet := make(map[string]bool)

	for _, symbol := range e.dict.Symbols {
		if tokens[symbol.Ticker] || tokens["$"+symbol.Ticker] {
			verbatimSet[symbol.Ticker] = true
		}

		for _, name := range append(symbol.Names, symbol.Aliases...) {
			if name == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(name)) {
				deducedSet[symbol.Ticker] = true
				break
			}
		}
	}

	return sortedKeys(verbatimSet), sortedKeys(deducedSet)
}

// tokenize splits text on everything that cannot be part of a ticker
// token. The dollar prefix survives so cashtags ("$TSLA") stay intact.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r == '$' || r == '.':
			return false
		default:
			return true
		}
	}) {
		tokens[strings.TrimSuffix(token, ".")] = true
	}
	return tokens
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
