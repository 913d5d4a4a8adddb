package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Symbol describes one dictionary entry: a stock ticker plus the company
// names and colloquial aliases it is known under.
type Symbol struct {
	Ticker  string   `yaml:"ticker"`
	Names   []string `yaml:"names"`
	Aliases []string `yaml:"aliases"`
}

type Dictionary struct {
	Symbols []Symbol `yaml:"symbols"`
}

func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol dictionary: %w", err)
	}

	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse symbol dictionary: %w", err)
	}

	if err := dict.validate(); err != nil {
		return nil, fmt.Errorf("invalid symbol dictionary %s: %w", path, err)
	}

	return &dict, nil
}

func (d *Dictionary) validate() error {
	seen := make(map[string]bool, len(d.Symbols))
	for i, symbol := range d.Symbols {
		if symbol.Ticker == "" {
			return fmt.Errorf("symbol at index %d has no ticker", i)
		}
		if seen[symbol.Ticker] {
			return fmt.Errorf("duplicate ticker: %s", symbol.Ticker)
		}
		seen[symbol.Ticker] = true
	}
	return nil
}
