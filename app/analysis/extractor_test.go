package analysis

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testDictionary() *Dictionary {
	return &Dictionary{
		Symbols: []Symbol{
			{Ticker: "ITM", Names: []string{"ITM Power"}},
			{Ticker: "TSLA", Names: []string{"Tesla"}, Aliases: []string{"Tesla Motors"}},
			{Ticker: "PLUG", Names: []string{"Plug Power"}},
			{Ticker: "NEL", Names: []string{"Nel ASA"}},
		},
	}
}

func TestExtractVerbatimSymbols(t *testing.T) {
	extractor := NewExtractor(testDictionary())

	verbatim, _ := extractor.Run("Opening Bell: TSLA und PLUG legen vorboerslich zu, $ITM unter Druck.")

	expected := []string{"ITM", "PLUG", "TSLA"}
	if !reflect.DeepEqual(verbatim, expected) {
		t.Errorf("Expected verbatim symbols %v, got %v", expected, verbatim)
	}
}

func TestExtractDeducedSymbols(t *testing.T) {
	extractor := NewExtractor(testDictionary())

	_, deduced := extractor.Run("Chart-Check: ITM Power - diese Marke muss heute halten. Auch Plug Power im Fokus.")

	expected := []string{"ITM", "PLUG"}
	if !reflect.DeepEqual(deduced, expected) {
		t.Errorf("Expected deduced symbols %v, got %v", expected, deduced)
	}
}

func TestExtractDeducedFromAlias(t *testing.T) {
	extractor := NewExtractor(testDictionary())

	_, deduced := extractor.Run("Bericht ueber Tesla Motors und die Konkurrenz.")

	expected := []string{"TSLA"}
	if !reflect.DeepEqual(deduced, expected) {
		t.Errorf("Expected deduced symbols %v, got %v", expected, deduced)
	}
}

func TestExtractNoPartialTickerMatch(t *testing.T) {
	extractor := NewExtractor(testDictionary())

	// "ITMX" and "nel" (lowercase) must not count as verbatim mentions.
	verbatim, _ := extractor.Run("ITMX steigt, nel faellt.")

	if len(verbatim) != 0 {
		t.Errorf("Expected no verbatim symbols, got %v", verbatim)
	}
}

func TestExtractCaseInsensitiveNames(t *testing.T) {
	extractor := NewExtractor(testDictionary())

	_, deduced := extractor.Run("PLUG POWER und NEL ASA im Wasserstoff-Check.")

	expected := []string{"NEL", "PLUG"}
	if !reflect.DeepEqual(deduced, expected) {
		t.Errorf("Expected deduced symbols %v, got %v", expected, deduced)
	}
}

func TestExtractEmptyText(t *testing.T) {
	extractor := NewExtractor(testDictionary())

	verbatim, deduced := extractor.Run("")
	if len(verbatim) != 0 || len(deduced) != 0 {
		t.Errorf("Expected no symbols for empty text, got %v / %v", verbatim, deduced)
	}
}

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yml")
	content := `
symbols:
  - ticker: ITM
    names:
      - ITM Power
  - ticker: TSLA
    names:
      - Tesla
    aliases:
      - Tesla Motors
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dict, err := LoadDictionary(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(dict.Symbols) != 2 {
		t.Fatalf("Expected 2 symbols, got %d", len(dict.Symbols))
	}
	if dict.Symbols[0].Ticker != "ITM" {
		t.Errorf("Expected first ticker 'ITM', got '%s'", dict.Symbols[0].Ticker)
	}
	if len(dict.Symbols[1].Aliases) != 1 {
		t.Errorf("Expected 1 alias for TSLA, got %d", len(dict.Symbols[1].Aliases))
	}
}

func TestLoadDictionaryDuplicateTicker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yml")
	content := `
symbols:
  - ticker: ITM
  - ticker: ITM
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadDictionary(path); err == nil {
		t.Error("Expected error for duplicate ticker")
	}
}

func TestLoadDictionaryMissingFile(t *testing.T) {
	if _, err := LoadDictionary(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected error for missing dictionary file")
	}
}
