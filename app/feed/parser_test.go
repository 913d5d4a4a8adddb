package feed

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Aktien Nachrichten</title>
    <link>https://news.example.com</link>
    <description>Stock market news</description>
    <language>de-de</language>
    <item>
      <title>Chart-Check ITM Power</title>
      <link>https://news.example.com/item1</link>
      <description>Diese Marke muss heute halten</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Opening Bell</title>
      <link>https://news.example.com/item2</link>
      <description>Tripadvisor, Alibaba, Tesla</description>
      <guid>item-2</guid>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatal(err)
	}

	if metadata.Title != "Aktien Nachrichten" {
		t.Errorf("Expected title 'Aktien Nachrichten', got '%s'", metadata.Title)
	}
	if metadata.Language != "de-de" {
		t.Errorf("Expected language 'de-de', got '%s'", metadata.Language)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	item1 := items[0]
	if item1.GUID != "item-1" {
		t.Errorf("Expected first item GUID 'item-1', got '%s'", item1.GUID)
	}
	if item1.Link != "https://news.example.com/item1" {
		t.Errorf("Expected first item link 'https://news.example.com/item1', got '%s'", item1.Link)
	}
	if item1.PubDate != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Expected raw pubDate to be preserved, got '%s'", item1.PubDate)
	}
	if item1.Title != "Chart-Check ITM Power" {
		t.Errorf("Expected first item title 'Chart-Check ITM Power', got '%s'", item1.Title)
	}
	if item1.Description != "Diese Marke muss heute halten" {
		t.Errorf("Expected first item description to be preserved, got '%s'", item1.Description)
	}
}

func TestParseGUIDFallback(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>No GUID Item</title>
      <link>https://example.com/item1</link>
      <description>Item without guid element</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, items, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].GUID != "https://example.com/item1" {
		t.Errorf("Expected GUID to fall back to link, got '%s'", items[0].GUID)
	}
}

func TestParseInvalidData(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.Run([]byte("not a feed"))
	if err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
