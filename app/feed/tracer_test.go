package feed

import (
	"testing"
)

func TestTraceMetaRefresh(t *testing.T) {
	page := `<html>
<head>
  <meta http-equiv="refresh" content="0; url=https://publisher.example.com/articles/chart-check.html">
</head>
<body>Weiterleitung...</body>
</html>`

	tracer := NewTracer()
	dest, err := tracer.Run("https://aggregator.example.com/news/52172551.htm", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	if dest != "https://publisher.example.com/articles/chart-check.html" {
		t.Errorf("Expected meta refresh target, got '%s'", dest)
	}
}

func TestTraceDirectContent(t *testing.T) {
	page := `<html>
<head>
  <link rel="canonical" href="https://aggregator.example.com/news/52158803.htm">
</head>
<body><p>Full article hosted here.</p></body>
</html>`

	tracer := NewTracer()
	dest, err := tracer.Run("https://aggregator.example.com/news/52158803.htm", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	// A canonical pointing at the page itself means direct content.
	if dest != "https://aggregator.example.com/news/52158803.htm" {
		t.Errorf("Expected page to resolve to itself, got '%s'", dest)
	}
}

func TestTraceOffSiteCanonical(t *testing.T) {
	page := `<html>
<head>
  <link rel="canonical" href="https://publisher.example.com/2021/03/05/curevac-kursziel/">
</head>
<body>Teaser only.</body>
</html>`

	tracer := NewTracer()
	dest, err := tracer.Run("https://aggregator.example.com/news/52206697.htm", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	if dest != "https://publisher.example.com/2021/03/05/curevac-kursziel/" {
		t.Errorf("Expected off-site canonical target, got '%s'", dest)
	}
}

func TestTraceOgURL(t *testing.T) {
	page := `<html>
<head>
  <meta property="og:url" content="https://publisher.example.com/story">
</head>
<body></body>
</html>`

	tracer := NewTracer()
	dest, err := tracer.Run("https://aggregator.example.com/news/1.htm", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	if dest != "https://publisher.example.com/story" {
		t.Errorf("Expected og:url target, got '%s'", dest)
	}
}

func TestTraceRelativeRefresh(t *testing.T) {
	page := `<html>
<head>
  <meta http-equiv="refresh" content="0; url=/articles/123.html">
</head>
</html>`

	tracer := NewTracer()
	dest, err := tracer.Run("https://aggregator.example.com/news/1.htm", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	if dest != "https://aggregator.example.com/articles/123.html" {
		t.Errorf("Expected relative target resolved against page URL, got '%s'", dest)
	}
}

func TestTraceNoTargets(t *testing.T) {
	page := `<html><body><p>Plain page without redirect hints.</p></body></html>`

	tracer := NewTracer()
	dest, err := tracer.Run("https://aggregator.example.com/news/1.htm", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	if dest != "https://aggregator.example.com/news/1.htm" {
		t.Errorf("Expected page to resolve to itself, got '%s'", dest)
	}
}

func TestRefreshTarget(t *testing.T) {
	cases := map[string]string{
		"0; url=https://example.com/a":   "https://example.com/a",
		"5;URL=https://example.com/b":    "https://example.com/b",
		`0; url='https://example.com/c'`: "https://example.com/c",
		"30":                             "",
		"":                               "",
	}

	for content, expected := range cases {
		if got := refreshTarget(content); got != expected {
			t.Errorf("refreshTarget(%q): expected %q, got %q", content, expected, got)
		}
	}
}
