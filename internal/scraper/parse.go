package scraper

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// pageContent is the raw output of one parse attempt: the href values
// of anchor elements in document order, and the page's visible text.
type pageContent struct {
	anchors []string
	text    string
}

// parseStrategy is one way of turning markup bytes into pageContent.
// Strategies are tried in order; the first success wins.
type parseStrategy interface {
	name() string
	parse(body []byte) (*pageContent, error)
}

// goqueryStrategy parses with a full DOM and CSS selectors.
type goqueryStrategy struct{}

func (goqueryStrategy) name() string { return "goquery" }

func (goqueryStrategy) parse(body []byte) (*pageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	content := &pageContent{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			content.anchors = append(content.anchors, href)
		}
	})

	// Drop non-visible content before reading text.
	doc.Find("script, style, noscript").Remove()
	content.text = doc.Text()

	return content, nil
}

// tokenizerStrategy is the fallback: a single streaming pass that
// tolerates markup the tree parser chokes on.
type tokenizerStrategy struct{}

func (tokenizerStrategy) name() string { return "tokenizer" }

func (tokenizerStrategy) parse(body []byte) (*pageContent, error) {
	z := html.NewTokenizer(bytes.NewReader(body))
	content := &pageContent{}
	var text strings.Builder
	hidden := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				content.text = text.String()
				return content, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			nameBytes, hasAttr := z.TagName()
			tag := string(nameBytes)
			if tt == html.StartTagToken && isHiddenTag(tag) {
				hidden++
			}
			if tag == "a" && hasAttr {
				for {
					key, val, more := z.TagAttr()
					if string(key) == "href" {
						content.anchors = append(content.anchors, string(val))
						break
					}
					if !more {
						break
					}
				}
			}

		case html.EndTagToken:
			nameBytes, _ := z.TagName()
			if isHiddenTag(string(nameBytes)) && hidden > 0 {
				hidden--
			}

		case html.TextToken:
			if hidden == 0 {
				text.Write(z.Text())
				text.WriteByte(' ')
			}
		}
	}
}

func isHiddenTag(tag string) bool {
	return tag == "script" || tag == "style" || tag == "noscript"
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
