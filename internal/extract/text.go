package extract

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

// HTML keeps the main article text of a saved web page.
type HTML struct{}

func (HTML) Accepts(name string) bool {
	switch ext(name) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func (HTML) Extract(_ context.Context, name string, data []byte) (string, error) {
	page := &url.URL{Scheme: "file", Path: "/" + strings.TrimPrefix(name, "/")}
	article, err := readability.FromReader(bytes.NewReader(data), page)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// Plain accepts UTF-8 text and markdown files as they are.
type Plain struct{}

func (Plain) Accepts(name string) bool {
	switch ext(name) {
	case ".txt", ".md", ".markdown", "":
		return true
	}
	return false
}

func (Plain) Extract(_ context.Context, _ string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("not valid UTF-8")
	}
	return string(data), nil
}
