// Package extract turns uploaded course documents into plain text.
package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when no extractor produced any text. Callers only
// ever see this one error, whatever fallbacks were tried.
var ErrNoText = errors.New("no extractable text")

type Extractor interface {
	// Accepts reports whether the extractor handles files named like name.
	Accepts(name string) bool
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// Chain tries each accepting extractor in order and returns the first
// non-empty text.
type Chain []Extractor

func (c Chain) Accepts(name string) bool {
	for _, e := range c {
		if e.Accepts(name) {
			return true
		}
	}
	return false
}

func (c Chain) Extract(ctx context.Context, name string, data []byte) (string, error) {
	for _, e := range c {
		if !e.Accepts(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.Extract(ctx, name, data)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", ErrNoText
}

// Default is the chain used by the server and CLI.
func Default() Chain {
	return Chain{
		NewPDFToText(),
		NewTesseract(),
		HTML{},
		Plain{},
	}
}

func ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
