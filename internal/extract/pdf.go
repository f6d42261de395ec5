package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// PDFToText runs poppler's pdftotext. The layout pass keeps column order on
// slides; when it yields nothing the raw content-stream order is tried.
type PDFToText struct {
	Bin     string
	Timeout time.Duration
}

func NewPDFToText() *PDFToText {
	return &PDFToText{Bin: "pdftotext", Timeout: 30 * time.Second}
}

func (p *PDFToText) Accepts(name string) bool { return ext(name) == ".pdf" }

func (p *PDFToText) Extract(ctx context.Context, _ string, data []byte) (string, error) {
	f, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return "", err
	}
	defer func() { f.Close(); os.Remove(f.Name()) }()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	var lastErr error
	for _, mode := range []string{"-layout", "-raw"} {
		out, err := p.run(ctx, mode, f.Name())
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(out) != "" {
			return out, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoText
}

func (p *PDFToText) run(ctx context.Context, mode, path string) (string, error) {
	bin := p.Bin
	if bin == "" {
		bin = "pdftotext"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return "", errors.New("pdftotext not found in PATH")
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, mode, "-enc", "UTF-8", path, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.New(strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
