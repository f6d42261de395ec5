package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

// Tesseract OCRs scanned pages and photographed handouts.
type Tesseract struct {
	Lang    string
	Timeout time.Duration
}

func NewTesseract() *Tesseract {
	return &Tesseract{Lang: "fra+eng", Timeout: 20 * time.Second}
}

func (t *Tesseract) Accepts(name string) bool {
	switch ext(name) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}

func (t *Tesseract) Extract(ctx context.Context, name string, data []byte) (string, error) {
	f, err := os.CreateTemp("", "scan-*"+ext(name))
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
	return t.exec(ctx, f.Name())
}

func (t *Tesseract) exec(ctx context.Context, inPath string) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", errors.New("tesseract not found in PATH")
	}
	args := []string{inPath, "stdout"}
	if t.Lang != "" {
		args = append(args, "-l", t.Lang)
	}
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "tesseract", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.New(stderr.String())
	}
	return out.String(), nil
}
