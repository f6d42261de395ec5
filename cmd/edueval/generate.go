package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/edueval/internal/concept"
	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/extract"
	"github.com/mind-engage/edueval/internal/synth"
)

type generateOutput struct {
	Source    string          `json:"source"`
	Concepts  []string        `json:"concepts"`
	Questions []exam.Question `json:"questions"`
}

func generateCMD() *cobra.Command {
	var input, output string
	var seed uint64
	var gen = &cobra.Command{
		Use:   "generate",
		Short: "Extract a document's text and print generated questions as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runGenerate(ctx, extract.Default(), input, seed, w)
		},
	}
	gen.Flags().StringVarP(&input, "input", "i", "", "course document (pdf, image, html, txt)")
	gen.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	gen.Flags().Uint64Var(&seed, "seed", 0, "random seed; 0 seeds from the clock")
	return gen
}

func runGenerate(ctx context.Context, ex extract.Extractor, input string, seed uint64, w io.Writer) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	text, err := ex.Extract(ctx, filepath.Base(input), data)
	if err != nil {
		return err
	}

	g := synth.NewRandom()
	if seed != 0 {
		g = synth.New(seed)
	}
	concepts := concept.Extract(text)
	qs := g.FromConcepts(concepts)
	if len(qs) == 0 {
		return fmt.Errorf("%w: %d concept(s) found in %s", exam.ErrInsufficientMaterial, len(concepts), input)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(generateOutput{Source: filepath.Base(input), Concepts: concepts, Questions: qs})
}
