// Package synth turns extracted concepts into multiple-choice questions.
package synth

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mind-engage/edueval/internal/concept"
	"github.com/mind-engage/edueval/internal/exam"
)

const (
	// MaxQuestions bounds the number of questions produced per document.
	MaxQuestions = 8
	// MinConcepts is the least material needed to generate anything.
	MinConcepts = 2
	numOptions  = exam.OptionsPerQuestion
)

var templates = []string{
	"Qu'est-ce que %s ?",
	"Quelle est la définition de %s ?",
	"Quel est le rôle de %s ?",
	"Quelles sont les caractéristiques de %s ?",
}

// CorrectAnswer is the synthetic correct option for a concept.
func CorrectAnswer(c string) string { return "Réponse correcte pour " + c }

func distractors() []string {
	out := make([]string, numOptions-1)
	for i := range out {
		out[i] = fmt.Sprintf("Option alternative %d", i+1)
	}
	return out
}

// Generator owns the single random source behind every draw
// (template, concept, option shuffle).
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Generator whose output is fully determined by seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandom seeds from the clock.
func NewRandom() *Generator {
	return New(uint64(time.Now().UnixNano()))
}

// Generate returns up to MaxQuestions questions for text. Fewer than
// MinConcepts concepts yields an empty slice; duplicate (template, concept)
// pairs are allowed.
func (g *Generator) Generate(text string) []exam.Question {
	return g.FromConcepts(concept.Extract(text))
}

// FromConcepts is Generate without the extraction step.
func (g *Generator) FromConcepts(concepts []string) []exam.Question {
	if len(concepts) < MinConcepts {
		return []exam.Question{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	n := min(MaxQuestions, len(concepts))
	out := make([]exam.Question, 0, n)
	for i := 0; i < n; i++ {
		tmpl := templates[g.rng.IntN(len(templates))]
		c := concepts[g.rng.IntN(len(concepts))]

		correct := CorrectAnswer(c)
		opts := append([]string{correct}, distractors()...)
		g.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })

		out = append(out, exam.Question{
			Text:               fmt.Sprintf(tmpl, c),
			Type:               exam.TypeQCM,
			Concept:            c,
			Options:            opts,
			CorrectOptionIndex: indexOf(opts, correct) + 1,
		})
	}
	return out
}

func indexOf(arr []string, s string) int {
	for i, v := range arr {
		if v == s {
			return i
		}
	}
	return -1
}
