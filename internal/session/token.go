package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mind-engage/edueval/internal/exam"
)

const tokenIssuer = "edueval"

// Tokens issues and verifies resume tickets for started sessions. A ticket
// identifies a session; it does not authenticate anybody.
type Tokens struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

type ResumeClaims struct {
	SessionID      string `json:"sid"`
	StudentID      string `json:"student"`
	EvaluationName string `json:"evaluation"`
	jwt.RegisteredClaims
}

func (t *Tokens) Issue(s *Session) (string, error) {
	now := t.now()
	claims := &ResumeClaims{
		SessionID:      s.ID,
		StudentID:      s.StudentID,
		EvaluationName: s.Evaluation.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.hmac)
}

func (t *Tokens) Parse(tokenStr string) (*ResumeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ResumeClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: resume token: %v", exam.ErrInput, err)
	}
	c, ok := token.Claims.(*ResumeClaims)
	if !ok || !token.Valid || c.SessionID == "" {
		return nil, fmt.Errorf("%w: resume token", exam.ErrInput)
	}
	return c, nil
}
