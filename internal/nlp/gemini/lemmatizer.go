// Package gemini implements verb lemmatization on top of the Gemini API.
package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/nlp"
	"github.com/spigell/ats-scorer/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

// Lemmatizer asks Gemini for the verb lemmas of a text. Answers are cached by
// text digest, so scoring one resume against many job descriptions costs one
// request per distinct bullet.
type Lemmatizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int

	mu    sync.RWMutex
	cache map[[sha256.Size]byte][]string
}

// NewLemmatizer wraps generator.
func NewLemmatizer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Lemmatizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Lemmatizer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		cache:     make(map[[sha256.Size]byte][]string),
	}
}

// LemmatizeVerbs implements nlp.VerbLemmatizer. Backend and decoding failures
// are reported as nlp.ErrTaggerUnavailable.
func (l *Lemmatizer) LemmatizeVerbs(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	key := sha256.Sum256([]byte(text))
	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return append([]string(nil), cached...), nil
	}

	l.logger.Debug("gemini lemmatize request",
		zap.Int("text_length", utf8.RuneCountInString(text)),
		zap.String("text_preview", utils.TruncateForLog(text, l.maxLogLen)),
	)

	raw, err := l.generator.GenerateContent(ctx, systemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nlp.ErrTaggerUnavailable, err)
	}

	l.logger.Debug("gemini lemmatize response",
		zap.String("response_preview", utils.TruncateForLog(raw, l.maxLogLen)),
	)

	lemmas, err := parseLemmas(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nlp.ErrTaggerUnavailable, err)
	}

	l.mu.Lock()
	l.cache[key] = lemmas
	l.mu.Unlock()

	return append([]string(nil), lemmas...), nil
}

func parseLemmas(raw string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(extractJSON(raw)), &values); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
