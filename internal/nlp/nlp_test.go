package nlp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubLemmatizer struct {
	lemmas []string
	err    error
	calls  int
}

func (s *stubLemmatizer) LemmatizeVerbs(context.Context, string) ([]string, error) {
	s.calls++
	return s.lemmas, s.err
}

func TestTolerantPassesThrough(t *testing.T) {
	t.Parallel()

	stub := &stubLemmatizer{lemmas: []string{"build"}}
	got, err := NewTolerant(stub, nil).LemmatizeVerbs(context.Background(), "built")

	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, got)
}

func TestTolerantDegradesAndWarnsOnce(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	stub := &stubLemmatizer{err: fmt.Errorf("calling backend: %w", ErrTaggerUnavailable)}
	tol := NewTolerant(stub, zap.New(core))

	for i := 0; i < 3; i++ {
		got, err := tol.LemmatizeVerbs(context.Background(), "built")
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	assert.Equal(t, 3, stub.calls)
	assert.Equal(t, 1, logs.FilterMessage("action verb extraction disabled").Len())
}

func TestTolerantKeepsOtherErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := NewTolerant(&stubLemmatizer{err: boom}, nil).LemmatizeVerbs(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestTolerantWithoutLemmatizer(t *testing.T) {
	t.Parallel()

	got, err := NewTolerant(nil, nil).LemmatizeVerbs(context.Background(), "built")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Unavailable{}.LemmatizeVerbs(context.Background(), "built")
	assert.ErrorIs(t, err, ErrTaggerUnavailable)
}

func TestLocalTagger(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the english lemma dictionary")
	}

	tagger, err := NewLocalTagger(nil)
	require.NoError(t, err)

	got, err := tagger.LemmatizeVerbs(context.Background(), "We deployed the new service and it works.")
	require.NoError(t, err)
	assert.Contains(t, got, "deploy")
	assert.NotContains(t, got, "service")

	got, err = tagger.LemmatizeVerbs(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
