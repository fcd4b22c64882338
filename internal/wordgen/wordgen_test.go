package wordgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordLengthAndAlphabet(t *testing.T) {
	g := New("")
	for i := 0; i < 500; i++ {
		w := g.Word(12, 50)
		require.GreaterOrEqual(t, len(w), 12)
		require.LessOrEqual(t, len(w), 50)
		for _, c := range w {
			require.True(t, c >= 'a' && c <= 'z', "unexpected rune %q in %q", c, w)
		}
	}
}

func TestFixedLength(t *testing.T) {
	g := New("x")
	assert.Len(t, g.Word(7, 7), 7)
	assert.Empty(t, g.Word(0, 0))
}

func TestSeededIsDeterministic(t *testing.T) {
	a, b := New("seed"), New("seed")
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Word(5, 20), b.Word(5, 20))
	}

	c := New("other")
	same := true
	for i := 0; i < 10; i++ {
		if a.Word(20, 20) != c.Word(20, 20) {
			same = false
		}
	}
	assert.False(t, same)
}

func TestExpandSeed(t *testing.T) {
	s := expandSeed("abc")
	assert.Len(t, s, 32)
	assert.Equal(t, s, expandSeed("abc"))
	assert.NotEqual(t, s, expandSeed("abd"))
}
