package enumopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color interface {
	Option
	Hex() string
}

type red struct{ Base[color] }

func (red) Hex() string { return "#f00" }

type blue struct{ Base[color] }

func (blue) Hex() string { return "#00f" }

func colors() []color {
	return []color{
		&red{Base: NewBase[color](1, "Red")},
		&blue{Base: NewBase[color](2, "Blue")},
	}
}

func TestBase(t *testing.T) {
	b := NewBase[color](7, "Seven")
	assert.Equal(t, 7, b.ID())
	assert.Equal(t, "Seven", b.Name())
	assert.Equal(t, "Seven", b.String())

	var o Option = &red{Base: b}
	assert.Equal(t, 7, o.ID())
}

func TestIndex(t *testing.T) {
	all := colors()
	byID := NewIndex(all, func(c color) int { return c.ID() })

	v, ok := byID.Get(2)
	require.True(t, ok)
	assert.Same(t, all[1], v)
	assert.Equal(t, 2, byID.Len())

	v, ok = byID.Get(3)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestIndexLastWins(t *testing.T) {
	all := append(colors(), &red{Base: NewBase[color](1, "Crimson")})
	byID := NewIndex(all, func(c color) int { return c.ID() })

	v, ok := byID.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Crimson", v.Name())
}

func TestIndexOrdinal(t *testing.T) {
	byName := NewIndex(colors(), func(c color) string { return c.Name() })

	_, ok := byName.Get("red")
	assert.False(t, ok)
	_, ok = byName.Get("Red")
	assert.True(t, ok)
}

func TestFoldedIndex(t *testing.T) {
	byName := NewFoldedIndex(colors(), func(c color) string { return c.Name() })

	for _, q := range []string{"red", "RED", "Red"} {
		v, ok := byName.Get(q)
		require.True(t, ok, q)
		assert.Equal(t, "Red", v.Name())
	}
}

func TestMultiIndex(t *testing.T) {
	all := colors()
	byHex := NewMultiIndex(append(all, &red{Base: NewBase[color](3, "Scarlet")}), func(c color) string { return c.Hex() })

	reds := byHex.Get("#f00")
	require.Len(t, reds, 2)
	assert.Equal(t, "Red", reds[0].Name())
	assert.Equal(t, "Scarlet", reds[1].Name())
	assert.Nil(t, byHex.Get("#0f0"))

	reds[0] = nil
	assert.NotNil(t, byHex.Get("#f00")[0], "Get must return a copy")
}

func TestFoldedMultiIndex(t *testing.T) {
	byName := NewFoldedMultiIndex(colors(), func(c color) string { return c.Name() })
	assert.Len(t, byName.Get("BLUE"), 1)
	assert.Equal(t, 2, byName.Len())
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, FoldKey("Ärger"), FoldKey("äRGER"))
	assert.Equal(t, "high", FoldKey("HIGH"))
}

func TestKeyedIndex(t *testing.T) {
	all := colors()
	byName := NewKeyedIndex([]string{"Rot", "Blau"}, all)

	v, ok := byName.Get("Blau")
	require.True(t, ok)
	assert.Same(t, all[1], v)

	assert.Panics(t, func() { NewKeyedIndex([]string{"Rot"}, all) })
}

func TestKeyedMultiIndex(t *testing.T) {
	all := colors()
	byCategory := NewKeyedMultiIndex([]string{"warm", ""}, all)

	assert.Len(t, byCategory.Get("warm"), 1)
	assert.Nil(t, byCategory.Get(""))
	assert.Equal(t, 1, byCategory.Len())
}

func TestSelectedIndex(t *testing.T) {
	all := []color{
		&red{Base: NewBase[color](1, "Red")},
		&blue{Base: NewBase[color](0, "Blue")},
		&blue{Base: NewBase[color](0, "Navy")},
	}
	byID := NewIndex(Select([]bool{true, false, false}, all), func(c color) int { return c.ID() })

	v, ok := byID.Get(1)
	require.True(t, ok)
	assert.Same(t, all[0], v)
	_, ok = byID.Get(0)
	assert.False(t, ok, "values left out by the mask are not indexed")
	assert.Equal(t, 1, byID.Len())

	assert.Len(t, all, 3, "the input is not modified")
	assert.Panics(t, func() { Select([]bool{true}, all) })
}
