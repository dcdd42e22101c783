package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	t.Run("basic lines", func(t *testing.T) {
		items, skipped := ParseText("Coca = 2\nAbsolut 750 ml = 1.5")
		require.Len(t, items, 2)
		assert.Equal(t, 0, skipped)
		assert.Equal(t, Item{RawName: "Coca", Qty: 2}, items[0])
		assert.Equal(t, Item{RawName: "Absolut 750 ml", Qty: 1.5}, items[1])
	})

	t.Run("comma decimal separator", func(t *testing.T) {
		items, _ := ParseText("Tonica = 1,5")
		require.Len(t, items, 1)
		assert.Equal(t, 1.5, items[0].Qty)
	})

	t.Run("whitespace around equals is insignificant", func(t *testing.T) {
		items, _ := ParseText("  Coca=2  \nRon   Añejo =  3")
		require.Len(t, items, 2)
		assert.Equal(t, "Coca", items[0].RawName)
		assert.Equal(t, "Ron Añejo", items[1].RawName)
	})

	t.Run("non-matching lines are skipped and counted", func(t *testing.T) {
		items, skipped := ParseText("Coca = 2\nesto no es una linea\nTonica = 3")
		assert.Len(t, items, 2)
		assert.Equal(t, 1, skipped)
	})

	t.Run("blank lines are not counted as skipped", func(t *testing.T) {
		items, skipped := ParseText("Coca = 2\n\n\nTonica = 3")
		assert.Len(t, items, 2)
		assert.Equal(t, 0, skipped)
	})

	t.Run("no parseable lines", func(t *testing.T) {
		items, skipped := ParseText("hola que tal")
		assert.Empty(t, items)
		assert.Equal(t, 1, skipped)
	})

	t.Run("negative numbers do not match", func(t *testing.T) {
		items, skipped := ParseText("Coca = -2")
		assert.Empty(t, items)
		assert.Equal(t, 1, skipped)
	})
}

// Parsed values survive formatting to two decimals, which is how every reply
// renders quantities.
func TestParseFormatRoundTrip(t *testing.T) {
	for _, in := range []string{"Coca = 2", "Coca = 1.5", "Coca = 1,5", "Coca = 0.33", "Coca = 12,25"} {
		items, _ := ParseText(in)
		require.Len(t, items, 1, in)
		reparsed, _ := ParseText(fmt.Sprintf("Coca = %.2f", items[0].Qty))
		require.Len(t, reparsed, 1, in)
		assert.InDelta(t, items[0].Qty, reparsed[0].Qty, 0.005, in)
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Ron Añejo", CleanName("  Ron   Añejo "))
	assert.Equal(t, "", CleanName("   "))
}
