package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicart/internal/domain/catalog"
)

func medicine(name string, price float64, stock int) *catalog.Medicine {
	return &catalog.Medicine{Name: name, UnitPrice: price, Stock: stock}
}

func TestAdd(t *testing.T) {
	c := New()
	m := medicine("Paracetamol", 10, 150)

	require.NoError(t, c.Add(m, 5))
	require.NoError(t, c.Add(m, 3))
	assert.Equal(t, 8, c["Paracetamol"], "add is additive, not replacing")

	assert.ErrorIs(t, c.Add(m, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(m, 151), catalog.ErrInsufficientStock)
}

func TestSet(t *testing.T) {
	c := New()
	m := medicine("Insulin", 36, 30)

	require.NoError(t, c.Set(m, 4))
	require.NoError(t, c.Set(m, 2))
	assert.Equal(t, 2, c["Insulin"], "set replaces the line")

	assert.ErrorIs(t, c.Set(m, 31), catalog.ErrInsufficientStock)

	require.NoError(t, c.Set(m, 0))
	assert.NotContains(t, c, "Insulin", "non-positive quantity removes the line")
}

func TestRemove(t *testing.T) {
	c := Cart{"Antacid": 2}
	require.NoError(t, c.Remove("Antacid"))
	assert.ErrorIs(t, c.Remove("Antacid"), ErrNotFound)
}

func TestSubtotal(t *testing.T) {
	cat := catalog.Catalog{
		"Paracetamol": medicine("Paracetamol", 10, 150),
		"Insulin":     medicine("Insulin", 36, 30),
	}
	c := Cart{"Paracetamol": 5, "Insulin": 2, "Ghost": 1}
	assert.InDelta(t, 5*10+2*36.0, c.Subtotal(cat), 1e-9)
}

func TestClear(t *testing.T) {
	c := Cart{"Paracetamol": 5}
	c.Clear()
	assert.True(t, c.IsEmpty())
}
