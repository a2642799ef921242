package textextract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowed = []string{"Paracetamol", "Ibuprofen", "Insulin", "Cough Syrup"}

func TestExtractContainment(t *testing.T) {
	f := NewFuzzy()

	detected, err := f.Extract(context.Background(),
		"Medicines: paracetamol 500mg twice daily, cough syrup at night", allowed)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cough Syrup", "Paracetamol"}, detected)
}

func TestExtractCloseMatch(t *testing.T) {
	f := NewFuzzy()

	// OCR noise: one character dropped.
	detected, err := f.Extract(context.Background(), "Rx: paracetmol 2x daily", allowed)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paracetamol"}, detected)
}

func TestExtractIgnoresNoise(t *testing.T) {
	f := NewFuzzy()

	detected, err := f.Extract(context.Background(),
		"Name: John Doe Age: 44 Date: 2025-03-10", allowed)
	require.NoError(t, err)
	assert.Empty(t, detected)
}

func TestExtractEmptyText(t *testing.T) {
	detected, err := NewFuzzy().Extract(context.Background(), "", allowed)
	require.NoError(t, err)
	assert.Empty(t, detected)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("insulin", "insulin"), 1e-9)
	assert.Greater(t, similarity("paracetmol", "paracetamol"), 0.82)
	assert.Less(t, similarity("date", "paracetamol"), 0.5)
}
