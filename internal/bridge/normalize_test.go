package bridge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/fluxnet/internal/model"
)

func collect() (*[]any, Poster) {
	var posted []any
	return &posted, posterFunc(func(_ model.Target, v any) { posted = append(posted, v) })
}

func TestNormalizer_ZeroElapsedPostsOnce(t *testing.T) {
	posted, poster := collect()
	n := NewNormalizer(poster, model.TargetDownload)

	n.Sample(0, 0)
	n.Sample(100, 0)
	n.Sample(200, -1)
	n.Sample(300, 0)

	assert.Equal(t, []any{"0.00"}, *posted)
}

func TestNormalizer_ZeroAfterRealSampleIsIgnored(t *testing.T) {
	posted, poster := collect()
	n := NewNormalizer(poster, model.TargetUpload)

	n.Sample(1_000_000, 1)
	n.Sample(1_000_000, 0)

	assert.Equal(t, []any{"8.00"}, *posted)
}

func TestNormalizer_ScenarioC(t *testing.T) {
	posted, poster := collect()
	n := NewNormalizer(poster, model.TargetDownload)

	n.Sample(1_000_000, 0.5)

	assert.Equal(t, []any{"16.00"}, *posted)
}

func TestNormalizer_TwoDecimalRounding(t *testing.T) {
	tests := []struct {
		bytes    int64
		elapsed  float64
		expected string
	}{
		{1_000_000, 0.5, "16.00"},
		{10_931_250, 1, "87.45"},
		{1_165_000, 1, "9.32"},
		{123_456, 0.3, "3.29"},
		{1, 3, "0.00"},
		{5_000_000_000, 7, "5714.29"},
	}

	for _, test := range tests {
		posted, poster := collect()
		NewNormalizer(poster, model.TargetDownload).Sample(test.bytes, test.elapsed)

		expected := math.Round(float64(test.bytes)*8/1_000_000/test.elapsed*100) / 100
		assert.Equal(t, test.expected, (*posted)[0])
		assert.Equal(t, FormatValue(expected), (*posted)[0])
	}
}

func TestNormalizer_EveryPositiveSamplePosts(t *testing.T) {
	posted, poster := collect()
	n := NewNormalizer(poster, model.TargetDownload)

	n.Sample(0, 0)
	n.Sample(500_000, 0.5)
	n.Sample(1_500_000, 1)

	assert.Equal(t, []any{"0.00", "8.00", "12.00"}, *posted)
}

func TestNormalizer_OnSample(t *testing.T) {
	_, poster := collect()
	calls := 0
	n := NewNormalizer(poster, model.TargetDownload).OnSample(func() { calls++ })

	n.Sample(0, 0)
	n.Sample(0, 0)
	n.Sample(10, 1)

	assert.Equal(t, 3, calls)
}

func TestMegabitsPerSecond(t *testing.T) {
	assert.Equal(t, 16.0, MegabitsPerSecond(1_000_000, 0.5))
	assert.Equal(t, "87.45", FormatValue(87_450_000/1_000_000.0))
}

func TestNormalizer_StopDiscardsLateSamples(t *testing.T) {
	posted, poster := collect()
	n := NewNormalizer(poster, model.TargetDownload)

	n.Sample(1_000_000, 1)
	n.Stop()
	n.Sample(2_000_000, 1)
	n.Sample(0, 0)

	assert.Equal(t, []any{"8.00"}, *posted)
}
