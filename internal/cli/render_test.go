package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/replylab/replyrank/internal/score"
)

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, score.Summary{
		TotalProcessed: 4,
		AverageScore:   6.25,
		HighestScore:   9,
		LowestScore:    2,
	}, 3)

	out := buf.String()
	assert.Contains(t, out, "SCORING SUMMARY")
	assert.Contains(t, out, "4 replies")
	assert.Contains(t, out, "3 jobs")
	assert.Contains(t, out, "6.25")
	assert.Contains(t, out, "9.00")
	assert.Contains(t, out, "2.00")
}

func TestStyleForScore(t *testing.T) {
	assert.Equal(t, scoreGoodStyle, styleForScore(8.1))
	assert.Equal(t, scoreWarnStyle, styleForScore(5))
	assert.Equal(t, scoreBadStyle, styleForScore(1))
}
