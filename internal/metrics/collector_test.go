package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySnapshot(t *testing.T) {
	snap := NewCollector().Snapshot()

	assert.Nil(t, snap.Turn)
	assert.Nil(t, snap.LLMChat)
	assert.Nil(t, snap.LLMPrompt)
	assert.Nil(t, snap.DBQuery)
	assert.Zero(t, snap.ExtractionHits)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpTurn, 10*time.Millisecond)
	c.RecordTiming(OpTurn, 30*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.Turn)
	assert.Equal(t, int64(2), snap.Turn.Count)
	assert.Equal(t, int64(40), snap.Turn.TotalTimeMs)
	assert.Equal(t, 20.0, snap.Turn.AvgTimeMs)
	assert.Equal(t, int64(10), snap.Turn.MinTimeMs)
	assert.Equal(t, int64(30), snap.Turn.MaxTimeMs)
	assert.Nil(t, snap.Turn.TotalInputTokens, "timing-only ops carry no token stats")
}

func TestRecordTurnByMode(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.Snapshot().TurnsByMode)

	c.RecordTurn("standard", 5*time.Millisecond)
	c.RecordTurn("standard", 7*time.Millisecond)
	c.RecordTurn("viral", 9*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.Turn)
	assert.Equal(t, int64(3), snap.Turn.Count)
	assert.Equal(t, map[string]int64{"standard": 2, "viral": 1}, snap.TurnsByMode)
}

func TestRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMChat, 100*time.Millisecond, 200, 50)
	c.RecordLLMUsage(OpLLMChat, 300*time.Millisecond, 400, 150)

	snap := c.Snapshot()
	require.NotNil(t, snap.LLMChat)
	assert.Equal(t, int64(2), snap.LLMChat.Count)
	require.NotNil(t, snap.LLMChat.TotalInputTokens)
	assert.Equal(t, int64(600), *snap.LLMChat.TotalInputTokens)
	assert.Equal(t, int64(200), *snap.LLMChat.TotalOutputTokens)
	assert.Equal(t, 300.0, *snap.LLMChat.AvgInputTokens)
	assert.Equal(t, int64(200), *snap.LLMChat.MinInputTokens)
	assert.Equal(t, int64(400), *snap.LLMChat.MaxInputTokens)
	assert.Equal(t, int64(50), *snap.LLMChat.MinOutputTokens)
	assert.Equal(t, int64(150), *snap.LLMChat.MaxOutputTokens)
	assert.Nil(t, snap.LLMPrompt)
}

func TestRecordLLMUsageWithoutTokens(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMPrompt, time.Millisecond, 0, 0)

	snap := c.Snapshot()
	require.NotNil(t, snap.LLMPrompt)
	assert.Nil(t, snap.LLMPrompt.TotalInputTokens)
}

func TestIncrement(t *testing.T) {
	c := NewCollector()
	c.Increment(CountExtractionHit)
	c.Increment(CountExtractionHit)
	c.Increment(CountExtractionMiss)
	c.Increment(CountValidationRejected)
	c.Increment(CountTurnFailed)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.ExtractionHits)
	assert.Equal(t, int64(1), snap.ExtractionMisses)
	assert.Equal(t, int64(1), snap.ValidationRejected)
	assert.Equal(t, int64(1), snap.TurnsFailed)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpDBQuery, time.Millisecond)
			c.Increment(CountExtractionMiss)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.NotNil(t, snap.DBQuery)
	assert.Equal(t, int64(50), snap.DBQuery.Count)
	assert.Equal(t, int64(50), snap.ExtractionMisses)
}
