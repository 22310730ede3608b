package score

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultRecord_Unmarshal(t *testing.T) {
	t.Run("CanonicalFields", func(t *testing.T) {
		body := `{"id":"r1","tweetId":"t1","replyText":"nice","originalTweetText":"hello","score":7.5,"jobId":"j1","url":"https://x.com/1"}`
		var r ResultRecord
		require.NoError(t, json.Unmarshal([]byte(body), &r))
		assert.Equal(t, ID("r1"), r.ID)
		assert.Equal(t, "t1", r.TweetID)
		assert.Equal(t, "nice", r.ReplyText)
		assert.Equal(t, "hello", r.OriginalTweetText)
		assert.Equal(t, Value(7.5), r.Score)
		assert.Equal(t, "j1", r.JobID)
	})

	t.Run("HistoricalFieldNames", func(t *testing.T) {
		body := `{"_id":42,"tweet_id":"t9","reply":"ok","tweetText":"orig","relevanceScore":"3","job_id":"j2"}`
		var r ResultRecord
		require.NoError(t, json.Unmarshal([]byte(body), &r))
		assert.Equal(t, ID("42"), r.ID)
		assert.Equal(t, "t9", r.TweetID)
		assert.Equal(t, "ok", r.ReplyText)
		assert.Equal(t, "orig", r.OriginalTweetText)
		assert.Equal(t, Value(3), r.Score)
		assert.Equal(t, "j2", r.JobID)
	})

	t.Run("AliasPriorityOrder", func(t *testing.T) {
		// Canonical name wins over the legacy one when both are present.
		body := `{"replyText":"new","reply":"old","score":1}`
		var r ResultRecord
		require.NoError(t, json.Unmarshal([]byte(body), &r))
		assert.Equal(t, "new", r.ReplyText)
	})

	t.Run("StringScoreCoerced", func(t *testing.T) {
		var r ResultRecord
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","score":"7"}`), &r))
		assert.Equal(t, Value(7), r.Score)
	})

	t.Run("UncoercibleScoreRetainedAsZero", func(t *testing.T) {
		var r ResultRecord
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","score":"high"}`), &r))
		assert.Equal(t, Value(0), r.Score)
	})

	t.Run("NullScore", func(t *testing.T) {
		var r ResultRecord
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","score":null}`), &r))
		assert.Equal(t, Value(0), r.Score)
	})

	t.Run("NonObjectFails", func(t *testing.T) {
		var r ResultRecord
		assert.Error(t, json.Unmarshal([]byte(`"not an object"`), &r))
	})
}

func TestResultRecord_Identity(t *testing.T) {
	t.Run("PrefersRecordID", func(t *testing.T) {
		a := ResultRecord{ID: "x", TweetID: "t1", ReplyText: "r1"}
		b := ResultRecord{ID: "x", TweetID: "t2", ReplyText: "r2"}
		assert.Equal(t, a.Identity(), b.Identity())
	})

	t.Run("CompositeFallback", func(t *testing.T) {
		a := ResultRecord{TweetID: "t1", ReplyText: "hello"}
		b := ResultRecord{TweetID: "t1", ReplyText: "hello"}
		c := ResultRecord{TweetID: "t1", ReplyText: "other"}
		assert.Equal(t, a.Identity(), b.Identity())
		assert.NotEqual(t, a.Identity(), c.Identity())
	})

	t.Run("IDAndCompositeNamespacesDisjoint", func(t *testing.T) {
		withID := ResultRecord{ID: "composite:t\x1fr"}
		composite := ResultRecord{TweetID: "t", ReplyText: "r"}
		assert.NotEqual(t, withID.Identity(), composite.Identity())
	})
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(ResultRecord{ID: "a", Score: 6.25})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"score":6.25`)
}
