// Package score defines the scored reply records returned by the remote
// scoring service and the reconciliation logic that folds repeated, partial
// poll responses into one deduplicated, score-ordered result set.
package score

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a score that tolerates the wire formats the scoring service has
// historically used: JSON numbers and numeric strings. Anything that cannot
// be coerced decodes to 0 so the record is retained rather than dropped.
type Value float64

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*v = 0
		return nil //nolint:nilerr // Uncoercible scores sort as 0 but keep the record.
	}
	*v = Value(f)
	return nil
}

// MarshalJSON emits the score as a plain number.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(v))
}

// ID is a record identifier that tolerates string and integer wire forms.
type ID string

// UnmarshalJSON accepts strings, numbers, and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*id = ""
		return nil
	}
	*id = ID(strings.Trim(s, `"`))
	return nil
}

// MarshalJSON emits the identifier as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// ResultRecord is one scored reply as reconciled from the results endpoint.
type ResultRecord struct {
	ID                ID     `json:"id,omitempty"`
	TweetID           string `json:"tweetId,omitempty"`
	ReplyText         string `json:"replyText"`
	OriginalTweetText string `json:"originalTweetText"`
	Score             Value  `json:"score"`

	// Ranking is derived after sorting: the 1-based position in the
	// result set. Never trusted from the wire.
	Ranking int `json:"ranking,omitempty"`

	JobID     string `json:"jobId,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// recordAliases maps each canonical field to the historical wire names seen
// from the scoring service, in priority order. The first present alias wins.
var recordAliases = map[string][]string{ //nolint:gochecknoglobals // Compile-time lookup table.
	"id":                {"id", "_id", "recordId"},
	"tweetId":           {"tweetId", "tweet_id", "tweetID"},
	"replyText":         {"replyText", "reply_text", "reply"},
	"originalTweetText": {"originalTweetText", "original_tweet_text", "tweetText", "originalTweet"},
	"score":             {"score", "relevanceScore", "relevance_score"},
	"jobId":             {"jobId", "job_id"},
	"url":               {"url", "tweetUrl", "tweet_url"},
	"createdAt":         {"createdAt", "created_at"},
	"updatedAt":         {"updatedAt", "updated_at"},
}

// UnmarshalJSON normalizes the historical field-name variants into the
// canonical record shape before decoding.
func (r *ResultRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding result record: %w", err)
	}

	canonical := make(map[string]json.RawMessage, len(recordAliases))
	for field, aliases := range recordAliases {
		for _, alias := range aliases {
			if v, ok := raw[alias]; ok {
				canonical[field] = v
				break
			}
		}
	}

	type plain ResultRecord
	var dst plain
	normalized, err := json.Marshal(canonical)
	if err != nil {
		return fmt.Errorf("normalizing result record: %w", err)
	}
	if err := json.Unmarshal(normalized, &dst); err != nil {
		return fmt.Errorf("decoding normalized result record: %w", err)
	}
	*r = ResultRecord(dst)
	return nil
}

// Identity returns the dedup key: the record-level ID when present,
// otherwise a composite of tweet ID and reply text.
func (r *ResultRecord) Identity() string {
	if r.ID != "" {
		return "id:" + string(r.ID)
	}
	return "composite:" + r.TweetID + "\x1f" + r.ReplyText
}
