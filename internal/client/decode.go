package client

import (
	"bytes"
	"encoding/json"

	"github.com/replylab/replyrank/internal/score"
)

// jobEnvelope is the results endpoint's response body once unwrapped.
type jobEnvelope struct {
	Status  string               `json:"status"`
	Results []score.ResultRecord `json:"results"`
}

// statusDone is the envelope status that marks a completed job.
const statusDone = "done"

// decodeJobEnvelope normalizes a results response body into a JobUpdate.
// It is total: every input maps to an outcome, with "still pending" as the
// fallback for anything ambiguous or malformed. Known shapes are tried in
// priority order:
//  1. a one-element JSON array wrapping the envelope object
//  2. a bare envelope object
//
// Empty bodies, non-JSON bodies, unknown statuses, and "done" envelopes
// with zero attached records all decode to pending.
func decodeJobEnvelope(data []byte) JobUpdate {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return JobUpdate{}
	}

	if data[0] == '[' {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(data, &wrapped); err != nil || len(wrapped) == 0 {
			return JobUpdate{}
		}
		data = wrapped[0]
	}

	var env jobEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return JobUpdate{}
	}

	if env.Status != statusDone || len(env.Results) == 0 {
		return JobUpdate{}
	}

	return JobUpdate{Done: true, Records: env.Results}
}
