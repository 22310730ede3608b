package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replylab/replyrank/internal/batch"
	"github.com/replylab/replyrank/internal/dataset"
)

func testBatch() batch.Batch[dataset.Row] {
	return batch.Batch[dataset.Row]{
		Index:        1,
		TotalBatches: 3,
		Rows: []dataset.Row{
			{"tweet_id": "t1", "reply_text": "hello"},
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("RequiresEndpoint", func(t *testing.T) {
		_, err := New("  ")
		assert.ErrorIs(t, err, ErrMissingEndpoint)
	})

	t.Run("TrimsTrailingSlash", func(t *testing.T) {
		c, err := New("https://api.example.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", c.baseURL)
	})
}

func TestSubmitBatch(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got submitRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/jobs", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"jobId":"job-42"}`))
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)

		jobID, err := c.SubmitBatch(context.Background(), testBatch(), FileMeta{Filename: "replies.csv", TotalRows: 120})
		require.NoError(t, err)
		assert.Equal(t, "job-42", jobID)
		assert.Equal(t, "replies.csv", got.Filename)
		assert.Equal(t, 120, got.TotalRows)
		assert.Equal(t, 1, got.BatchIndex)
		assert.Equal(t, 3, got.TotalBatches)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "hello", got.Items[0]["reply_text"])
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c, _ := New(srv.URL)
		_, err := c.SubmitBatch(context.Background(), testBatch(), FileMeta{})
		assert.ErrorIs(t, err, ErrSubmitRejected)
	})

	t.Run("SuccessWithoutJobID", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		c, _ := New(srv.URL)
		_, err := c.SubmitBatch(context.Background(), testBatch(), FileMeta{})
		assert.ErrorIs(t, err, ErrMissingJobID)
	})

	t.Run("SuccessWithGarbageBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		c, _ := New(srv.URL)
		_, err := c.SubmitBatch(context.Background(), testBatch(), FileMeta{})
		assert.ErrorIs(t, err, ErrMissingJobID)
	})
}

func TestFetchJob(t *testing.T) {
	serve := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/jobs/job-1", r.URL.Path)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	}

	t.Run("NotFoundIsPending", func(t *testing.T) {
		srv := serve(http.StatusNotFound, "")
		defer srv.Close()
		c, _ := New(srv.URL)

		update, err := c.FetchJob(context.Background(), "job-1")
		require.NoError(t, err)
		assert.False(t, update.Done)
	})

	t.Run("EmptyBodyIsPending", func(t *testing.T) {
		srv := serve(http.StatusOK, "")
		defer srv.Close()
		c, _ := New(srv.URL)

		update, err := c.FetchJob(context.Background(), "job-1")
		require.NoError(t, err)
		assert.False(t, update.Done)
		assert.Empty(t, update.Records)
	})

	t.Run("DoneWithRecords", func(t *testing.T) {
		srv := serve(http.StatusOK, `{"status":"done","results":[{"id":"r1","score":8}]}`)
		defer srv.Close()
		c, _ := New(srv.URL)

		update, err := c.FetchJob(context.Background(), "job-1")
		require.NoError(t, err)
		assert.True(t, update.Done)
		require.Len(t, update.Records, 1)
		assert.Equal(t, float64(8), float64(update.Records[0].Score))
	})

	t.Run("ServerErrorSurfaced", func(t *testing.T) {
		srv := serve(http.StatusInternalServerError, "boom")
		defer srv.Close()
		c, _ := New(srv.URL)

		_, err := c.FetchJob(context.Background(), "job-1")
		assert.ErrorIs(t, err, ErrJobQueryFailed)
	})

	t.Run("TransportErrorSurfaced", func(t *testing.T) {
		srv := serve(http.StatusOK, "")
		srv.Close() // refuse connections

		c, _ := New(srv.URL)
		_, err := c.FetchJob(context.Background(), "job-1")
		assert.ErrorIs(t, err, ErrJobQueryFailed)
	})
}

func TestDecodeJobEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantDone    bool
		wantRecords int
	}{
		{"Empty", "", false, 0},
		{"Whitespace", "   \n", false, 0},
		{"NotJSON", "<html>oops</html>", false, 0},
		{"Processing", `{"status":"processing"}`, false, 0},
		{"DoneNoResults", `{"status":"done","results":[]}`, false, 0},
		{"DoneMissingResults", `{"status":"done"}`, false, 0},
		{"DoneWithResults", `{"status":"done","results":[{"id":"a","score":1},{"id":"b","score":2}]}`, true, 2},
		{"ArrayWrapped", `[{"status":"done","results":[{"id":"a","score":1}]}]`, true, 1},
		{"ArrayWrappedProcessing", `[{"status":"processing"}]`, false, 0},
		{"EmptyArray", `[]`, false, 0},
		{"UnknownStatus", `{"status":"queued"}`, false, 0},
		{"MalformedRecordInResults", `{"status":"done","results":["bare string"]}`, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			update := decodeJobEnvelope([]byte(tc.body))
			assert.Equal(t, tc.wantDone, update.Done)
			assert.Len(t, update.Records, tc.wantRecords)
		})
	}
}
