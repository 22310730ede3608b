package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/replylab/replyrank/internal/score"
)

// exportHeader is the ordered field projection for result export.
var exportHeader = []string{ //nolint:gochecknoglobals // Fixed export column order.
	"identity",
	"tweetId",
	"replyText",
	"originalTweetText",
	"score",
	"ranking",
	"jobId",
	"url",
}

// ExportCSV writes the ordered field projection of set to w. Records with
// no tweet ID get a generated placeholder tweet_<index>. Quoting and
// quote-doubling follow CSV escaping rules.
func ExportCSV(w io.Writer, set score.ResultSet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for i, r := range set {
		tweetID := r.TweetID
		if tweetID == "" {
			tweetID = fmt.Sprintf("tweet_%d", i)
		}

		row := []string{
			r.Identity(),
			tweetID,
			r.ReplyText,
			r.OriginalTweetText,
			strconv.FormatFloat(float64(r.Score), 'f', -1, 64),
			strconv.Itoa(r.Ranking),
			r.JobID,
			r.URL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing export row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}
