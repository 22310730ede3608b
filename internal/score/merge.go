package score

import "sort"

// ResultSet is an ordered set of result records, unique by Identity and
// sorted by descending score. Ties keep arrival order.
type ResultSet []ResultRecord

// Summary holds aggregate statistics over a full result set. It is always
// recomputed from scratch after a merge; merges can reorder or dedup away
// previously counted records, so incremental patching would drift.
type Summary struct {
	TotalProcessed int     `json:"totalProcessed"`
	AverageScore   float64 `json:"averageScore"`
	HighestScore   float64 `json:"highestScore"`
	LowestScore    float64 `json:"lowestScore"`
}

// Merge folds incoming records into the existing set: concatenate, dedup by
// identity (first occurrence wins, so repeated polls of a completed job are
// no-ops), re-sort by descending score with stable ties, reassign rankings,
// and recompute the summary. Empty incoming input returns existing and its
// summary unchanged.
func Merge(existing ResultSet, incoming []ResultRecord) (ResultSet, Summary) {
	if len(incoming) == 0 {
		return existing, Summarize(existing)
	}

	merged := make(ResultSet, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, r := range existing {
		key := r.Identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range incoming {
		key := r.Identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	for i := range merged {
		merged[i].Ranking = i + 1
	}

	return merged, Summarize(merged)
}

// Summarize recomputes aggregate statistics over the full set.
func Summarize(set ResultSet) Summary {
	if len(set) == 0 {
		return Summary{}
	}

	sum := Summary{
		TotalProcessed: len(set),
		HighestScore:   float64(set[0].Score),
		LowestScore:    float64(set[0].Score),
	}

	var total float64
	for _, r := range set {
		s := float64(r.Score)
		total += s
		if s > sum.HighestScore {
			sum.HighestScore = s
		}
		if s < sum.LowestScore {
			sum.LowestScore = s
		}
	}
	sum.AverageScore = total / float64(len(set))
	return sum
}
