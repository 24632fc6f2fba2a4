package domain

import "github.com/mmcdole/warden/internal/pagination"

// ProgressFunc reports collection progress to the presentation layer.
// Called once per fetched page: (250, 1), (500, 2), ...
type ProgressFunc func(loaded, page int)

// FetchSummary describes what happened during a collection fetch.
type FetchSummary struct {
	Count        int  // items collected
	Pages        int  // pages fetched
	Complete     bool // false when the page budget ran out or a page failed
	StoppedEarly bool // true when a cutoff ended the walk
	FromCache    bool // true when served without a network fetch
}

// Summarize reduces a fetch result to its summary
func Summarize[T any](res pagination.Result[T]) FetchSummary {
	return FetchSummary{
		Count:        res.TotalCount,
		Pages:        res.PagesFetched,
		Complete:     res.IsComplete,
		StoppedEarly: res.StoppedEarly,
	}
}
