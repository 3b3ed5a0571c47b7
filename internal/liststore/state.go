package liststore

// Notices explain why the visible data may be stale or missing.
const (
	NoticeOfflineCached            = "offline_cached"
	NoticeOfflineNoData            = "offline_no_data"
	NoticeOfflineSearchUnavailable = "offline_search_unavailable"
	NoticeOfflinePageMissing       = "offline_page_missing"
)

// State is the output contract of a store, identical for every entity.
type State[T any] struct {
	Items          []T            `json:"items"`
	Loading        bool           `json:"loading"`
	InitialLoading bool           `json:"initial_loading"`
	Refreshing     bool           `json:"refreshing"`
	SearchQuery    string         `json:"search_query"`
	SearchMode     bool           `json:"search_mode"`
	Total          int            `json:"total"`
	IsOfflineMode  bool           `json:"is_offline_mode"`
	CountByState   map[string]int `json:"count_by_state,omitempty"`
	CurrentPage    int            `json:"current_page"`
	TotalPages     int            `json:"total_pages"`
	PageSize       int            `json:"page_size"`
	Notice         string         `json:"notice,omitempty"`
}

func totalPages(total, size int) int {
	if size <= 0 {
		return 1
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

func pageSlice[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func countBy[T any](items []T, classify func(T) string, keys []string) map[string]int {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[k] = 0
	}
	for _, item := range items {
		counts[classify(item)]++
	}
	return counts
}

func cloneCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
