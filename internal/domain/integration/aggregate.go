package integration

// Merge concatenates the successful window results in window order and
// removes duplicate records by order ID. The first occurrence wins; later
// duplicates are dropped silently. Failed results are skipped; they were
// already logged by the fetcher and must not block the remaining windows.
// The second return value is the number of dropped duplicates, useful as
// an observability metric.
func Merge(results []FetchResult) ([]RawOrderRecord, int) {
	var total int
	for i := range results {
		if results[i].Ok() {
			total += len(results[i].Records)
		}
	}

	merged := make([]RawOrderRecord, 0, total)
	seen := make(map[string]struct{}, total)
	dropped := 0

	for i := range results {
		if !results[i].Ok() {
			continue
		}
		for _, record := range results[i].Records {
			if _, dup := seen[record.OrderID]; dup {
				dropped++
				continue
			}
			seen[record.OrderID] = struct{}{}
			merged = append(merged, record)
		}
	}
	return merged, dropped
}
