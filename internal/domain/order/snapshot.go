package order

import "time"

// ---------------------------------------------------------------------------
// StatusSnapshot
// ---------------------------------------------------------------------------

// StatusSnapshot is a point-in-time count of canonical orders per status.
// Snapshots are immutable once taken; the polling scheduler replaces its
// previous/current pair only at the end of a fully aggregated cycle.
type StatusSnapshot struct {
	// TakenAt is when the snapshot was taken
	TakenAt time.Time
	// Counts holds the number of orders per canonical status
	Counts map[CanonicalStatus]int
}

// TakeSnapshot counts the given orders per canonical status
func TakeSnapshot(orders []Order, takenAt time.Time) *StatusSnapshot {
	counts := make(map[CanonicalStatus]int, len(AllStatuses))
	for i := range orders {
		counts[orders[i].Status]++
	}
	return &StatusSnapshot{
		TakenAt: takenAt,
		Counts:  counts,
	}
}

// SnapshotFromCounts builds a snapshot from precomputed per-status counts
func SnapshotFromCounts(counts map[CanonicalStatus]int, takenAt time.Time) *StatusSnapshot {
	copied := make(map[CanonicalStatus]int, len(counts))
	for status, n := range counts {
		copied[status] = n
	}
	return &StatusSnapshot{TakenAt: takenAt, Counts: copied}
}

// Count returns the count for a status (zero when absent)
func (s *StatusSnapshot) Count(status CanonicalStatus) int {
	if s == nil {
		return 0
	}
	return s.Counts[status]
}

// Total returns the total number of orders across all statuses
func (s *StatusSnapshot) Total() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Clone returns an independent copy safe to hand to external readers
func (s *StatusSnapshot) Clone() *StatusSnapshot {
	if s == nil {
		return nil
	}
	return SnapshotFromCounts(s.Counts, s.TakenAt)
}

// ---------------------------------------------------------------------------
// ChangeEvent & Diff
// ---------------------------------------------------------------------------

// ChangeEvent is a count-level transition for one status between two
// consecutive snapshots. Events are transient: consumed by the dispatcher
// and discarded, never persisted.
type ChangeEvent struct {
	// Status is the canonical status whose count changed
	Status CanonicalStatus
	// Delta is the signed count difference (current - previous)
	Delta int
	// PreviousCount is the count in the previous snapshot
	PreviousCount int
	// CurrentCount is the count in the current snapshot
	CurrentCount int
}

// Diff computes the change events between two snapshots. Statuses whose
// delta is zero are omitted. When previous is nil (the seeding cycle) no
// events are emitted regardless of current's contents. Events are ordered
// by AllStatuses so output is deterministic; statuses outside the known
// vocabulary are never produced because the mapper is total.
func Diff(previous, current *StatusSnapshot) []ChangeEvent {
	if previous == nil || current == nil {
		return nil
	}

	var events []ChangeEvent
	for _, status := range AllStatuses {
		prev := previous.Count(status)
		curr := current.Count(status)
		if prev == curr {
			continue
		}
		events = append(events, ChangeEvent{
			Status:        status,
			Delta:         curr - prev,
			PreviousCount: prev,
			CurrentCount:  curr,
		})
	}
	return events
}
