package feed

import (
	"sort"
	"time"
)

// Merge combines the persisted job set with a freshly fetched candidate set.
//
// Records are matched by identity key. A new key inserts the incoming record
// as-is; a known key takes the incoming record's mutable fields while keeping
// the previous record's id and createdAt, with updatedAt set to the merge
// time. The result is deduplicated (covers duplicates within incoming),
// sorted by publishedAt descending and truncated to capacity, evicting the
// oldest-by-publish-date records. Running the same merge twice changes
// nothing but updatedAt.
func Merge(existing, incoming []Job, now time.Time, capacity int) []Job {
	if capacity <= 0 {
		capacity = MaxJobs
	}

	byKey := make(map[string]Job, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	for _, job := range existing {
		key := job.IdentityKey()
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = job
	}

	for _, job := range incoming {
		key := job.IdentityKey()
		previous, ok := byKey[key]
		if !ok {
			byKey[key] = job
			order = append(order, key)
			continue
		}

		updated := job
		updated.ID = previous.ID
		updated.CreatedAt = previous.CreatedAt
		if updated.CreatedAt.IsZero() {
			updated.CreatedAt = job.CreatedAt
		}
		updated.UpdatedAt = now
		byKey[key] = updated
	}

	merged := make([]Job, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].PublishedAt.Equal(merged[j].PublishedAt) {
			return merged[i].PublishedAt.After(merged[j].PublishedAt)
		}
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})

	if len(merged) > capacity {
		merged = merged[:capacity]
	}

	return merged
}
