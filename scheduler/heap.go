package scheduler

import "moderation-bot/model"

// actionHeap is a min-heap of pending actions keyed by due time, ties broken
// by creation time so replayed batches keep their stored order. It backs the
// single wake-up worker; one heap serves all guilds.
type actionHeap []*model.ScheduledAction

func (h actionHeap) Len() int { return len(h) }

func (h actionHeap) Less(i, j int) bool {
	if h[i].DueAt.Equal(h[j].DueAt) {
		return h[i].CreatedAt.Before(h[j].CreatedAt)
	}
	return h[i].DueAt.Before(h[j].DueAt)
}

func (h actionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *actionHeap) Push(x any) {
	*h = append(*h, x.(*model.ScheduledAction))
}

func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	a := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return a
}

// indexOf returns the heap position of the action with the given id, or -1.
func (h actionHeap) indexOf(id string) int {
	for i, a := range h {
		if a.ID == id {
			return i
		}
	}
	return -1
}
