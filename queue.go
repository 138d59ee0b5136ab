package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// matchGracePeriod keeps a finished match resolvable by participant ID for a
// short window so late acknowledgements still route.
const matchGracePeriod = 5 * time.Second

// MatchQueue pairs waiting participants into matches and owns the registry of
// active matches, keyed by participant identity (not connection identity) so
// routing survives reconnects.
type MatchQueue struct {
	mu       sync.Mutex
	waiting  []Participant
	matches  map[string]*Match // participantID -> active match
	onResult ResultFunc
}

// NewMatchQueue creates an empty queue. onResult receives every terminal
// match result exactly once per match.
func NewMatchQueue(onResult ResultFunc) *MatchQueue {
	return &MatchQueue{
		matches:  make(map[string]*Match),
		onResult: onResult,
	}
}

// Enqueue appends a participant to the FIFO waiting list, dropping any stale
// prior entry for the same identity, then attempts to pair the two oldest
// entries. Returns false if the participant is already in a live match.
func (q *MatchQueue) Enqueue(p Participant) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if match, ok := q.matches[p.ID]; ok && !match.IsOver() {
		return false
	}

	filtered := q.waiting[:0]
	for _, w := range q.waiting {
		if w.ID != p.ID {
			filtered = append(filtered, w)
		}
	}
	q.waiting = append(filtered, p)
	log.Printf("[queue] %s joined, waiting=%d", p.Name, len(q.waiting))

	q.tryPairLocked()
	return true
}

// tryPairLocked removes the two oldest entries and starts a match if both are
// still reachable. A reachable partner whose opponent vanished goes back to
// the FRONT of the queue; pairing then waits for the next enqueue.
func (q *MatchQueue) tryPairLocked() {
	if len(q.waiting) < 2 {
		return
	}
	p1 := q.waiting[0]
	p2 := q.waiting[1]
	q.waiting = q.waiting[2:]

	ok1 := p1.Conn != nil && p1.Conn.Connected()
	ok2 := p2.Conn != nil && p2.Conn.Connected()
	if !ok1 || !ok2 {
		log.Printf("[queue] pairing aborted, requeueing reachable player")
		if ok2 {
			q.waiting = append([]Participant{p2}, q.waiting...)
		}
		if ok1 {
			q.waiting = append([]Participant{p1}, q.waiting...)
		}
		return
	}

	q.startMatchLocked(p1, p2, false)
}

// CreateFriendly starts a friendly match between two participants directly,
// bypassing the waiting list. Friendly matches produce no rewards.
func (q *MatchQueue) CreateFriendly(p1, p2 Participant) *Match {
	q.mu.Lock()
	defer q.mu.Unlock()

	if m, ok := q.matches[p1.ID]; ok && !m.IsOver() {
		return nil
	}
	if m, ok := q.matches[p2.ID]; ok && !m.IsOver() {
		return nil
	}
	return q.startMatchLocked(p1, p2, true)
}

func (q *MatchQueue) startMatchLocked(p1, p2 Participant, friendly bool) *Match {
	id := uuid.NewString()
	match := NewMatch(id, p1, p2, friendly, q.handleResult)
	q.matches[p1.ID] = match
	q.matches[p2.ID] = match

	log.Printf("[queue] match %s: %s vs %s (friendly=%v)", id, p1.Name, p2.Name, friendly)
	match.Start()
	return match
}

// handleResult forwards the terminal event to the economy collaborator and
// discards the match registration after the grace period.
func (q *MatchQueue) handleResult(res MatchResult) {
	time.AfterFunc(matchGracePeriod, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		for pid, m := range q.matches {
			if m.ID == res.MatchID {
				delete(q.matches, pid)
			}
		}
	})
	if q.onResult != nil {
		q.onResult(res)
	}
}

// MatchFor returns the registered match for a participant, or nil
func (q *MatchQueue) MatchFor(participantID string) *Match {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.matches[participantID]
}

// RouteInput forwards a card placement to the participant's active match
func (q *MatchQueue) RouteInput(participantID, cardID string, x, y float64) bool {
	match := q.MatchFor(participantID)
	if match == nil {
		return false
	}
	return match.SubmitInput(participantID, cardID, x, y)
}

// Disconnect removes any waiting entry for the participant and, when the
// dropped handle is the one recorded for a live match, forfeits that match
// with the opponent as winner.
func (q *MatchQueue) Disconnect(participantID string, conn Broadcaster) {
	q.mu.Lock()
	filtered := q.waiting[:0]
	for _, w := range q.waiting {
		if w.ID != participantID {
			filtered = append(filtered, w)
		}
	}
	q.waiting = filtered
	match := q.matches[participantID]
	q.mu.Unlock()

	if match == nil || match.IsOver() {
		return
	}
	if match.ConnFor(participantID) != conn {
		// Participant reconnected elsewhere; the stale handle doesn't forfeit
		return
	}
	log.Printf("[queue] %s disconnected mid-match, forfeiting", participantID)
	match.Forfeit(participantID)
}

// Leave removes a participant from the waiting list without touching matches
func (q *MatchQueue) Leave(participantID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	filtered := q.waiting[:0]
	for _, w := range q.waiting {
		if w.ID != participantID {
			filtered = append(filtered, w)
		}
	}
	q.waiting = filtered
}

// WaitingCount returns the number of queued participants
func (q *MatchQueue) WaitingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// ActiveMatchCount returns the number of distinct registered matches
func (q *MatchQueue) ActiveMatchCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	seen := make(map[string]bool)
	for _, m := range q.matches {
		seen[m.ID] = true
	}
	return len(seen)
}
