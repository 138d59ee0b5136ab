package main

import (
	"log"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtMatchStart = "match_start"
	EvtMatchEnd   = "match_end"
	EvtQueueJoin  = "queue_join"
	EvtCardPlayed = "card_played"
	EvtChestOpen  = "chest_open"
	EvtLogin      = "login"
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PlayerID  string
	MatchID   string
	Data      string
	Timestamp time.Time
}

// Analytics persists events with a batched background writer so the tick
// loops never block on the database.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, playerID, matchID, data string) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PlayerID:  playerID,
		MatchID:   matchID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full — drop the event rather than blocking a match loop
	}
}

// Close drains pending events and stops the writer
func (a *Analytics) Close() {
	close(a.stop)
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()
	for {
		select {
		case evt := <-a.events:
			if err := a.db.InsertEvent(evt); err != nil {
				log.Printf("[analytics] insert %s: %v", evt.Type, err)
			}
		case <-a.stop:
			// Drain whatever is left before shutting down
			for {
				select {
				case evt := <-a.events:
					if err := a.db.InsertEvent(evt); err != nil {
						log.Printf("[analytics] insert %s: %v", evt.Type, err)
					}
				default:
					return
				}
			}
		}
	}
}
