package main

import (
	"fmt"
	"log"
	"math/rand"
)

// Chest types and their opening rewards
const (
	ChestSilver = "SILVER"
	ChestGold   = "GOLD"

	maxChestSlots   = 4
	goldChestChance = 0.3

	silverChestGold  = 50
	silverChestCards = 5
	goldChestGold    = 200
	goldChestCards   = 20

	winGoldMin = 15
	winGoldMax = 30
)

// ChestInfo is the wire form of a chest slot
type ChestInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Rewards is the economy collaborator. It consumes match results through the
// single result callback and owns chest granting and opening.
type Rewards struct {
	db        *DB
	analytics *Analytics
	notify    func(playerID string) // pushes a profile refresh to online players
}

// NewRewards creates the economy handler. notify may be nil.
func NewRewards(db *DB, analytics *Analytics, notify func(playerID string)) *Rewards {
	return &Rewards{db: db, analytics: analytics, notify: notify}
}

// HandleMatchResult applies gold, trophies and a chest grant for a ranked win.
// Draws, forced no-winner endings and friendly matches yield nothing.
func (r *Rewards) HandleMatchResult(res MatchResult) {
	if r.analytics != nil {
		r.analytics.Track(EvtMatchEnd, res.WinnerID, res.MatchID, res.Reason)
	}
	if res.Friendly || res.WinnerID == "" {
		return
	}

	gold := winGoldMin + rand.Intn(winGoldMax-winGoldMin+1)
	if err := r.db.ApplyMatchOutcome(res.WinnerID, res.LoserID, gold, res.TrophyChange); err != nil {
		log.Printf("[rewards] match outcome %s: %v", res.MatchID, err)
		return
	}
	r.grantChest(res.WinnerID)

	if r.notify != nil {
		r.notify(res.WinnerID)
		r.notify(res.LoserID)
	}
}

// grantChest adds a chest if a slot is free: 70% silver, 30% gold
func (r *Rewards) grantChest(playerID string) {
	count, err := r.db.ChestCount(playerID)
	if err != nil || count >= maxChestSlots {
		return
	}
	chestType := ChestSilver
	if rand.Float64() < goldChestChance {
		chestType = ChestGold
	}
	if _, err := r.db.AddChest(playerID, chestType); err != nil {
		log.Printf("[rewards] grant chest %s: %v", playerID, err)
	}
}

// OpenChest consumes a chest slot, credits gold and random cards, and returns
// the rewards.
func (r *Rewards) OpenChest(playerID, chestID string) (*ChestOpenedMsg, error) {
	chest, err := r.db.GetChest(playerID, chestID)
	if err != nil {
		return nil, err
	}
	if chest == nil {
		return nil, fmt.Errorf("chest not found")
	}
	if err := r.db.RemoveChest(chest.ID); err != nil {
		return nil, err
	}

	gold, cardCount := silverChestGold, silverChestCards
	if chest.Type == ChestGold {
		gold, cardCount = goldChestGold, goldChestCards
	}
	if err := r.db.AddGold(playerID, gold); err != nil {
		return nil, err
	}

	pool := make([]string, 0, len(Cards))
	for id, card := range Cards {
		if card.Type != TypeBuilding {
			pool = append(pool, id)
		}
	}
	granted := make([]string, 0, cardCount)
	for i := 0; i < cardCount; i++ {
		cardID := pool[rand.Intn(len(pool))]
		if err := r.db.IncrementCard(playerID, cardID, 1); err != nil {
			log.Printf("[rewards] card grant %s: %v", playerID, err)
			continue
		}
		granted = append(granted, cardID)
	}

	if r.notify != nil {
		r.notify(playerID)
	}
	return &ChestOpenedMsg{Gold: gold, Cards: granted}, nil
}

// ForceOpenChest is the admin one-shot: opens the given chest, or the oldest
// one when no ID is specified.
func (r *Rewards) ForceOpenChest(playerID, chestID string) (*ChestOpenedMsg, error) {
	if chestID == "" {
		chests, err := r.db.ListChests(playerID)
		if err != nil {
			return nil, err
		}
		if len(chests) == 0 {
			return nil, fmt.Errorf("no chests to open")
		}
		chestID = chests[0].ID
	}
	return r.OpenChest(playerID, chestID)
}
