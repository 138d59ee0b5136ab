package main

import "testing"

func testRewards(t *testing.T) (*Rewards, *DB) {
	t.Helper()
	db := testDB(t)
	return NewRewards(db, nil, nil), db
}

func TestHandleMatchResultRankedWin(t *testing.T) {
	r, db := testRewards(t)
	winner, _ := db.CreatePlayer("winner", "h")
	loser, _ := db.CreatePlayer("loser", "h")

	r.HandleMatchResult(MatchResult{
		MatchID:      "m1",
		WinnerID:     winner,
		LoserID:      loser,
		Reason:       ReasonTowerDestroyed,
		TrophyChange: winTrophyChange,
	})

	wp, _ := db.GetProfile(winner)
	if wp.Trophies != winTrophyChange || wp.Wins != 1 {
		t.Errorf("winner should gain trophies and a win: %+v", wp)
	}
	if wp.Gold < startingGold+winGoldMin || wp.Gold > startingGold+winGoldMax {
		t.Errorf("win gold out of range: %d", wp.Gold)
	}
	if n, _ := db.ChestCount(winner); n != 1 {
		t.Errorf("winner should receive a chest, got %d", n)
	}
	lp, _ := db.GetProfile(loser)
	if lp.Losses != 1 {
		t.Errorf("loser should record a loss: %+v", lp)
	}
}

func TestHandleMatchResultDrawAndFriendly(t *testing.T) {
	r, db := testRewards(t)
	a, _ := db.CreatePlayer("a", "h")
	b, _ := db.CreatePlayer("b", "h")

	r.HandleMatchResult(MatchResult{MatchID: "m1", WinnerID: "", Reason: ReasonTimeUp})
	r.HandleMatchResult(MatchResult{MatchID: "m2", WinnerID: a, LoserID: b, Friendly: true})

	ap, _ := db.GetProfile(a)
	if ap.Trophies != 0 || ap.Wins != 0 || ap.Gold != startingGold {
		t.Errorf("draws and friendlies must not pay out: %+v", ap)
	}
	if n, _ := db.ChestCount(a); n != 0 {
		t.Errorf("no chest for friendlies, got %d", n)
	}
}

func TestChestSlotsCapped(t *testing.T) {
	r, db := testRewards(t)
	winner, _ := db.CreatePlayer("winner", "h")
	loser, _ := db.CreatePlayer("loser", "h")

	for i := 0; i < maxChestSlots+2; i++ {
		r.HandleMatchResult(MatchResult{
			MatchID:      "m",
			WinnerID:     winner,
			LoserID:      loser,
			TrophyChange: winTrophyChange,
		})
	}
	if n, _ := db.ChestCount(winner); n != maxChestSlots {
		t.Errorf("chest slots cap at %d, got %d", maxChestSlots, n)
	}
}

func TestOpenChestPaysOut(t *testing.T) {
	r, db := testRewards(t)
	id, _ := db.CreatePlayer("alice", "h")
	chestID, _ := db.AddChest(id, ChestSilver)

	opened, err := r.OpenChest(id, chestID)
	if err != nil {
		t.Fatalf("open chest: %v", err)
	}
	if opened.Gold != silverChestGold {
		t.Errorf("silver chest pays %d gold, got %d", silverChestGold, opened.Gold)
	}
	if len(opened.Cards) != silverChestCards {
		t.Errorf("silver chest grants %d cards, got %d", silverChestCards, len(opened.Cards))
	}
	for _, cardID := range opened.Cards {
		card := LookupCard(cardID)
		if card == nil || card.Type == TypeBuilding {
			t.Errorf("chest granted invalid card %q", cardID)
		}
	}

	profile, _ := db.GetProfile(id)
	if profile.Gold != startingGold+silverChestGold {
		t.Errorf("gold not credited: %d", profile.Gold)
	}
	if n, _ := db.ChestCount(id); n != 0 {
		t.Error("opened chest should free its slot")
	}
}

func TestOpenChestNotOwned(t *testing.T) {
	r, db := testRewards(t)
	alice, _ := db.CreatePlayer("alice", "h")
	bob, _ := db.CreatePlayer("bob", "h")
	chestID, _ := db.AddChest(alice, ChestGold)

	if _, err := r.OpenChest(bob, chestID); err == nil {
		t.Error("players can only open their own chests")
	}
	if n, _ := db.ChestCount(alice); n != 1 {
		t.Error("foreign open attempt must not consume the chest")
	}
}

func TestForceOpenChestOldestFirst(t *testing.T) {
	r, db := testRewards(t)
	id, _ := db.CreatePlayer("alice", "h")
	db.AddChest(id, ChestSilver)

	opened, err := r.ForceOpenChest(id, "")
	if err != nil {
		t.Fatalf("force open: %v", err)
	}
	if opened.Gold != silverChestGold {
		t.Errorf("expected the silver chest to open, gold=%d", opened.Gold)
	}

	if _, err := r.ForceOpenChest(id, ""); err == nil {
		t.Error("no chests left to open")
	}
}
