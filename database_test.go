package main

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreatePlayerAndProfile(t *testing.T) {
	db := testDB(t)
	id, err := db.CreatePlayer("alice", "hash")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	player, err := db.GetPlayerByUsername("alice")
	if err != nil || player == nil {
		t.Fatalf("get player: %v", err)
	}
	if player.ID != id || player.IsGuest {
		t.Errorf("unexpected player row: %+v", player)
	}

	profile, err := db.GetProfile(id)
	if err != nil || profile == nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Gold != startingGold || profile.Gems != startingGems {
		t.Errorf("starter balances wrong: gold=%d gems=%d", profile.Gold, profile.Gems)
	}
	if len(profile.Deck) != len(DefaultDeck) {
		t.Errorf("starter deck should be the default deck, got %v", profile.Deck)
	}

	exists, _ := db.UsernameExists("alice")
	if !exists {
		t.Error("username should be taken")
	}
}

func TestCreateGuest(t *testing.T) {
	db := testDB(t)
	id, err := db.CreateGuest("Guest_abcd")
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	player, err := db.GetPlayerByID(id)
	if err != nil || player == nil {
		t.Fatalf("get guest: %v", err)
	}
	if !player.IsGuest {
		t.Error("guest flag should be set")
	}
	if profile, _ := db.GetProfile(id); profile == nil {
		t.Error("guests get a starter profile too")
	}
}

func TestGetMissingRowsReturnNil(t *testing.T) {
	db := testDB(t)
	if p, err := db.GetPlayerByUsername("ghost"); err != nil || p != nil {
		t.Errorf("missing player should be (nil, nil), got (%v, %v)", p, err)
	}
	if p, err := db.GetProfile("nope"); err != nil || p != nil {
		t.Errorf("missing profile should be (nil, nil), got (%v, %v)", p, err)
	}
}

func TestUpdateDeck(t *testing.T) {
	db := testDB(t)
	id, _ := db.CreatePlayer("alice", "hash")

	deck := []string{"pekka", "zap", "log", "hog_rider", "musketeer", "valkyrie", "fireball", "skeletons"}
	if err := db.UpdateDeck(id, deck); err != nil {
		t.Fatalf("update deck: %v", err)
	}
	profile, _ := db.GetProfile(id)
	if len(profile.Deck) != 8 || profile.Deck[0] != "pekka" {
		t.Errorf("deck not persisted, got %v", profile.Deck)
	}
}

func TestApplyMatchOutcome(t *testing.T) {
	db := testDB(t)
	winner, _ := db.CreatePlayer("winner", "h")
	loser, _ := db.CreatePlayer("loser", "h")

	if err := db.ApplyMatchOutcome(winner, loser, 20, winTrophyChange); err != nil {
		t.Fatalf("apply outcome: %v", err)
	}

	wp, _ := db.GetProfile(winner)
	if wp.Gold != startingGold+20 || wp.Trophies != winTrophyChange || wp.Wins != 1 {
		t.Errorf("winner profile wrong: %+v", wp)
	}
	lp, _ := db.GetProfile(loser)
	if lp.Trophies != 0 || lp.Losses != 1 {
		t.Errorf("loser trophies floor at zero: %+v", lp)
	}
}

func TestChestLifecycle(t *testing.T) {
	db := testDB(t)
	id, _ := db.CreatePlayer("alice", "h")

	chestID, err := db.AddChest(id, ChestSilver)
	if err != nil {
		t.Fatalf("add chest: %v", err)
	}
	if n, _ := db.ChestCount(id); n != 1 {
		t.Errorf("expected 1 chest, got %d", n)
	}

	chest, err := db.GetChest(id, chestID)
	if err != nil || chest == nil || chest.Type != ChestSilver {
		t.Fatalf("get chest: %v %+v", err, chest)
	}

	if err := db.RemoveChest(chestID); err != nil {
		t.Fatalf("remove chest: %v", err)
	}
	if n, _ := db.ChestCount(id); n != 0 {
		t.Errorf("chest should be consumed, got %d", n)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	db := testDB(t)
	low, _ := db.CreatePlayer("low", "h")
	high, _ := db.CreatePlayer("high", "h")
	mid, _ := db.CreatePlayer("mid", "h")

	db.ApplyMatchOutcome(high, low, 0, 90)
	db.ApplyMatchOutcome(mid, low, 0, 60)

	entries, err := db.GetLeaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Username != "high" || entries[1].Username != "mid" {
		t.Errorf("leaderboard should sort by trophies descending: %+v", entries)
	}
}

func TestSettings(t *testing.T) {
	db := testDB(t)
	if got := db.GetSetting("missing"); got != "" {
		t.Errorf("missing setting should be empty, got %q", got)
	}
	if err := db.SetSetting("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.SetSetting("k", "v2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := db.GetSetting("k"); got != "v2" {
		t.Errorf("expected v2, got %q", got)
	}
}
