package main

import (
	"testing"
	"time"
)

func adminFixture(t *testing.T) (*MatchQueue, *Rewards, *DB) {
	t.Helper()
	db := testDB(t)
	rewards := NewRewards(db, nil, nil)
	q := NewMatchQueue(rewards.HandleMatchResult)

	a, _ := testParticipant("a")
	b, _ := testParticipant("b")
	q.Enqueue(a)
	q.Enqueue(b)
	t.Cleanup(func() { stopAll(q, "a") })
	return q, rewards, db
}

func TestDispatchAdminFlagSetters(t *testing.T) {
	q, rewards, _ := adminFixture(t)

	cases := []AdminCommand{
		{Action: AdminSetUnlimitedElixir, TargetID: "a", Enabled: true},
		{Action: AdminSetInvulnerable, TargetID: "a", Enabled: true},
		{Action: AdminSetFrozen, TargetID: "a", Enabled: true},
		{Action: AdminSetElixirMult, TargetID: "a", Value: 2},
		{Action: AdminSetAutoplay, TargetID: "a", Enabled: true},
	}
	for _, cmd := range cases {
		if _, err := DispatchAdmin(q, rewards, cmd); err != nil {
			t.Errorf("%s: %v", cmd.Action, err)
		}
	}

	m := q.MatchFor("a")
	stats := m.GetLiveStats("a")
	if !stats.Frozen || stats.ElixirMult != 2 {
		t.Errorf("overrides not applied: %+v", stats)
	}
}

func TestDispatchAdminLiveStats(t *testing.T) {
	q, rewards, _ := adminFixture(t)

	payload, err := DispatchAdmin(q, rewards, AdminCommand{Action: AdminLiveStats, TargetID: "a"})
	if err != nil {
		t.Fatalf("live stats: %v", err)
	}
	stats, ok := payload.(LiveStats)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if stats.TowerHP <= 0 {
		t.Error("live stats should report standing towers")
	}
}

func TestDispatchAdminForceEnd(t *testing.T) {
	q, rewards, _ := adminFixture(t)

	if _, err := DispatchAdmin(q, rewards, AdminCommand{Action: AdminForceEnd, TargetID: "a", WinnerID: "a"}); err != nil {
		t.Fatalf("force end: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for !q.MatchFor("a").IsOver() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !q.MatchFor("a").IsOver() {
		t.Error("force end should terminate the match")
	}
}

func TestDispatchAdminForceSpawn(t *testing.T) {
	q, rewards, _ := adminFixture(t)

	if _, err := DispatchAdmin(q, rewards, AdminCommand{Action: AdminForceSpawn, TargetID: "a", CardID: "pekka", X: 9, Y: 20}); err != nil {
		t.Fatalf("force spawn: %v", err)
	}
	stats := q.MatchFor("a").GetLiveStats("a")
	if stats.UnitCount != 1 {
		t.Errorf("force spawn should place the unit, got %d", stats.UnitCount)
	}
}

func TestDispatchAdminUnknownTarget(t *testing.T) {
	q, rewards, _ := adminFixture(t)

	if _, err := DispatchAdmin(q, rewards, AdminCommand{Action: AdminSetFrozen, TargetID: "nobody"}); err == nil {
		t.Error("commands for players without a match must fail")
	}
	if _, err := DispatchAdmin(q, rewards, AdminCommand{Action: "reboot_universe", TargetID: "a"}); err == nil {
		t.Error("unknown actions must fail")
	}
}

func TestDispatchAdminOpenChest(t *testing.T) {
	q, rewards, db := adminFixture(t)
	id, _ := db.CreatePlayer("alice", "h")
	db.AddChest(id, ChestGold)

	payload, err := DispatchAdmin(q, rewards, AdminCommand{Action: AdminOpenChest, TargetID: id})
	if err != nil {
		t.Fatalf("open chest: %v", err)
	}
	opened, ok := payload.(*ChestOpenedMsg)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if opened.Gold != goldChestGold {
		t.Errorf("gold chest pays %d, got %d", goldChestGold, opened.Gold)
	}
}
