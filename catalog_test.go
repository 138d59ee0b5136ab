package main

import "testing"

func TestCatalogStatDefaults(t *testing.T) {
	for id, card := range Cards {
		if card.ID != id {
			t.Errorf("%s: ID field mismatch %q", id, card.ID)
		}
		if card.Type == TypeSpell {
			continue
		}
		s := card.Stats
		if s.HP <= 0 {
			t.Errorf("%s: non-spell needs positive HP", id)
		}
		if s.HitSpeed <= 0 {
			t.Errorf("%s: hit speed must default to a positive value", id)
		}
		if s.Count < 1 {
			t.Errorf("%s: spawn count must default to 1", id)
		}
		if s.Radius <= 0 {
			t.Errorf("%s: collision radius must be positive", id)
		}
	}
}

func TestDefaultDeckIsValid(t *testing.T) {
	if len(DefaultDeck) != 8 {
		t.Fatalf("default deck should hold 8 cards, got %d", len(DefaultDeck))
	}
	for _, id := range DefaultDeck {
		card := LookupCard(id)
		if card == nil {
			t.Errorf("default deck references unknown card %q", id)
			continue
		}
		if card.Type == TypeBuilding {
			t.Errorf("default deck must not contain towers, found %q", id)
		}
	}
}

func TestLookupUnknownCard(t *testing.T) {
	if LookupCard("not_a_card") != nil {
		t.Error("unknown card IDs resolve to nil")
	}
}

func TestGlobalSpawnRules(t *testing.T) {
	cases := []struct {
		id     string
		global bool
	}{
		{"fireball", true},
		{"zap", true},
		{"log", true},
		{"goblin_barrel", true},
		{"knight", false},
		{"giant", false},
	}
	for _, tc := range cases {
		if got := LookupCard(tc.id).IsGlobalSpawn(); got != tc.global {
			t.Errorf("%s: IsGlobalSpawn=%v, want %v", tc.id, got, tc.global)
		}
	}
}

func TestTowerCards(t *testing.T) {
	king := LookupCard(KingTowerID)
	if king == nil || king.Type != TypeBuilding {
		t.Fatal("king tower must be a building card")
	}
	princess := LookupCard("tower_princess")
	if princess == nil || princess.Type != TypeBuilding {
		t.Fatal("princess tower must be a building card")
	}
	if king.Stats.HP <= princess.Stats.HP {
		t.Error("king tower should outlast a princess tower")
	}
	if princess.Stats.Damage <= 0 || princess.Stats.Range <= 0 {
		t.Error("towers fight back")
	}
}
