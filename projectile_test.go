package main

import (
	"testing"
)

const tickDt = 1.0 / TickRate

// stepProjectiles advances projectile simulation for the given duration
func stepProjectiles(m *Match, seconds float64) {
	steps := int(seconds / tickDt)
	for i := 0; i < steps; i++ {
		m.advanceProjectiles(tickDt)
	}
}

func TestHomingProjectileImpact(t *testing.T) {
	m := bareMatch()
	musk := addUnit(m, "musketeer", "alice", 9, 10)
	target := addUnit(m, "knight", "bob", 9, 14)

	m.projectiles = append(m.projectiles, NewHomingProjectile(musk, target, musk.Card.Stats))
	stepProjectiles(m, 1.0)

	if len(m.projectiles) != 0 {
		t.Fatal("projectile should be consumed on impact")
	}
	if target.HP != target.MaxHP-musk.Card.Stats.Damage {
		t.Errorf("impact should apply attacker damage, hp=%d", target.HP)
	}
}

func TestHomingProjectileTracksMovingTarget(t *testing.T) {
	m := bareMatch()
	musk := addUnit(m, "musketeer", "alice", 9, 10)
	target := addUnit(m, "knight", "bob", 9, 14)

	p := NewHomingProjectile(musk, target, musk.Card.Stats)
	m.projectiles = append(m.projectiles, p)

	target.X = 12
	m.advanceProjectiles(tickDt)
	if p.TX != 12 {
		t.Error("homing projectile should re-aim at the target's position")
	}
}

func TestHomingProjectileSurvivesLostTarget(t *testing.T) {
	m := bareMatch()
	musk := addUnit(m, "musketeer", "alice", 9, 10)
	target := addUnit(m, "knight", "bob", 9, 14)

	m.projectiles = append(m.projectiles, NewHomingProjectile(musk, target, musk.Card.Stats))
	m.entities = []*Entity{musk} // target vanished

	stepProjectiles(m, 1.0)
	if len(m.projectiles) != 0 {
		t.Error("projectile should fly to the last known point and expire")
	}
}

func TestLogPiercesAndHitsOnce(t *testing.T) {
	m := bareMatch()
	m.elixir["alice"] = 10
	first := addUnit(m, "knight", "bob", 9, 7)
	second := addUnit(m, "knight", "bob", 9, 11)

	if !m.SubmitInput("alice", "log", 9, 5) {
		t.Fatal("log placement should succeed")
	}
	logCard := LookupCard("log")
	stepProjectiles(m, 2.0)

	if first.HP != first.MaxHP-logCard.Stats.Damage {
		t.Errorf("first enemy should be hit exactly once, hp=%d", first.HP)
	}
	if second.HP != second.MaxHP-logCard.Stats.Damage {
		t.Errorf("second enemy should be hit exactly once, hp=%d", second.HP)
	}
	if first.Y <= 7 {
		t.Error("log should knock enemies back along its direction")
	}
	if len(m.projectiles) != 0 {
		t.Error("log should expire at its travel cap")
	}
}

func TestBarrelDeploysPayloadOnImpact(t *testing.T) {
	m := bareMatch()
	m.elixir["alice"] = 10
	bystander := addUnit(m, "knight", "bob", 10, 20)

	if !m.SubmitInput("alice", "goblin_barrel", 9, 20) {
		t.Fatal("barrel placement should succeed")
	}
	stepProjectiles(m, 3.0)

	goblins := 0
	for _, e := range m.entities {
		if e.Card.ID == "goblins" && e.OwnerID == "alice" {
			goblins++
		}
	}
	if goblins != 3 {
		t.Errorf("barrel should deploy 3 goblins on impact, got %d", goblins)
	}
	if bystander.HP != bystander.MaxHP {
		t.Error("barrel impact itself deals no damage")
	}
	if len(m.projectiles) != 0 {
		t.Error("barrel should be consumed on impact")
	}
}

func TestZapDamagesAndStuns(t *testing.T) {
	m := bareMatch()
	m.elixir["alice"] = 10
	victim := addUnit(m, "knight", "bob", 9, 16)

	if !m.SubmitInput("alice", "zap", 9, 16) {
		t.Fatal("zap placement should succeed")
	}
	zap := LookupCard("zap")
	stepProjectiles(m, 2.0)

	if victim.HP != victim.MaxHP-zap.Stats.Damage {
		t.Errorf("zap should damage enemies in its radius, hp=%d", victim.HP)
	}
	if victim.StunTimer <= 0 {
		t.Error("zap should stun enemies in its radius")
	}
}

func TestFireballKnockback(t *testing.T) {
	m := bareMatch()
	m.elixir["alice"] = 10
	victim := addUnit(m, "knight", "bob", 10, 17)

	if !m.SubmitInput("alice", "fireball", 9, 16) {
		t.Fatal("fireball placement should succeed")
	}
	stepProjectiles(m, 2.0)

	if victim.HP != victim.MaxHP-LookupCard("fireball").Stats.Damage {
		t.Errorf("fireball should damage enemies in its radius, hp=%d", victim.HP)
	}
	if victim.X <= 10 || victim.Y <= 17 {
		t.Error("fireball should push enemies away from the impact point")
	}
}

func TestSpellSparesOwnerUnits(t *testing.T) {
	m := bareMatch()
	m.elixir["alice"] = 10
	ally := addUnit(m, "knight", "alice", 9, 16)

	m.SubmitInput("alice", "fireball", 9, 16)
	stepProjectiles(m, 2.0)

	if ally.HP != ally.MaxHP {
		t.Error("spells must not hit the caster's own units")
	}
}

func TestSpellOriginatesFromBackLine(t *testing.T) {
	m := bareMatch()
	m.elixir["alice"] = 10
	m.elixir["bob"] = 10

	m.SubmitInput("alice", "fireball", 9, 20)
	m.SubmitInput("bob", "fireball", 9, 10)
	if len(m.projectiles) != 2 {
		t.Fatal("both spells should be in flight")
	}
	if m.projectiles[0].Y != 0 {
		t.Errorf("bottom player's spell starts at y=0, got %v", m.projectiles[0].Y)
	}
	if m.projectiles[1].Y != ArenaHeight {
		t.Errorf("top player's spell starts at y=%v, got %v", float64(ArenaHeight), m.projectiles[1].Y)
	}
}
