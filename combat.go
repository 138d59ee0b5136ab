package main

import (
	"math"
	"sort"
)

const (
	engagementBuffer = 0.5 // tiles added to every range check
	meleeRangeMax    = 1.5 // ranges at or below this resolve instantly
)

// advanceEntities runs the entity state machine for one tick. Entities whose
// owner has the frozen override are skipped entirely. Iterates in reverse so
// removals don't disturb the deterministic slice order.
func (m *Match) advanceEntities(dt float64) {
	for i := len(m.entities) - 1; i >= 0; i-- {
		e := m.entities[i]

		if ov := m.overrides[e.OwnerID]; ov != nil && ov.Frozen {
			continue
		}

		if e.State == StateDying {
			e.DeathTimer -= dt
			if e.DeathTimer <= 0 {
				m.entities = append(m.entities[:i], m.entities[i+1:]...)
			}
			continue
		}

		if e.StunTimer > 0 {
			e.StunTimer -= dt
			continue
		}

		m.updateEntity(e, dt)

		if e.HP <= 0 {
			if ov := m.overrides[e.OwnerID]; ov != nil && ov.Invulnerable {
				e.HP = e.MaxHP
				continue
			}
			e.State = StateDying
			e.DeathTimer = deathDecayTime
			e.TargetID = ""

			if e.IsKing() {
				m.resolveKingDeath(e)
				if m.over {
					// Pre-empt the rest of the tick; the snapshot broadcast
					// still happens in update() and carries the DYING state.
					return
				}
			}
		}
	}
}

// resolveKingDeath ends the match when a king tower falls. If both kings are
// at zero within the same damage sweep the match is an explicit draw.
func (m *Match) resolveKingDeath(fallen *Entity) {
	opponent := m.opponentOf(fallen.OwnerID)
	for _, e := range m.entities {
		if e.OwnerID == opponent && e.IsKing() && e.HP <= 0 {
			m.endLocked("", ReasonTowerDestroyed)
			return
		}
	}
	m.endLocked(opponent, ReasonTowerDestroyed)
}

// updateEntity advances one live entity: deployment countdown, target
// acquisition, attacking in range, or movement.
func (m *Match) updateEntity(e *Entity, dt float64) {
	if e.State == StateDeploying {
		e.DeployTimer -= dt
		if e.DeployTimer <= 0 {
			e.State = StateIdle
		}
		return
	}

	stats := e.Card.Stats

	// Validate the primary target; cleared targets re-acquire immediately
	if e.TargetID != "" {
		t := m.entityByID(e.TargetID)
		if t == nil || !t.Targetable() {
			e.TargetID = ""
		}
	}
	if e.TargetID == "" {
		if targets := m.findTargets(e, stats); len(targets) > 0 {
			e.TargetID = targets[0].ID
		}
	}

	if e.TargetID != "" {
		target := m.entityByID(e.TargetID)
		if target == nil {
			return
		}
		if m.inRange(e, target) {
			e.State = StateAttack
			e.AttackTimer += dt
			if e.AttackTimer >= stats.HitSpeed {
				e.AttackTimer = 0
				// Re-resolve the full target set at fire time so multi-target
				// and splash attacks use the latest positions
				for _, t := range m.findTargets(e, stats) {
					m.performAttack(e, t)
				}
			}
		} else if e.Card.Type != TypeBuilding && stats.Speed > 0 {
			e.State = StateMove
			m.moveEntity(e, target.X, target.Y, stats.Speed, dt)
		} else {
			e.State = StateIdle
		}
		return
	}

	// No target: towers hold position, units push toward the enemy king
	if e.Card.Type == TypeBuilding || stats.Speed <= 0 {
		e.State = StateIdle
		return
	}
	e.State = StateMove

	isP1 := e.OwnerID == m.p1
	crossed := e.Y >= BridgeY
	if !isP1 {
		crossed = e.Y <= BridgeY
	}
	if !crossed {
		// Head for the bridge on the current lateral half
		bridgeX := 3.5
		if e.X >= ArenaWidth/2 {
			bridgeX = ArenaWidth - 3.5
		}
		m.moveEntity(e, bridgeX, BridgeY, stats.Speed, dt)
		return
	}
	kingY := 2.5
	if isP1 {
		kingY = ArenaHeight - 2.5
	}
	m.moveEntity(e, ArenaWidth/2, kingY, stats.Speed, dt)
}

// moveEntity integrates position toward a point, capping the step at the
// remaining distance, and derives facing from the horizontal movement sign.
func (m *Match) moveEntity(e *Entity, tx, ty, speed, dt float64) {
	dx := tx - e.X
	dy := ty - e.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist <= minMoveThreshold {
		return
	}
	step := math.Min(dist, speed*dt)
	e.X += (dx / dist) * step
	e.Y += (dy / dist) * step
	e.FacingRight = dx > 0
}

// entityByID returns the live entity with the given ID, or nil
func (m *Match) entityByID(id string) *Entity {
	for _, e := range m.entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// findTargets ranks live, non-dying opposing entities by ascending squared
// distance (stable) and keeps up to the attacker's simultaneous-target count.
func (m *Match) findTargets(e *Entity, stats Stats) []*Entity {
	var candidates []*Entity
	for _, other := range m.entities {
		if other.OwnerID == e.OwnerID || !other.Targetable() {
			continue
		}
		if stats.Preference == TargetBuildings && other.Card.Type != TypeBuilding {
			continue
		}
		candidates = append(candidates, other)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := DistanceSq(e.X, e.Y, candidates[i].X, candidates[i].Y)
		dj := DistanceSq(e.X, e.Y, candidates[j].X, candidates[j].Y)
		return di < dj
	})

	max := stats.MaxTargets
	if max < 1 {
		max = 1
	}
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}

// inRange tests attacker range plus the engagement buffer plus the target's
// collision radius against squared distance.
func (m *Match) inRange(e, target *Entity) bool {
	reach := e.Card.Stats.Range + engagementBuffer + target.Card.Stats.Radius
	return DistanceSq(e.X, e.Y, target.X, target.Y) <= reach*reach
}

// performAttack resolves a single attack at fire time: ranged/beam attacks
// spawn a homing projectile, melee applies damage instantly (splash hits
// everything in radius of the attacker, no projectile).
func (m *Match) performAttack(src, target *Entity) {
	stats := src.Card.Stats

	if stats.Range > meleeRangeMax || stats.Projectile == ProjBeam {
		m.projectiles = append(m.projectiles, NewHomingProjectile(src, target, stats))
		return
	}

	if stats.SplashRadius > 0 {
		r2 := stats.SplashRadius * stats.SplashRadius
		for _, e := range m.entities {
			if e.OwnerID == src.OwnerID || e.State == StateDying {
				continue
			}
			if DistanceSq(e.X, e.Y, src.X, src.Y) <= r2 {
				e.HP -= stats.Damage
			}
		}
		m.effects = append(m.effects, EffectWire{Kind: "splash", Owner: src.OwnerID, X: round1(src.X), Y: round1(src.Y), Scale: stats.SplashRadius})
		return
	}

	target.HP -= stats.Damage
}

// applySpawnDamage deals the on-spawn area burst of cards like the electro
// wizard, centered on the just-deployed entity.
func (m *Match) applySpawnDamage(spawned *Entity, card *Card) {
	if card.Stats.SpawnDamage <= 0 {
		return
	}
	radius := card.Stats.SplashRadius
	if radius <= 0 {
		radius = 2
	}
	r2 := radius * radius
	for _, e := range m.entities {
		if e.OwnerID == spawned.OwnerID || e.HP <= 0 || e.State == StateDying {
			continue
		}
		if DistanceSq(e.X, e.Y, spawned.X, spawned.Y) <= r2 {
			e.HP -= card.Stats.SpawnDamage
			if card.Stats.StunDuration > 0 {
				e.StunTimer = card.Stats.StunDuration
			}
		}
	}
	m.effects = append(m.effects, EffectWire{Kind: "zap", Owner: spawned.OwnerID, X: round1(spawned.X), Y: round1(spawned.Y), Scale: radius})
}

// advanceProjectiles moves every projectile one tick and resolves impacts.
// Iterates in reverse so removals don't disturb ordering.
func (m *Match) advanceProjectiles(dt float64) {
	for i := len(m.projectiles) - 1; i >= 0; i-- {
		p := m.projectiles[i]
		if p.Kind == ProjLog {
			if m.advanceLog(p, dt) {
				m.projectiles = append(m.projectiles[:i], m.projectiles[i+1:]...)
			}
			continue
		}

		// Homing projectiles re-aim while the target lives; a lost target
		// degrades to the last known point, never a fault.
		if p.TargetID != "" {
			if t := m.entityByID(p.TargetID); t != nil && t.Targetable() {
				p.TX, p.TY = t.X, t.Y
			}
		}

		dx := p.TX - p.X
		dy := p.TY - p.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist < projImpactDist {
			m.resolveImpact(p)
			m.projectiles = append(m.projectiles[:i], m.projectiles[i+1:]...)
			continue
		}
		step := p.Speed * dt
		if step > dist {
			step = dist
		}
		p.X += (dx / dist) * step
		p.Y += (dy / dist) * step
	}
}

// advanceLog moves a piercing projectile along its fixed direction, damaging
// each opposing entity at most once. Returns true when it should be removed.
func (m *Match) advanceLog(p *Projectile, dt float64) bool {
	dx := p.TX - p.X
	dy := p.TY - p.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < minMoveThreshold {
		return true
	}
	dirX := dx / dist
	dirY := dy / dist
	step := p.Speed * dt
	p.X += dirX * step
	p.Y += dirY * step

	r2 := p.SplashRadius * p.SplashRadius
	for _, e := range m.entities {
		if e.OwnerID == p.OwnerID || e.HP <= 0 || e.State == StateDying || p.HitIDs[e.ID] {
			continue
		}
		if DistanceSq(e.X, e.Y, p.X, p.Y) < r2 {
			e.HP -= p.Damage
			p.HitIDs[e.ID] = true
			if p.Knockback > 0 {
				e.X += dirX * p.Knockback
				e.Y += dirY * p.Knockback
				e.clampToArena()
			}
		}
	}

	return Distance(p.X, p.Y, p.SX, p.SY) >= p.MaxRange
}

// resolveImpact applies a non-piercing projectile's arrival: barrel payload
// deployment, splash damage with stun/knockback, or single-target damage.
func (m *Match) resolveImpact(p *Projectile) {
	if p.Kind == ProjBarrel {
		for _, off := range spawnOffsets(p.PayloadCount) {
			e := NewEntity(p.Payload, p.OwnerID, p.TX+off.x, p.TY+off.y)
			if e == nil {
				continue
			}
			e.clampToArena()
			m.entities = append(m.entities, e)
		}
		m.effects = append(m.effects, EffectWire{Kind: "spawn", Owner: p.OwnerID, X: round1(p.TX), Y: round1(p.TY), Scale: 1})
		return
	}

	if p.SplashRadius > 0 {
		r2 := p.SplashRadius * p.SplashRadius
		for _, e := range m.entities {
			if e.OwnerID == p.OwnerID || e.State == StateDying {
				continue
			}
			if DistanceSq(e.X, e.Y, p.TX, p.TY) <= r2 {
				e.HP -= p.Damage
				if p.StunDuration > 0 {
					e.StunTimer = p.StunDuration
				}
				if p.Knockback > 0 {
					pushX := e.X - p.TX
					pushY := e.Y - p.TY
					pushLen := math.Sqrt(pushX*pushX + pushY*pushY)
					if pushLen == 0 {
						pushLen = 1
					}
					e.X += (pushX / pushLen) * p.Knockback
					e.Y += (pushY / pushLen) * p.Knockback
					e.clampToArena()
				}
			}
		}
		m.effects = append(m.effects, EffectWire{Kind: "splash", Owner: p.OwnerID, X: round1(p.TX), Y: round1(p.TY), Scale: p.SplashRadius})
		return
	}

	if p.TargetID != "" {
		if t := m.entityByID(p.TargetID); t != nil && t.Targetable() {
			t.HP -= p.Damage
			if p.StunDuration > 0 {
				t.StunTimer = p.StunDuration
			}
		}
	}
}
