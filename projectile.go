package main

const (
	projImpactDist   = 0.5  // arrival threshold in tiles
	beamSpeed        = 30.0 // tiles/s
	rangedSpeed      = 12.0
	spellSpeed       = 15.0
	minMoveThreshold = 0.1
)

// Projectile is a live projectile inside one match. Homing projectiles carry
// a TargetID and re-aim every tick; the rest fly to a fixed destination.
type Projectile struct {
	ID           string
	OwnerID      string
	Kind         ProjectileKind
	TargetID     string // "" for point-targeted projectiles
	TX, TY       float64
	X, Y         float64
	Damage       int
	Speed        float64
	SplashRadius float64
	StunDuration float64
	Knockback    float64

	// Piercing (log) bookkeeping
	HitIDs   map[string]bool
	MaxRange float64
	SX, SY   float64 // start position, for the travel-distance cap

	// Barrel payload
	Payload      string
	PayloadCount int
}

// NewHomingProjectile spawns an attack projectile aimed at a target entity
func NewHomingProjectile(src *Entity, target *Entity, stats Stats) *Projectile {
	speed := rangedSpeed
	if stats.Projectile == ProjBeam {
		speed = beamSpeed
	}
	return &Projectile{
		ID:           GenerateID(3),
		OwnerID:      src.OwnerID,
		Kind:         stats.Projectile,
		TargetID:     target.ID,
		TX:           target.X,
		TY:           target.Y,
		X:            src.X,
		Y:            src.Y,
		Damage:       stats.Damage,
		Speed:        speed,
		SplashRadius: stats.SplashRadius,
		StunDuration: stats.StunDuration,
		Knockback:    stats.Knockback,
	}
}

// NewSpellProjectile spawns a point-targeted spell projectile that visually
// originates from the caster's back line.
func NewSpellProjectile(card *Card, ownerID string, x, y, originY float64) *Projectile {
	return &Projectile{
		ID:           GenerateID(3),
		OwnerID:      ownerID,
		Kind:         card.Stats.Projectile,
		TX:           x,
		TY:           y,
		X:            x,
		Y:            originY,
		Damage:       card.Stats.Damage,
		Speed:        spellSpeed,
		SplashRadius: card.Stats.Range,
		StunDuration: card.Stats.StunDuration,
		Knockback:    card.Stats.Knockback,
	}
}

// NewLogProjectile spawns a piercing line projectile from the cast point.
// forward is +1 toward the top half, -1 toward the bottom.
func NewLogProjectile(card *Card, ownerID string, x, y, forward float64) *Projectile {
	splash := card.Stats.SplashRadius
	if splash == 0 {
		splash = 1.0
	}
	kb := card.Stats.Knockback
	if kb == 0 {
		kb = 2.0
	}
	return &Projectile{
		ID:           GenerateID(3),
		OwnerID:      ownerID,
		Kind:         ProjLog,
		TX:           x,
		TY:           y + forward*10,
		X:            x,
		Y:            y,
		SX:           x,
		SY:           y,
		Damage:       card.Stats.Damage,
		Speed:        card.Stats.Speed,
		SplashRadius: splash,
		Knockback:    kb,
		HitIDs:       make(map[string]bool),
		MaxRange:     card.Stats.Range,
	}
}

// NewBarrelProjectile spawns a payload-carrying projectile that deploys its
// contents on impact and deals no direct damage.
func NewBarrelProjectile(card *Card, ownerID string, x, y, originY float64) *Projectile {
	return &Projectile{
		ID:           GenerateID(3),
		OwnerID:      ownerID,
		Kind:         ProjBarrel,
		TX:           x,
		TY:           y,
		X:            x,
		Y:            originY,
		Speed:        card.Stats.Speed,
		Payload:      card.Payload,
		PayloadCount: card.Stats.Count,
	}
}

// ToState converts to the snapshot wire representation
func (p *Projectile) ToState() ProjectileWire {
	return ProjectileWire{
		ID:    p.ID,
		Owner: p.OwnerID,
		Kind:  int(p.Kind),
		X:     round1(p.X),
		Y:     round1(p.Y),
		TX:    round1(p.TX),
		TY:    round1(p.TY),
	}
}
