package main

// EntityState is the lifecycle state of a deployed entity
type EntityState int

const (
	StateDeploying EntityState = iota
	StateIdle
	StateMove
	StateAttack
	StateDying
)

func (s EntityState) String() string {
	switch s {
	case StateDeploying:
		return "DEPLOYING"
	case StateIdle:
		return "IDLE"
	case StateMove:
		return "MOVE"
	case StateAttack:
		return "ATTACK"
	case StateDying:
		return "DYING"
	}
	return "UNKNOWN"
}

const deathDecayTime = 1.0 // seconds an entity lingers in DYING

// Entity is a deployed unit, building or tower inside one match
type Entity struct {
	ID          string
	Card        *Card
	OwnerID     string
	X, Y        float64
	HP          int
	MaxHP       int
	State       EntityState
	TargetID    string  // primary target, "" = none
	AttackTimer float64 // cooldown accumulator, fires at HitSpeed
	DeployTimer float64
	DeathTimer  float64
	StunTimer   float64
	FacingRight bool
}

// NewEntity creates an entity in DEPLOYING state at the given position.
// Returns nil for unknown cards (silently ignored downstream).
func NewEntity(cardID, ownerID string, x, y float64) *Entity {
	card := LookupCard(cardID)
	if card == nil {
		return nil
	}
	return &Entity{
		ID:          GenerateID(4),
		Card:        card,
		OwnerID:     ownerID,
		X:           x,
		Y:           y,
		HP:          card.Stats.HP,
		MaxHP:       card.Stats.HP,
		State:       StateDeploying,
		DeployTimer: card.Stats.DeployTime,
		FacingRight: true,
	}
}

// IsKing reports whether destroying this entity ends the match
func (e *Entity) IsKing() bool {
	return e.Card.ID == KingTowerID
}

// Targetable reports whether the entity may be acquired as a target
func (e *Entity) Targetable() bool {
	return e.State != StateDying
}

// clampToArena keeps a knocked-back entity inside the arena bounds
func (e *Entity) clampToArena() {
	e.X = Clamp(e.X, 0, ArenaWidth)
	e.Y = Clamp(e.Y, 0, ArenaHeight)
}

// ToState converts to the snapshot wire representation
func (e *Entity) ToState() EntityWire {
	hp := e.HP
	if hp < 0 {
		hp = 0
	}
	return EntityWire{
		ID:          e.ID,
		Card:        e.Card.ID,
		Owner:       e.OwnerID,
		X:           round1(e.X),
		Y:           round1(e.Y),
		HP:          hp,
		MaxHP:       e.MaxHP,
		State:       e.State.String(),
		FacingRight: e.FacingRight,
	}
}
