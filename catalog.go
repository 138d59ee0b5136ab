package main

// Arena dimensions in tiles. Player 1 defends the bottom edge (y=0),
// player 2 the top edge (y=ArenaHeight).
const (
	ArenaWidth  = 18.0
	ArenaHeight = 32.0
	BridgeY     = ArenaHeight / 2
)

// CardType distinguishes deployable categories
type CardType int

const (
	TypeTroop CardType = iota
	TypeBuilding
	TypeSpell
)

// TargetPreference restricts what a unit will attack
type TargetPreference int

const (
	TargetAny TargetPreference = iota
	TargetBuildings
)

// Transport is the movement layer of a unit
type Transport int

const (
	TransportGround Transport = iota
	TransportAir
)

// ProjectileKind selects attack/spell resolution behavior
type ProjectileKind int

const (
	ProjStandard ProjectileKind = iota
	ProjArrow
	ProjFireball
	ProjBeam
	ProjZap
	ProjLog    // piercing line projectile
	ProjBarrel // spawns payload entities on impact
)

// Stats is the immutable combat stat bundle of a card
type Stats struct {
	HP           int
	Damage       int
	HitSpeed     float64 // seconds between attacks
	Range        float64 // tiles
	Speed        float64 // tiles per second
	DeployTime   float64 // seconds before the entity activates
	Preference   TargetPreference
	Transport    Transport
	Count        int     // entities spawned per placement
	Radius       float64 // collision radius
	SplashRadius float64 // 0 = single target
	Projectile   ProjectileKind
	MaxTargets   int     // simultaneous targets, 0/1 = single
	StunDuration float64 // seconds, 0 = no stun
	Knockback    float64 // tiles of displacement on hit
	SpawnDamage  int     // instant area damage on deployment
}

// Card is one immutable catalog entry, shared by reference across matches
type Card struct {
	ID          string
	Name        string
	Cost        float64
	Type        CardType
	Stats       Stats
	Payload     string // card spawned on barrel impact
	GlobalSpawn bool   // placeable on either half
}

func troopStats(s Stats) Stats {
	if s.HitSpeed == 0 {
		s.HitSpeed = 1
	}
	if s.Range == 0 {
		s.Range = 1
	}
	if s.Count == 0 {
		s.Count = 1
	}
	if s.Radius == 0 {
		s.Radius = 0.5
	}
	if s.DeployTime == 0 {
		s.DeployTime = 1
	}
	return s
}

func spellStats(s Stats) Stats {
	if s.Count == 0 {
		s.Count = 1
	}
	if s.Radius == 0 {
		s.Radius = 0.5
	}
	return s
}

// Cards is the full catalog, keyed by card ID. Read-only after init.
var Cards = map[string]*Card{
	"knight":        {ID: "knight", Name: "Knight", Cost: 3, Type: TypeTroop, Stats: troopStats(Stats{HP: 1000, Damage: 120, HitSpeed: 1.2, Speed: 3, Radius: 0.6})},
	"archers":       {ID: "archers", Name: "Archers", Cost: 3, Type: TypeTroop, Stats: troopStats(Stats{HP: 180, Damage: 70, HitSpeed: 1.2, Range: 5, Count: 2, Speed: 3, Radius: 0.4, Projectile: ProjArrow})},
	"goblins":       {ID: "goblins", Name: "Goblins", Cost: 2, Type: TypeTroop, Stats: troopStats(Stats{HP: 120, Damage: 80, HitSpeed: 1.1, Count: 3, Speed: 5, Radius: 0.4})},
	"giant":         {ID: "giant", Name: "Giant", Cost: 5, Type: TypeTroop, Stats: troopStats(Stats{HP: 2400, Damage: 160, HitSpeed: 1.5, Speed: 1.5, Preference: TargetBuildings, Radius: 1.2})},
	"minions":       {ID: "minions", Name: "Minions", Cost: 3, Type: TypeTroop, Stats: troopStats(Stats{HP: 130, Damage: 60, HitSpeed: 1.0, Count: 3, Speed: 4.5, Transport: TransportAir, Radius: 0.5})},
	"fireball":      {ID: "fireball", Name: "Fireball", Cost: 4, Type: TypeSpell, Stats: spellStats(Stats{Damage: 350, Range: 2.5, Projectile: ProjFireball, Knockback: 1.5})},
	"musketeer":     {ID: "musketeer", Name: "Musketeer", Cost: 4, Type: TypeTroop, Stats: troopStats(Stats{HP: 450, Damage: 130, HitSpeed: 1.1, Range: 6, Speed: 3, Radius: 0.5})},
	"spear_goblins": {ID: "spear_goblins", Name: "Spear Goblins", Cost: 2, Type: TypeTroop, Stats: troopStats(Stats{HP: 80, Damage: 45, HitSpeed: 1.3, Range: 5, Count: 3, Speed: 5, Radius: 0.4, Projectile: ProjArrow})},
	"goblin_barrel": {ID: "goblin_barrel", Name: "Goblin Barrel", Cost: 3, Type: TypeSpell, Payload: "goblins", GlobalSpawn: true, Stats: spellStats(Stats{Count: 3, Speed: 10, Projectile: ProjBarrel})},
	"mini_pekka":    {ID: "mini_pekka", Name: "Mini P.E.K.K.A", Cost: 4, Type: TypeTroop, Stats: troopStats(Stats{HP: 800, Damage: 400, HitSpeed: 1.8, Speed: 4, Radius: 0.6})},
	"valkyrie":      {ID: "valkyrie", Name: "Valkyrie", Cost: 4, Type: TypeTroop, Stats: troopStats(Stats{HP: 1200, Damage: 150, HitSpeed: 1.5, Speed: 3, Radius: 0.6, SplashRadius: 2.0})},
	"skarmy":        {ID: "skarmy", Name: "Skeleton Army", Cost: 3, Type: TypeTroop, Stats: troopStats(Stats{HP: 50, Damage: 50, HitSpeed: 1, Count: 12, Speed: 4, Radius: 0.25})},
	"zap":           {ID: "zap", Name: "Zap", Cost: 2, Type: TypeSpell, Stats: spellStats(Stats{Damage: 120, Range: 2.5, Projectile: ProjZap, StunDuration: 0.5})},
	"wizard":        {ID: "wizard", Name: "Wizard", Cost: 5, Type: TypeTroop, Stats: troopStats(Stats{HP: 450, Damage: 160, HitSpeed: 1.4, Range: 5, Speed: 3, Radius: 0.5, SplashRadius: 1.5, Projectile: ProjFireball})},
	"baby_dragon":   {ID: "baby_dragon", Name: "Baby Dragon", Cost: 4, Type: TypeTroop, Stats: troopStats(Stats{HP: 800, Damage: 100, HitSpeed: 1.6, Range: 3.5, Speed: 3.5, Transport: TransportAir, Radius: 0.8, SplashRadius: 1.5, Projectile: ProjFireball})},
	"skeletons":     {ID: "skeletons", Name: "Skeletons", Cost: 1, Type: TypeTroop, Stats: troopStats(Stats{HP: 50, Damage: 50, HitSpeed: 1.0, Count: 3, Speed: 4.5, Radius: 0.25})},
	"hog_rider":     {ID: "hog_rider", Name: "Hog Rider", Cost: 4, Type: TypeTroop, Stats: troopStats(Stats{HP: 1000, Damage: 180, HitSpeed: 1.6, Speed: 5.5, Preference: TargetBuildings, Radius: 0.8})},
	"balloon":       {ID: "balloon", Name: "Balloon", Cost: 5, Type: TypeTroop, Stats: troopStats(Stats{HP: 1000, Damage: 600, HitSpeed: 3.0, Speed: 3, Transport: TransportAir, Preference: TargetBuildings, Radius: 1.2, SplashRadius: 2.0})},
	"prince":        {ID: "prince", Name: "Prince", Cost: 5, Type: TypeTroop, Stats: troopStats(Stats{HP: 1100, Damage: 250, HitSpeed: 1.5, Speed: 4, Radius: 0.7})},
	"log":           {ID: "log", Name: "The Log", Cost: 2, Type: TypeSpell, Stats: spellStats(Stats{Damage: 200, Range: 10, Projectile: ProjLog, Knockback: 2.0, Speed: 8, SplashRadius: 1.0})},
	"pekka":         {ID: "pekka", Name: "P.E.K.K.A", Cost: 7, Type: TypeTroop, Stats: troopStats(Stats{HP: 2400, Damage: 600, HitSpeed: 1.8, Speed: 1.5, Radius: 1.2})},
	"minion_horde":  {ID: "minion_horde", Name: "Minion Horde", Cost: 5, Type: TypeTroop, Stats: troopStats(Stats{HP: 130, Damage: 60, HitSpeed: 1.0, Count: 6, Speed: 4.5, Transport: TransportAir, Radius: 0.5})},
	"mega_minion":   {ID: "mega_minion", Name: "Mega Minion", Cost: 3, Type: TypeTroop, Stats: troopStats(Stats{HP: 500, Damage: 200, HitSpeed: 1.6, Speed: 3, Transport: TransportAir, Radius: 0.7})},

	"electro_wizard": {ID: "electro_wizard", Name: "Electro Wizard", Cost: 4, Type: TypeTroop, Stats: troopStats(Stats{HP: 500, Damage: 120, HitSpeed: 1.8, Range: 5, Speed: 3.5, Radius: 0.6, Projectile: ProjBeam, MaxTargets: 2, StunDuration: 0.5, SpawnDamage: 120, SplashRadius: 1.5})},

	"tower_princess": {ID: "tower_princess", Name: "Princess Tower", Cost: 0, Type: TypeBuilding, Stats: troopStats(Stats{HP: 1600, Damage: 70, HitSpeed: 0.8, Range: 7.5, Radius: 1.5, Projectile: ProjArrow})},
	"tower_king":     {ID: "tower_king", Name: "King Tower", Cost: 0, Type: TypeBuilding, Stats: troopStats(Stats{HP: 2800, Damage: 80, HitSpeed: 1, Range: 7, Radius: 2, Projectile: ProjFireball})},
}

// KingTowerID is the card whose destruction ends the match
const KingTowerID = "tower_king"

// DefaultDeck is used when a player has no persisted deck
var DefaultDeck = []string{"knight", "archers", "giant", "musketeer", "fireball", "mini_pekka", "baby_dragon", "prince"}

// LookupCard returns the card definition, or nil if unknown.
// Unknown IDs downstream are always treated as a no-op, never a fault.
func LookupCard(id string) *Card {
	return Cards[id]
}

// IsGlobalSpawn reports whether the card may be placed on either arena half
func (c *Card) IsGlobalSpawn() bool {
	return c.GlobalSpawn || c.Type == TypeSpell
}
