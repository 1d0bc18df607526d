package evolution

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/traits"
)

// Agent is a read-only snapshot of one population member.
type Agent struct {
	ID        uint32
	X, Y      float64
	Energy    float64
	Alive     bool
	Score     int
	DeathStep int
	Elite     bool
	Traits    traits.Traits
}

// Population holds the agents of one generation as ECS entities.
// Controllers live beside the ECS, keyed by agent ID.
type Population struct {
	world *ecs.World

	mapper *ecs.Map4[
		components.Position,
		components.Energy,
		components.Forager,
		traits.Traits,
	]
	filter *ecs.Filter4[
		components.Position,
		components.Energy,
		components.Forager,
		traits.Traits,
	]

	// Individual component mappers for lookups
	posMap     *ecs.Map1[components.Position]
	energyMap  *ecs.Map1[components.Energy]
	foragerMap *ecs.Map1[components.Forager]
	traitsMap  *ecs.Map1[traits.Traits]

	// Brain storage (per agent by ID)
	brains map[uint32]*neural.Controller
	byID   map[uint32]ecs.Entity

	// entities is every agent in spawn order; alive is the subset still alive,
	// in the same order.
	entities []ecs.Entity
	alive    []ecs.Entity
}

func newPopulation(capacity int) *Population {
	world := ecs.NewWorld()
	return &Population{
		world: world,
		mapper: ecs.NewMap4[
			components.Position,
			components.Energy,
			components.Forager,
			traits.Traits,
		](world),
		filter: ecs.NewFilter4[
			components.Position,
			components.Energy,
			components.Forager,
			traits.Traits,
		](world),
		posMap:     ecs.NewMap1[components.Position](world),
		energyMap:  ecs.NewMap1[components.Energy](world),
		foragerMap: ecs.NewMap1[components.Forager](world),
		traitsMap:  ecs.NewMap1[traits.Traits](world),
		brains:     make(map[uint32]*neural.Controller, capacity),
		byID:       make(map[uint32]ecs.Entity, capacity),
		entities:   make([]ecs.Entity, 0, capacity),
		alive:      make([]ecs.Entity, 0, capacity),
	}
}

// spawn creates a live agent that takes ownership of brain.
func (p *Population) spawn(id uint32, x, y float64, energy components.Energy, tr traits.Traits, brain *neural.Controller, elite bool) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	forager := components.Forager{ID: id, DeathStep: -1, Elite: elite}

	entity := p.mapper.NewEntity(&pos, &energy, &forager, &tr)
	p.brains[id] = brain
	p.byID[id] = entity
	p.entities = append(p.entities, entity)
	if energy.Alive {
		p.alive = append(p.alive, entity)
	}
	return entity
}

// partitionAlive drops agents that died during the last step from the alive list.
func (p *Population) partitionAlive() {
	kept := p.alive[:0]
	for _, e := range p.alive {
		if p.energyMap.Get(e).Alive {
			kept = append(kept, e)
		}
	}
	p.alive = kept
}

// Len returns the number of agents, dead ones included.
func (p *Population) Len() int {
	return len(p.entities)
}

// AliveCount returns the number of live agents.
func (p *Population) AliveCount() int {
	return len(p.alive)
}

// Controller returns the network of agent id, or nil if there is none.
func (p *Population) Controller(id uint32) *neural.Controller {
	return p.brains[id]
}

// Agent returns a snapshot of agent id.
func (p *Population) Agent(id uint32) (Agent, bool) {
	e, ok := p.byID[id]
	if !ok || !p.world.Alive(e) {
		return Agent{}, false
	}
	return p.snapshot(e), true
}

// Agents returns snapshots of every agent in spawn order.
func (p *Population) Agents() []Agent {
	out := make([]Agent, len(p.entities))
	for i, e := range p.entities {
		out[i] = p.snapshot(e)
	}
	return out
}

func (p *Population) snapshot(e ecs.Entity) Agent {
	pos := p.posMap.Get(e)
	energy := p.energyMap.Get(e)
	forager := p.foragerMap.Get(e)
	tr := p.traitsMap.Get(e)
	return Agent{
		ID:        forager.ID,
		X:         pos.X,
		Y:         pos.Y,
		Energy:    energy.Value,
		Alive:     energy.Alive,
		Score:     forager.Score,
		DeathStep: forager.DeathStep,
		Elite:     forager.Elite,
		Traits:    *tr,
	}
}
