package ecs

const (
	slotBits = 24
	slotMask = 1<<slotBits - 1

	// MaxArchetypeEntities is the number of slots one archetype can address.
	MaxArchetypeEntities = slotMask + 1
)

// EntityId packs the archetype hash (upper 32 bits), the slot generation (8 bits) and
// the slot index (lower 24 bits). The generation is bumped whenever a slot is freed, so
// an id kept past Delete no longer matches the entity that later reuses its slot.
// Ids change when an entity gains or loses a component; hold an EntityRef to follow it.
type EntityId uint64

// NewEntityId creates a generation zero EntityId from an archetype ID and slot index.
// Only the low 24 bits of index are kept.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return newEntityId(archetypeId, index, 0)
}

func newEntityId(archetypeId uint32, slot uint32, generation uint8) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(generation)<<slotBits | uint64(slot&slotMask))
}

// ArchetypeId extracts the archetype ID.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index extracts the slot index.
func (e EntityId) Index() uint32 {
	return uint32(e) & slotMask
}

// Generation extracts the slot generation. It wraps after 256 reuses of one slot.
func (e EntityId) Generation() uint8 {
	return uint8(uint32(e) >> slotBits)
}

// EntityRef is a stable reference to an entity. Id is zero once the entity is deleted.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}
