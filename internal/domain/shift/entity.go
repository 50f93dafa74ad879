package shift

import (
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
)

// SlotMap maps slot index (1..position.MaxSlots) to the id of the open
// work log occupying it. A missing key means the slot is empty. The map
// is a projection of the log collection and can be rebuilt from it at any
// time; where the two disagree, the logs win.
type SlotMap map[int]string

// Clone returns an independent copy.
func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	for slot, id := range m {
		out[slot] = id
	}
	return out
}

// OpenCount returns how many slots hold a session.
func (m SlotMap) OpenCount() int {
	return len(m)
}

// SlotOf returns the slot holding the given log id, or 0.
func (m SlotMap) SlotOf(logID string) int {
	for slot, id := range m {
		if id == logID {
			return slot
		}
	}
	return 0
}

// ValidSlot reports whether the index is inside the global slot range.
func ValidSlot(slot int) bool {
	return slot >= 1 && slot <= position.MaxSlots
}

// SlotAssignment pairs a slot with a proposed machine, produced by the
// auto-assignment pass for machine-bearing multi-slot positions.
type SlotAssignment struct {
	Slot      int     `json:"slot"`
	MachineID *string `json:"machine_id,omitempty"`
}
