package game

// InventorySize is the fixed slot count of a turtle inventory.
const InventorySize = 16

// Item describes one inventory stack.
type Item struct {
	Amount       uint8  `json:"amount"`
	MaxStackSize uint8  `json:"max_stack_size"`
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
}

// Inventory holds the sixteen optional slots of a turtle plus the slot the
// device currently has selected. A nil entry is an empty slot.
type Inventory struct {
	Slots        [InventorySize]*Item `json:"inv"`
	SelectedSlot uint32               `json:"selected_slot"`
}

// SetSlot replaces the contents of one slot. Out-of-range slots are ignored;
// the device firmware is not trusted to stay in bounds.
func (inv *Inventory) SetSlot(slot uint8, contents *Item) {
	if int(slot) >= InventorySize {
		return
	}
	inv.Slots[slot] = contents
}

// Select records the slot the device reports as active.
func (inv *Inventory) Select(slot uint32) {
	if slot >= InventorySize {
		return
	}
	inv.SelectedSlot = slot
}

// Clone deep-copies the inventory so snapshots cannot alias registry state.
func (inv Inventory) Clone() Inventory {
	out := Inventory{SelectedSlot: inv.SelectedSlot}
	for i, item := range inv.Slots {
		if item != nil {
			copied := *item
			out.Slots[i] = &copied
		}
	}
	return out
}
