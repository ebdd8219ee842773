package model

import "time"

// ItemID uniquely identifies a companion item
type ItemID string

// ItemType is the kind of reusable object a companion represents
type ItemType string

const (
	ItemTumbler  ItemType = "Tumbler"
	ItemLunchbox ItemType = "Lunchbox"
	ItemToteBag  ItemType = "Tote Bag"
	ItemCutlery  ItemType = "Cutlery Set"
	ItemStraw    ItemType = "Stainless Straw"
)

// ItemTypes lists every selectable companion type
var ItemTypes = []ItemType{ItemTumbler, ItemLunchbox, ItemToteBag, ItemCutlery, ItemStraw}

// IsValid reports whether t is one of ItemTypes
func (t ItemType) IsValid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Starting progression values for a new companion
const (
	StartingLevel       = 1
	StartingNextLevelXP = 100
)

// Item is a virtual companion owned by exactly one account.
// Descriptive fields never change after creation; CurrentXP < NextLevelXP always holds.
type Item struct {
	ID          ItemID
	OwnerID     AccountID
	Type        ItemType
	Name        string
	Personality string

	Level         int
	CurrentXP     int
	NextLevelXP   int
	LastCheckInAt *time.Time // nil until the first check-in
	StreakDays    int        // consecutive calendar days with a check-in

	CreatedAt time.Time
}

// NewItem creates a level 1 companion with no check-in history
func NewItem(id ItemID, owner AccountID, itemType ItemType, name, personality string, now time.Time) *Item {
	return &Item{
		ID:          id,
		OwnerID:     owner,
		Type:        itemType,
		Name:        name,
		Personality: personality,
		Level:       StartingLevel,
		CurrentXP:   0,
		NextLevelXP: StartingNextLevelXP,
		CreatedAt:   now,
	}
}

// Clone returns a deep copy of the item
func (i *Item) Clone() *Item {
	c := *i
	if i.LastCheckInAt != nil {
		t := *i.LastCheckInAt
		c.LastCheckInAt = &t
	}
	return &c
}
