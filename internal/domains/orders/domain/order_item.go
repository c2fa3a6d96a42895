package domain

// OrderItem is a value object owned by an Order. Items are created once at
// order-creation time and never mutated afterwards.
type OrderItem struct {
	ID             string
	OrderID        string
	SKUID          string
	Quantity       int32
	LensSelection  *LensSelection
	FrameSelection *FrameSelection
}

// LensSelection captures the lens configuration chosen for an item.
type LensSelection struct {
	Design   string
	Material string
	Coatings []string
	Tint     string
	Notes    string
}

// FrameSelection captures the frame chosen for an item.
type FrameSelection struct {
	FrameID string
	Color   string
	Size    string
}

// Validate enforces invariants on the item.
func (i *OrderItem) Validate() error {
	if i.SKUID == "" {
		return ErrEmptySKU
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Clone returns a deep copy of the item.
func (i *OrderItem) Clone() *OrderItem {
	if i == nil {
		return nil
	}
	clone := *i
	if i.LensSelection != nil {
		lens := *i.LensSelection
		lens.Coatings = append([]string(nil), i.LensSelection.Coatings...)
		clone.LensSelection = &lens
	}
	if i.FrameSelection != nil {
		frame := *i.FrameSelection
		clone.FrameSelection = &frame
	}
	return &clone
}
