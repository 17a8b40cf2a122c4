package cart

// Snapshot is the serialisable form of a cart.
type Snapshot struct {
	Lines []Line `json:"lines"`
}

// Snapshot returns a copy of the current state.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Lines: c.Lines()}
}

// Restore replaces the cart contents with s. Lines with a non-positive
// quantity, no remaining stock or a repeated product id are dropped, and
// quantities are clamped to the stored stock.
func (c *Cart) Restore(s Snapshot) {
	seen := make(map[string]struct{}, len(s.Lines))
	lines := make([]Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Quantity <= 0 || l.Product.Stock <= 0 {
			continue
		}
		if _, dup := seen[l.Product.ID]; dup {
			continue
		}
		seen[l.Product.ID] = struct{}{}
		l.Quantity = min(l.Quantity, l.Product.Stock)
		lines = append(lines, l)
	}
	c.lines = lines
	c.notify(Event{Kind: EventRestored})
}
