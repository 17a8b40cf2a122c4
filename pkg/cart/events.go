package cart

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventRemoved  EventKind = "removed"
	EventCleared  EventKind = "cleared"
	EventRestored EventKind = "restored"
)

// Event describes an applied mutation. Quantity is the resulting quantity of
// the affected line (zero for removals, clears and restores).
type Event struct {
	Kind      EventKind
	ProductID string
	Quantity  int
}

// Subscribe registers fn to be called synchronously after every applied
// mutation. The returned function cancels the subscription.
func (c *Cart) Subscribe(fn func(Event)) (cancel func()) {
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) notify(e Event) {
	// Observers may cancel themselves while being notified.
	obs := append([]observer(nil), c.observers...)
	for _, o := range obs {
		o.fn(e)
	}
}
