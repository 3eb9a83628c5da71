package presence

// BackpressureAction is what the controller does with a subscriber
// whose transport stopped draining.
type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	PruneSubscriber
)

type Policy interface {
	OnBackpressure(roomID int, conn *Conn) BackpressureAction
}

// PrunePolicy drops the slow subscriber so one stuck transport never
// stalls delivery to the rest of the room.
type PrunePolicy struct{}

func (PrunePolicy) OnBackpressure(roomID int, conn *Conn) BackpressureAction {
	return PruneSubscriber
}
