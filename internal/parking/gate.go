package parking

import "context"

// EntryAllocator and ExitSettler are the two halves of the lot API the
// gates forward into. The instrumented lot satisfies both.
type EntryAllocator interface {
	Park(ctx context.Context, vehicle Vehicle) (Ticket, error)
}

type ExitSettler interface {
	Exit(ctx context.Context, ticketID int64) (Receipt, error)
}

// EntranceGate is a stateless pass-through to the allocator. Any number
// of gates may forward concurrently; serialization happens in the lot.
type EntranceGate struct {
	lot EntryAllocator
}

func NewEntranceGate(lot EntryAllocator) *EntranceGate {
	return &EntranceGate{lot: lot}
}

func (g *EntranceGate) Enter(ctx context.Context, vehicle Vehicle) (Ticket, error) {
	return g.lot.Park(ctx, vehicle)
}

// ExitGate forwards exit requests to the allocator.
type ExitGate struct {
	lot ExitSettler
}

func NewExitGate(lot ExitSettler) *ExitGate {
	return &ExitGate{lot: lot}
}

func (g *ExitGate) Exit(ctx context.Context, ticketID int64) (Receipt, error) {
	return g.lot.Exit(ctx, ticketID)
}
