package system

import "time"

// Runner drives registered systems through the tick phases in order.
// Systems within one phase run in registration order.
type Runner struct {
	byPhase [phaseCount][]System
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Register(s System) {
	p := int(s.Phase())
	r.byPhase[p] = append(r.byPhase[p], s)
}

// Tick runs one full simulation step across every phase.
func (r *Runner) Tick(dt time.Duration) {
	for p := 0; p < phaseCount; p++ {
		for _, s := range r.byPhase[p] {
			s.Update(dt)
		}
	}
}

// TickPhase runs only the systems of one phase. The map viewer uses it to
// redraw between simulation ticks without advancing game state.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	for _, s := range r.byPhase[int(phase)] {
		s.Update(dt)
	}
}
