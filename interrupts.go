package m68k

import "fmt"

const autoVectorBase = 24

type (
	interruptRequest struct {
		vector     uint8
		autovector bool
	}

	// InterruptController latches edge-style interrupt requests, one
	// slot per level, until the core samples and services them at an
	// instruction boundary.
	InterruptController struct {
		requests [8]*interruptRequest
		maxLevel uint8
	}
)

func NewInterruptController() *InterruptController {
	return &InterruptController{}
}

// Request latches an interrupt at the given level. A nil vector selects
// autovectoring; level 0 is ignored. A second request at the same level
// before service replaces the first.
func (ic *InterruptController) Request(level uint8, vector *uint8) error {
	if level > 7 {
		return fmt.Errorf("invalid interrupt level %d", level)
	}
	if level == 0 {
		return nil
	}

	if level > ic.maxLevel {
		ic.maxLevel = level
	}

	if vector == nil {
		ic.requests[level] = &interruptRequest{autovector: true}
		return nil
	}

	ic.requests[level] = &interruptRequest{vector: *vector}
	return nil
}

// Pending consumes the highest-priority serviceable request. Level 7 is
// non-maskable and is taken even with the interrupt mask at 7.
func (ic *InterruptController) Pending(sr uint16) (uint8, uint32, bool) {
	interruptMask := uint8((sr & srInterruptMask) >> 8)
	if ic.maxLevel <= interruptMask && ic.maxLevel < 7 {
		return 0, 0, false
	}

	for level := uint8(7); level > 0; level-- {
		req := ic.requests[level]
		if req == nil {
			continue
		}
		if level <= interruptMask && level < 7 {
			continue
		}

		ic.requests[level] = nil

		ic.maxLevel = 0
		for l := uint8(7); l > 0; l-- {
			if ic.requests[l] != nil {
				ic.maxLevel = l
				break
			}
		}

		if req.autovector {
			return level, uint32(autoVectorBase + level), true
		}

		return level, uint32(req.vector), true
	}

	return 0, 0, false
}

// pendingInterrupt samples both interrupt sources at an instruction
// boundary: latched controller requests first, then the level-sensitive
// IPL line, which always autovectors.
func (c *cpu) pendingInterrupt() (uint8, uint32, bool) {
	if level, vector, ok := c.interrupts.Pending(c.regs.sr); ok {
		return level, vector, true
	}

	mask := uint8((c.regs.sr & srInterruptMask) >> 8)
	if c.ipl > 0 && (c.ipl > mask || c.ipl == 7) {
		return c.ipl, uint32(autoVectorBase) + uint32(c.ipl), true
	}
	return 0, 0, false
}
