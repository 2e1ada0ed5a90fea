package m68k

func init() {
	type moveSize struct {
		bits uint16
		size Size
	}
	sizes := []moveSize{
		{0x1000, Byte},
		{0x3000, Word},
		{0x2000, Long},
	}

	for _, s := range sizes {
		srcMask := eaMaskAll
		if s.size == Byte {
			srcMask &^= eaMaskAddressRegister
		}

		// destination field (reg in bits 11-9, mode in bits 8-6) is
		// expanded here; the source field goes through validEA
		for mode := uint16(0); mode <= 7; mode++ {
			for reg := uint16(0); reg <= 7; reg++ {
				if mode == 1 && s.size == Byte {
					continue // no MOVEA.B
				}
				if mode == 7 && reg > 1 {
					continue
				}
				match := s.bits | reg<<9 | mode<<6
				registerInstruction(moveDecode, match, 0xffc0, srcMask)
			}
		}
	}

	registerInstruction(moveq, 0x7000, 0xf100, 0)
}

// moveDecode builds the recipe for MOVE and MOVEA. Source extension
// words are fetched and the source read before the destination's
// extension words come out of the pipeline, matching the order the bus
// sees them in.
func moveDecode(c *cpu) error {
	opcode := c.regs.ir

	var size Size
	switch (opcode >> 12) & 0x3 {
	case 1:
		size = Byte
	case 3:
		size = Word
	default:
		size = Long
	}

	dstSpec := eaSpecFor((opcode>>6)&7, (opcode>>9)&7)

	c.ctx.size = size
	c.recipeBegin()
	c.scheduleEA(sideSrc, c.srcSpec(), true)
	c.recipePush(opReadEA, sideSrc)

	if dstSpec.kind == eaAddressRegister {
		// MOVEA: no flags, word sources sign-extend
		c.scheduleEA(sideDst, dstSpec, false)
		c.recipePush(opWriteEA, sideDst)
		c.recipeCommit()
		return nil
	}

	c.ctx.run = moveRun
	c.recipePush(opExecute, 0)
	c.scheduleEA(sideDst, dstSpec, false)
	c.recipePush(opWriteEA, sideDst)
	if size == Long && dstSpec.isMemory() {
		// second Execute widens the interim flags once both halves
		// of the long have hit memory
		c.recipePush(opExecute, 0)
	}
	c.recipeCommit()
	return nil
}

// moveRun evaluates the condition codes. A long store to memory leaves
// the flags half-evaluated between its two word transfers: N and Z
// reflect only the low word until the second Execute widens them.
func moveRun(c *cpu) error {
	ctx := &c.ctx
	if ctx.size == Long && ctx.dst.spec.isMemory() && ctx.stage == 0 {
		ctx.stage = 1
		c.setLogicFlags(ctx.data&0xffff, Word)
		return nil
	}
	c.setLogicFlags(ctx.data, ctx.size)
	return nil
}

func moveq(c *cpu) error {
	c.ctx.run = moveqRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func moveqRun(c *cpu) error {
	opcode := c.regs.ir
	value := uint32(int32(int8(opcode)))
	c.regs.writeD(x(opcode), value, Long)
	c.setLogicFlags(value, Long)
	return nil
}
