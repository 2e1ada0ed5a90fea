package m68k

func init() {
	storeMask := eaMaskIndirect | eaMaskPreDecrement | eaMaskDisplacement |
		eaMaskIndex | eaMaskAbsoluteShort | eaMaskAbsoluteLong
	loadMask := eaMaskIndirect | eaMaskPostIncrement | eaMaskDisplacement |
		eaMaskIndex | eaMaskAbsoluteShort | eaMaskAbsoluteLong |
		eaMaskPCDisplacement | eaMaskPCIndex

	registerInstruction(movemStore, 0x4880, 0xffc0, storeMask)
	registerInstruction(movemStore, 0x48c0, 0xffc0, storeMask)
	registerInstruction(movemLoad, 0x4c80, 0xffc0, loadMask)
	registerInstruction(movemLoad, 0x4cc0, 0xffc0, loadMask)
}

// MOVEM transfers retire one register per tick through a MovemStep op
// that reschedules itself until the mask is drained. The register-list
// word is the first extension word, before any address extensions.

func movemStore(c *cpu) error {
	return movemDecode(c, false)
}

func movemLoad(c *cpu) error {
	return movemDecode(c, true)
}

func movemDecode(c *cpu, load bool) error {
	ir := c.regs.ir
	if ir&0x0040 != 0 {
		c.ctx.size = Long
	} else {
		c.ctx.size = Word
	}
	spec := c.srcSpec()
	c.ctx.dst.spec = spec
	c.ctx.movemLoad = load
	c.ctx.movemReverse = spec.kind == eaPreDecrement
	c.ctx.run = movemSetupRun

	c.recipeBegin()
	c.recipePush(opFetchExt, sideSrc)
	c.ctx.nSched++

	switch spec.kind {
	case eaIndirect, eaPostIncrement, eaPreDecrement:
		// base comes straight from the register in Execute
	default:
		n := extWordsForMode(spec.kind, Word)
		c.ctx.dst.extBase = c.ctx.nSched
		c.ctx.nSched += n
		for i := uint8(0); i < n; i++ {
			c.recipePush(opFetchExt, sideDst)
		}
		c.recipePush(opCalcEA, sideDst)
		if spec.kind == eaIndex || spec.kind == eaPCIndex {
			c.recipeInternal(2)
		}
	}

	c.recipePush(opExecute, 0)
	c.recipePush(opMovemStep, 0)
	c.recipeCommit()
	return nil
}

// movemSetupRun latches the register mask and the starting cursor.
func movemSetupRun(c *cpu) error {
	ctx := &c.ctx
	ctx.movemMask = ctx.ext[0]
	ctx.movemIdx = 0

	switch ctx.dst.spec.kind {
	case eaIndirect, eaPostIncrement, eaPreDecrement:
		ctx.data = c.regs.readA(ctx.dst.spec.reg)
	default:
		ctx.data = ctx.dst.addr
	}
	c.setFollowup(tagMovem)
	return nil
}

// movemStep moves one register, then reschedules itself ahead of the
// rest of the recipe. The tick that finds the mask empty performs the
// final bookkeeping instead of a transfer.
func (c *cpu) movemStep() error {
	ctx := &c.ctx

	for ctx.movemIdx < 16 && ctx.movemMask&(1<<ctx.movemIdx) == 0 {
		ctx.movemIdx++
	}
	if ctx.movemIdx >= 16 {
		return c.movemFinish()
	}

	bit := ctx.movemIdx
	ctx.movemIdx++

	// predecrement order runs A7 down to D0
	regnum := uint16(bit)
	if ctx.movemReverse {
		regnum = 15 - regnum
	}

	step := uint32(ctx.size)
	if ctx.movemLoad {
		value, err := c.readSized(ctx.size, ctx.data)
		if err != nil {
			return err
		}
		if ctx.size == Word {
			value = Word.signExtend(value)
		}
		if regnum < 8 {
			c.regs.writeD(regnum, value, Long)
		} else {
			c.regs.writeA(regnum-8, value, Long)
		}
		ctx.data += step
	} else {
		var value uint32
		if regnum < 8 {
			value = c.regs.d[regnum]
		} else {
			value = c.regs.readA(regnum - 8)
		}
		if ctx.movemReverse {
			ctx.data -= step
			if err := c.writeSized(ctx.size, ctx.data, value); err != nil {
				return err
			}
		} else {
			if err := c.writeSized(ctx.size, ctx.data, value); err != nil {
				return err
			}
			ctx.data += step
		}
	}

	c.queue.pushFront(micro{kind: opMovemStep})
	return nil
}

// movemFinish commits the updated base register for the incrementing
// and decrementing modes. Loads pay the dead read the hardware does
// one word past the list.
func (c *cpu) movemFinish() error {
	ctx := &c.ctx
	c.clearFollowup()

	switch ctx.dst.spec.kind {
	case eaPostIncrement, eaPreDecrement:
		c.regs.writeA(ctx.dst.spec.reg, ctx.data, Long)
	}
	if ctx.movemLoad {
		c.internal(4)
	}
	return nil
}
