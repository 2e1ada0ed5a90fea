package m68k

func init() {
	registerInstruction(moveFromSR, 0x40c0, 0xffc0, eaMaskDataAlterable)
	registerInstruction(moveToCCR, 0x44c0, 0xffc0, eaMaskData)
	registerInstruction(moveToSR, 0x46c0, 0xffc0, eaMaskData)

	registerInstruction(logicToCCR, 0x003c, 0xffff, 0)
	registerInstruction(logicToSR, 0x007c, 0xffff, 0)
	registerInstruction(logicToCCR, 0x023c, 0xffff, 0)
	registerInstruction(logicToSR, 0x027c, 0xffff, 0)
	registerInstruction(logicToCCR, 0x0a3c, 0xffff, 0)
	registerInstruction(logicToSR, 0x0a7c, 0xffff, 0)

	registerInstruction(moveUSP, 0x4e60, 0xfff0, 0)
	registerInstruction(chk, 0x4180, 0xf1c0, eaMaskData)
	registerInstruction(trap, 0x4e40, 0xfff0, 0)
	registerInstruction(trapv, 0x4e76, 0xffff, 0)
	registerInstruction(stop, 0x4e72, 0xffff, 0)
	registerInstruction(resetInstruction, 0x4e70, 0xffff, 0)
	registerInstruction(nop, 0x4e71, 0xffff, 0)
	registerInstruction(illegal, 0x4afc, 0xffff, 0)

	registerInstruction(lineA, 0xa000, 0xf000, 0)
	registerInstruction(lineF, 0xf000, 0xf000, 0)
}

// moveFromSR is not privileged on the 68000. The memory form reads the
// destination before overwriting it, like the other read-modify-write
// shapes.
func moveFromSR(c *cpu) error {
	spec := c.srcSpec()
	c.ctx.size = Word
	c.ctx.run = moveFromSRRun

	c.recipeBegin()
	if spec.kind == eaDataRegister {
		c.ctx.src.spec = spec
		c.recipePush(opExecute, 0)
		c.recipeInternal(2)
		c.recipeCommit()
		return nil
	}
	c.scheduleEA(sideSrc, spec, true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipePush(opWriteEA, sideSrc)
	c.recipeCommit()
	return nil
}

func moveFromSRRun(c *cpu) error {
	if c.ctx.src.spec.kind == eaDataRegister {
		c.regs.writeD(y(c.regs.ir), uint32(c.regs.sr), Word)
		return nil
	}
	c.ctx.data = uint32(c.regs.sr)
	return nil
}

func moveToCCR(c *cpu) error {
	c.ctx.size = Word
	c.ctx.run = moveToCCRRun
	return c.statusLoadRecipe()
}

func moveToCCRRun(c *cpu) error {
	c.regs.setCCR(uint16(c.ctx.data))
	return nil
}

func moveToSR(c *cpu) error {
	if !c.regs.supervisor() {
		return c.privilegeViolation()
	}
	c.ctx.size = Word
	c.ctx.run = moveToSRRun
	return c.statusLoadRecipe()
}

func moveToSRRun(c *cpu) error {
	c.regs.setSR(uint16(c.ctx.data))
	return nil
}

func (c *cpu) statusLoadRecipe() error {
	c.recipeBegin()
	c.scheduleEA(sideSrc, c.srcSpec(), true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipeInternal(8)
	c.recipeCommit()
	return nil
}

// logicToCCR covers ORI, ANDI, and EORI to CCR; bits 9-10 of the
// opcode select the operation.
func logicToCCR(c *cpu) error {
	c.ctx.run = logicToCCRRun
	return c.statusImmediateRecipe()
}

func logicToCCRRun(c *cpu) error {
	c.clearFollowup()
	imm := c.ctx.ext[0] & srCCRMask
	c.regs.setCCR(applyStatusLogic(c.regs.ir, c.regs.sr, imm, srCCRMask))
	return nil
}

func logicToSR(c *cpu) error {
	if !c.regs.supervisor() {
		return c.privilegeViolation()
	}
	c.ctx.run = logicToSRRun
	return c.statusImmediateRecipe()
}

func logicToSRRun(c *cpu) error {
	c.clearFollowup()
	c.regs.setSR(applyStatusLogic(c.regs.ir, c.regs.sr, c.ctx.ext[0], 0xffff))
	return nil
}

func (c *cpu) statusImmediateRecipe() error {
	c.recipeBegin()
	c.recipePush(opFetchExt, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipeInternal(12)
	c.recipeCommit()
	return nil
}

func applyStatusLogic(ir, sr, imm uint16, mask uint16) uint16 {
	switch ir & 0x0f00 {
	case 0x0000:
		return sr | (imm & mask)
	case 0x0200:
		return sr & (imm | ^mask)
	default:
		return sr ^ (imm & mask)
	}
}

// moveUSP transfers between An and the user stack pointer; bit 3
// selects the direction.
func moveUSP(c *cpu) error {
	if !c.regs.supervisor() {
		return c.privilegeViolation()
	}
	c.ctx.run = moveUSPRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func moveUSPRun(c *cpu) error {
	ir := c.regs.ir
	reg := y(ir)
	if ir&0x0008 == 0 {
		c.regs.usp = c.regs.readA(reg)
		return nil
	}
	c.regs.writeA(reg, c.regs.usp, Long)
	return nil
}

// chk traps through vector 6 when the register is below zero or above
// the bound; N distinguishes which side failed.
func chk(c *cpu) error {
	c.ctx.size = Word
	c.ctx.run = chkRun
	c.recipeBegin()
	c.scheduleEA(sideSrc, c.srcSpec(), true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func chkRun(c *cpu) error {
	bound := int32(int16(c.ctx.data))
	value := int32(int16(c.regs.d[x(c.regs.ir)]))

	if value < 0 {
		c.regs.sr |= srNegative
		c.exception(XChk)
		return nil
	}
	if value > bound {
		c.regs.sr &^= srNegative
		c.exception(XChk)
		return nil
	}
	c.internal(6)
	return nil
}

func trap(c *cpu) error {
	c.exception(XTrap + uint32(c.regs.ir&0xf))
	return nil
}

func trapv(c *cpu) error {
	if c.regs.sr&srOverflow != 0 {
		c.exception(XTrapV)
		return nil
	}
	c.recipeBegin()
	c.recipeCommit()
	return nil
}

// stop loads the status register and freezes the scheduler until an
// unmasked interrupt or a reset. The pipeline shifts first so the wake
// path resumes at the following instruction.
func stop(c *cpu) error {
	if !c.regs.supervisor() {
		return c.privilegeViolation()
	}
	c.ctx.run = stopRun
	c.recipeBegin()
	c.recipePush(opFetchExt, sideSrc)
	c.recipePush(opNextIR, 0)
	c.recipePush(opExecute, 0)
	return nil
}

func stopRun(c *cpu) error {
	c.clearFollowup()
	c.regs.setSR(c.ctx.ext[0])
	c.stopped = true
	return nil
}

// resetInstruction asserts the reset line to the devices; the core's
// own state is untouched.
func resetInstruction(c *cpu) error {
	if !c.regs.supervisor() {
		return c.privilegeViolation()
	}
	c.ctx.run = resetRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func resetRun(c *cpu) error {
	if br, ok := c.bus.(interface{ Reset() }); ok {
		br.Reset()
	}
	c.internal(128)
	return nil
}

func nop(c *cpu) error {
	c.recipeBegin()
	c.recipeCommit()
	return nil
}

func illegal(c *cpu) error {
	return c.illegalInstruction()
}

func lineA(c *cpu) error {
	c.exception(XLineA)
	return nil
}

func lineF(c *cpu) error {
	c.exception(XLineF)
	return nil
}
