package m68k

func init() {
	registerInstruction(branch, 0x6000, 0xf000, 0)
	registerInstruction(dbcc, 0x50c8, 0xf0f8, 0)
	registerInstruction(scc, 0x50c0, 0xf0c0, eaMaskDataAlterable)
}

// branch covers BRA, BSR, and the fourteen conditional branches. The
// condition is evaluated at decode; taken and not-taken paths get
// different recipes so the pipeline cost falls out of the micro-ops.
func branch(c *cpu) error {
	opcode := c.regs.ir
	cc := (opcode >> 8) & 0xf
	disp8 := int8(opcode)
	wordForm := disp8 == 0

	if cc == 1 { // BSR
		c.ctx.run = bsrRun
		c.recipeBegin()
		c.recipeInternal(2)
		if wordForm {
			c.recipePush(opFetchExtDeferred, sideSrc)
		}
		c.recipePush(opExecute, 0)
		c.recipePush(opPushLongHi, 0)
		c.recipePush(opPushLongLo, 0)
		c.recipeCommitJump()
		return nil
	}

	taken := cc == 0 || c.conditionTrue(cc)
	c.recipeBegin()
	if taken {
		c.ctx.run = branchTakenRun
		c.recipeInternal(2)
		if wordForm {
			c.recipePush(opFetchExtDeferred, sideSrc)
		}
		c.recipePush(opExecute, 0)
		c.recipeCommitJump()
		return nil
	}

	if wordForm {
		c.recipePush(opFetchExt, sideSrc)
	}
	c.recipeInternal(4)
	c.recipeCommit()
	return nil
}

// branchTarget computes the destination from the 8-bit displacement or
// the consumed extension word.
func (c *cpu) branchTarget() uint32 {
	opcode := c.regs.ir
	base := c.ctx.pc0 + 2
	if int8(opcode) != 0 {
		return base + uint32(int32(int8(opcode)))
	}
	return base + uint32(int32(int16(c.ctx.ext[0])))
}

func branchTakenRun(c *cpu) error {
	c.clearFollowup()
	c.regs.pc = c.branchTarget()
	return nil
}

func bsrRun(c *cpu) error {
	c.clearFollowup()
	c.ctx.data2 = c.ctx.pc0 + 2
	if int8(c.regs.ir) == 0 {
		c.ctx.data2 += 2
	}
	c.regs.pc = c.branchTarget()
	return nil
}

// dbcc picks its recipe from the condition and the counter as they
// stand at decode; the decrement itself retires in Execute.
func dbcc(c *cpu) error {
	opcode := c.regs.ir
	cc := (opcode >> 8) & 0xf

	c.recipeBegin()
	if c.conditionTrue(cc) {
		c.recipePush(opFetchExt, sideSrc)
		c.recipeInternal(4)
		c.recipeCommit()
		return nil
	}

	if uint16(c.regs.d[y(opcode)]) == 0 {
		// counter expires: fall through after the decrement
		c.ctx.run = dbccExpireRun
		c.recipePush(opFetchExt, sideSrc)
		c.recipePush(opExecute, 0)
		c.recipeInternal(6)
		c.recipeCommit()
		return nil
	}

	c.ctx.run = dbccBranchRun
	c.recipePush(opFetchExtDeferred, sideSrc)
	c.recipeInternal(2)
	c.recipePush(opExecute, 0)
	c.recipeCommitJump()
	return nil
}

func dbccDecrement(c *cpu) {
	reg := y(c.regs.ir)
	count := uint16(c.regs.d[reg]) - 1
	c.regs.writeD(reg, uint32(count), Word)
}

func dbccExpireRun(c *cpu) error {
	c.clearFollowup()
	dbccDecrement(c)
	return nil
}

func dbccBranchRun(c *cpu) error {
	c.clearFollowup()
	dbccDecrement(c)
	c.regs.pc = c.ctx.pc0 + 2 + uint32(int32(int16(c.ctx.ext[0])))
	return nil
}

// scc sets or clears a whole byte from the condition.
func scc(c *cpu) error {
	opcode := c.regs.ir
	spec := c.srcSpec()
	c.ctx.size = Byte
	c.ctx.run = sccRun

	if spec.kind == eaDataRegister {
		c.ctx.src.spec = spec
		c.recipeBegin()
		c.recipePush(opExecute, 0)
		if c.conditionTrue((opcode >> 8) & 0xf) {
			c.recipeInternal(2)
		}
		c.recipeCommit()
		return nil
	}

	// read-modify-write on memory; the fetched value is discarded
	c.recipeBegin()
	c.scheduleEA(sideSrc, spec, true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipePush(opWriteEA, sideSrc)
	c.recipeCommit()
	return nil
}

func sccRun(c *cpu) error {
	opcode := c.regs.ir
	var value uint32
	if c.conditionTrue((opcode >> 8) & 0xf) {
		value = 0xff
	}
	c.ctx.data = value
	if c.ctx.src.spec.kind == eaDataRegister {
		c.regs.writeD(y(opcode), value, Byte)
	}
	return nil
}
