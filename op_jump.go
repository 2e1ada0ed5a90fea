package m68k

func init() {
	registerInstruction(lea, 0x41c0, 0xf1c0, eaMaskControl)
	registerInstruction(pea, 0x4840, 0xffc0, eaMaskControl)
	registerInstruction(jsr, 0x4e80, 0xffc0, eaMaskControl)
	registerInstruction(jmp, 0x4ec0, 0xffc0, eaMaskControl)
	registerInstruction(rts, 0x4e75, 0xffff, 0)
	registerInstruction(rtr, 0x4e77, 0xffff, 0)
	registerInstruction(rte, 0x4e73, 0xffff, 0)
	registerInstruction(link, 0x4e50, 0xfff8, 0)
	registerInstruction(unlk, 0x4e58, 0xfff8, 0)
}

// scheduleControlEA resolves a control-mode address for an instruction
// that redirects the pipeline. The final extension word is consumed
// without a refill, since the flow change re-fetches both stages at
// the target anyway.
func (c *cpu) scheduleControlEA(spec eaSpec) {
	st := c.sideState(sideSrc)
	*st = eaState{spec: spec}

	n := extWordsForMode(spec.kind, c.ctx.size)
	c.ctx.nSched += n
	for i := uint8(0); i < n; i++ {
		if i == n-1 {
			c.recipePush(opFetchExtDeferred, sideSrc)
		} else {
			c.recipePush(opFetchExt, sideSrc)
		}
	}
	c.recipePush(opCalcEA, sideSrc)
}

// controlFlowSettle is the address-calculation idle time JMP and JSR
// pay per mode.
func controlFlowSettle(kind eaKind) uint8 {
	switch kind {
	case eaDisplacement, eaAbsoluteShort, eaPCDisplacement:
		return 2
	case eaIndex, eaPCIndex:
		return 6
	}
	return 0
}

func jmp(c *cpu) error {
	spec := c.srcSpec()
	c.ctx.size = Word
	c.ctx.run = jmpRun
	c.recipeBegin()
	c.scheduleControlEA(spec)
	if settle := controlFlowSettle(spec.kind); settle > 0 {
		c.recipeInternal(settle)
	}
	c.recipePush(opExecute, 0)
	c.recipeCommitJump()
	return nil
}

func jmpRun(c *cpu) error {
	c.regs.pc = c.ctx.src.addr
	return nil
}

func jsr(c *cpu) error {
	spec := c.srcSpec()
	c.ctx.size = Word
	c.ctx.run = jsrRun
	c.recipeBegin()
	c.scheduleControlEA(spec)
	if settle := controlFlowSettle(spec.kind); settle > 0 {
		c.recipeInternal(settle)
	}
	c.recipePush(opExecute, 0)
	c.recipePush(opPushLongHi, 0)
	c.recipePush(opPushLongLo, 0)
	c.recipeCommitJump()
	return nil
}

func jsrRun(c *cpu) error {
	ctx := &c.ctx
	ctx.data2 = ctx.pc0 + 2 + 2*uint32(ctx.nExt)
	c.regs.pc = ctx.src.addr
	return nil
}

func rts(c *cpu) error {
	c.ctx.run = rtsRun
	c.recipeBegin()
	c.recipePush(opPullLongHi, 0)
	c.recipePush(opPullLongLo, 0)
	c.recipePush(opExecute, 0)
	c.recipeCommitJump()
	return nil
}

func rtsRun(c *cpu) error {
	c.regs.pc = c.ctx.data2
	return nil
}

func rtr(c *cpu) error {
	c.ctx.run = rtrRun
	c.recipeBegin()
	c.recipePush(opPullWord, 0)
	c.recipePush(opPullLongHi, 0)
	c.recipePush(opPullLongLo, 0)
	c.recipePush(opExecute, 0)
	c.recipeCommitJump()
	return nil
}

func rtrRun(c *cpu) error {
	c.regs.setCCR(uint16(c.ctx.data))
	c.regs.pc = c.ctx.data2
	return nil
}

// rte restores the full status register. The frame words are pulled
// while still on the supervisor stack; the mode switch only lands in
// Execute, after the last pull.
func rte(c *cpu) error {
	if !c.regs.supervisor() {
		return c.privilegeViolation()
	}
	c.ctx.run = rteRun
	c.recipeBegin()
	c.recipePush(opPullWord, 0)
	c.recipePush(opPullLongHi, 0)
	c.recipePush(opPullLongLo, 0)
	c.recipePush(opExecute, 0)
	c.recipeCommitJump()
	return nil
}

func rteRun(c *cpu) error {
	c.regs.setSR(uint16(c.ctx.data))
	c.regs.pc = c.ctx.data2
	return nil
}

func lea(c *cpu) error {
	spec := c.srcSpec()
	c.ctx.size = Word
	c.ctx.run = leaRun
	c.recipeBegin()
	c.scheduleEA(sideSrc, spec, false)
	if spec.kind == eaIndex || spec.kind == eaPCIndex {
		c.recipeInternal(2)
	}
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func leaRun(c *cpu) error {
	c.regs.writeA(x(c.regs.ir), c.ctx.src.addr, Long)
	return nil
}

func pea(c *cpu) error {
	spec := c.srcSpec()
	c.ctx.size = Word
	c.ctx.run = peaRun
	c.recipeBegin()
	c.scheduleEA(sideSrc, spec, false)
	if spec.kind == eaIndex || spec.kind == eaPCIndex {
		c.recipeInternal(2)
	}
	c.recipePush(opExecute, 0)
	c.recipePush(opPushLongHi, 0)
	c.recipePush(opPushLongLo, 0)
	c.recipeCommit()
	return nil
}

func peaRun(c *cpu) error {
	c.ctx.data2 = c.ctx.src.addr
	return nil
}

func link(c *cpu) error {
	c.ctx.run = linkRun
	c.recipeBegin()
	c.recipePush(opFetchExt, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipePush(opPushLongHi, 0)
	c.recipePush(opPushLongLo, 0)
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func linkRun(c *cpu) error {
	ctx := &c.ctx
	reg := y(c.regs.ir)
	if ctx.stage == 0 {
		ctx.stage = 1
		c.clearFollowup()
		ctx.data2 = c.regs.readA(reg)
		return nil
	}
	sp := c.regs.sp()
	c.regs.writeA(reg, *sp, Long)
	*sp += uint32(int32(int16(ctx.ext[0])))
	return nil
}

func unlk(c *cpu) error {
	c.ctx.run = unlkRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipePush(opPullLongHi, 0)
	c.recipePush(opPullLongLo, 0)
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func unlkRun(c *cpu) error {
	ctx := &c.ctx
	reg := y(c.regs.ir)
	if ctx.stage == 0 {
		ctx.stage = 1
		*c.regs.sp() = c.regs.readA(reg)
		return nil
	}
	c.regs.writeA(reg, ctx.data2, Long)
	return nil
}
