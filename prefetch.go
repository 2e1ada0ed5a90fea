package m68k

// Two-stage prefetch pipeline. ir carries the opcode the next decode
// will consume, irc the word after it; ircAddr remembers where irc was
// fetched from so branches and exception frames can reconstruct the PC
// even after extension words were consumed.

// refill fetches the lookahead word at PC.
func (c *cpu) refill() error {
	w, err := c.readWordFC(c.regs.pc, true)
	if err != nil {
		return err
	}
	c.irc = w
	c.ircAddr = c.regs.pc
	c.regs.pc += 2
	return nil
}

// nextIR shifts the lookahead into the opcode stage and refills behind
// it. Every sequential recipe ends with this.
func (c *cpu) nextIR() error {
	c.ir = c.irc
	return c.refill()
}

// consumeIRC hands over the prefetched word and immediately refills
// from the current PC.
func (c *cpu) consumeIRC() (uint16, uint32, error) {
	w, addr := c.irc, c.ircAddr
	return w, addr, c.refill()
}

// consumeIRCDeferred hands over the prefetched word without refilling;
// used exactly when control flow is about to change, so the refill
// happens at the new PC rather than wastefully at the old one.
func (c *cpu) consumeIRCDeferred() (uint16, uint32) {
	return c.irc, c.ircAddr
}

// fetchExt retires one FetchExtWords step: the extension word comes out
// of the pipeline and, unless deferred, the refill bus cycle runs in
// the same tick.
func (c *cpu) fetchExt(side uint8, refillAfter bool) error {
	var (
		w    uint16
		addr uint32
		err  error
	)
	if refillAfter {
		w, addr, err = c.consumeIRC()
	} else {
		w, addr = c.consumeIRCDeferred()
	}

	ctx := &c.ctx
	ctx.ext[ctx.nExt] = w
	ctx.extAddr[ctx.nExt] = addr
	ctx.nExt++

	switch side {
	case sideSrc:
		c.setFollowup(tagEASrc)
	case sideDst:
		c.setFollowup(tagEADst)
	}
	return err
}
