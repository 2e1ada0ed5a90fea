package m68k

// addWithFlags performs src+dst at the given width and returns the
// result with a full NZVCX flag image.
func addWithFlags(src, dst uint32, size Size) (uint32, uint16) {
	mask := size.mask()
	sign := size.signBit()
	src &= mask
	dst &= mask
	res := (src + dst) & mask

	var sr uint16
	if res == 0 {
		sr |= srZero
	}
	if res&sign != 0 {
		sr |= srNegative
	}
	if ((^(dst ^ src)) & (res ^ dst) & sign) != 0 {
		sr |= srOverflow
	}
	if (((src & dst) | ((src | dst) & ^res)) & sign) != 0 {
		sr |= srCarry | srExtend
	}
	return res, sr
}

// subWithFlags performs dst-src at the given width and returns the
// result with a full NZVCX flag image.
func subWithFlags(src, dst uint32, size Size) (uint32, uint16) {
	mask := size.mask()
	sign := size.signBit()
	src &= mask
	dst &= mask
	res := (dst - src) & mask

	var sr uint16
	if res == 0 {
		sr |= srZero
	}
	if res&sign != 0 {
		sr |= srNegative
	}
	if ((dst ^ src) & (dst ^ res) & sign) != 0 {
		sr |= srOverflow
	}
	if src > dst {
		sr |= srCarry | srExtend
	}
	return res, sr
}

// setArithFlags replaces all five condition codes.
func (c *cpu) setArithFlags(flags uint16) {
	c.regs.sr = (c.regs.sr &^ srAllFlags) | flags
}

// setCmpFlags replaces NZVC and leaves X alone, as CMP-family
// instructions require.
func (c *cpu) setCmpFlags(flags uint16) {
	c.regs.sr = (c.regs.sr &^ (srNegative | srZero | srOverflow | srCarry)) |
		(flags &^ srExtend)
}

// setLogicFlags sets N and Z from the result, clears V and C, and
// leaves X alone. This is the flag rule shared by the MOVE, logical,
// and TST families.
func (c *cpu) setLogicFlags(value uint32, size Size) {
	c.regs.sr &^= srNegative | srZero | srOverflow | srCarry
	if size.isZero(value) {
		c.regs.sr |= srZero
	}
	if size.isNegative(value) {
		c.regs.sr |= srNegative
	}
}

// conditionTrue evaluates one of the sixteen condition codes against
// the current flags.
func (c *cpu) conditionTrue(cc uint16) bool {
	sr := c.regs.sr
	n := sr&srNegative != 0
	z := sr&srZero != 0
	v := sr&srOverflow != 0
	cf := sr&srCarry != 0

	switch cc & 0xf {
	case 0x0: // T
		return true
	case 0x1: // F
		return false
	case 0x2: // HI
		return !cf && !z
	case 0x3: // LS
		return cf || z
	case 0x4: // CC
		return !cf
	case 0x5: // CS
		return cf
	case 0x6: // NE
		return !z
	case 0x7: // EQ
		return z
	case 0x8: // VC
		return !v
	case 0x9: // VS
		return v
	case 0xa: // PL
		return !n
	case 0xb: // MI
		return n
	case 0xc: // GE
		return n == v
	case 0xd: // LT
		return n != v
	case 0xe: // GT
		return !z && n == v
	default: // LE
		return z || n != v
	}
}
