package m68k

type Size uint32

const (
	Byte Size = 1
	Word Size = 2
	Long Size = 4
)

func (s Size) mask() uint32 {
	switch s {
	case Byte:
		return 0xff
	case Word:
		return 0xffff
	default:
		return 0xffffffff
	}
}

func (s Size) signBit() uint32 {
	switch s {
	case Byte:
		return 0x80
	case Word:
		return 0x8000
	default:
		return 0x80000000
	}
}

func (s Size) bits() int {
	return int(s) * 8
}

func (s Size) isZero(value uint32) bool {
	return value&s.mask() == 0
}

func (s Size) isNegative(value uint32) bool {
	return value&s.signBit() != 0
}

// signExtend widens the low byte/word of value to a full 32-bit value.
func (s Size) signExtend(value uint32) uint32 {
	switch s {
	case Byte:
		return uint32(int32(int8(value)))
	case Word:
		return uint32(int32(int16(value)))
	default:
		return value
	}
}

var opSizes = []Size{Byte, Word, Long, Byte, Byte, Word, Long}

func operandSizeFromOpmode(opmode uint16) Size {
	return opSizes[opmode&0x7]
}

// operandSizeFromOpcode decodes the common size field in bits 7-6.
func operandSizeFromOpcode(opcode uint16) Size {
	switch (opcode >> 6) & 0x3 {
	case 0:
		return Byte
	case 1:
		return Word
	default:
		return Long
	}
}
