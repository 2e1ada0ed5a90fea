package m68k

// RAM is a simple flat memory device.
type RAM struct {
	offset uint32
	mem    []byte
}

func NewRAM(offset, size uint32) *RAM {
	return &RAM{offset: offset, mem: make([]byte, size)}
}

// WaitStates allows RAM to satisfy WaitStateDevice while imposing no
// additional delay.
func (ram *RAM) WaitStates(uint32) uint32 { return 0 }

func (ram *RAM) Contains(address uint32) bool {
	return address >= ram.offset && address < ram.offset+uint32(len(ram.mem))
}

func (ram *RAM) Read(address uint32) uint8 {
	return ram.mem[address-ram.offset]
}

func (ram *RAM) Write(address uint32, value uint8) {
	ram.mem[address-ram.offset] = value
}

func (ram *RAM) Reset() {
	for i := range ram.mem {
		ram.mem[i] = 0
	}
}

// WriteWord stores a big-endian word, a convenience for seeding vectors
// and program images.
func (ram *RAM) WriteWord(address uint32, value uint16) {
	ram.mem[address-ram.offset] = uint8(value >> 8)
	ram.mem[address-ram.offset+1] = uint8(value)
}

// WriteLong stores a big-endian long word.
func (ram *RAM) WriteLong(address uint32, value uint32) {
	ram.WriteWord(address, uint16(value>>16))
	ram.WriteWord(address+2, uint16(value))
}

// ReadWord fetches a big-endian word.
func (ram *RAM) ReadWord(address uint32) uint16 {
	idx := address - ram.offset
	return uint16(ram.mem[idx])<<8 | uint16(ram.mem[idx+1])
}

// ReadLong fetches a big-endian long word.
func (ram *RAM) ReadLong(address uint32) uint32 {
	return uint32(ram.ReadWord(address))<<16 | uint32(ram.ReadWord(address+2))
}
