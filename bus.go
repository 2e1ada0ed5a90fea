package m68k

// Bus is the contract the CPU core uses to reach memory-mapped space.
// Read and Write move single bytes; Tick advances peripheral time for
// cycles that are not bus accesses (internal delays, branch penalty
// cycles). The CPU never blocks on the bus: accesses complete within
// the tick that issues them, and a bus wanting to model contention or
// refresh must consume extra time itself rather than stall the caller.
type Bus interface {
	Read(address uint32) uint8
	Write(address uint32, value uint8)
	Tick(cycles uint32)
}

// Device represents a memory-mapped peripheral on the system bus.
// Implementations are expected to be safe for repeated Reset calls and
// must internally validate the address ranges they cover.
type Device interface {
	Contains(address uint32) bool
	Read(address uint32) uint8
	Write(address uint32, value uint8)
	Reset()
}

// WaitStateDevice optionally advertises additional wait states a device
// imposes per access. Implementations may vary their contribution based
// on the address.
type WaitStateDevice interface {
	WaitStates(address uint32) uint32
}

// WaitHook can be used to simulate wait states or count cycles for bus
// access.
type WaitHook func(states uint32)

// TickHook observes peripheral time handed to the bus via Tick.
type TickHook func(cycles uint32)

// SystemBus multiplexes byte accesses between attached devices and
// forwards idle time to an optional tick hook. Reads from unmapped
// space float high, matching an undriven data bus.
type SystemBus struct {
	devices    []Device
	waitStates uint32
	waitHook   WaitHook
	tickHook   TickHook
	lastDevice Device
}

// NewBus constructs a system bus optionally seeded with devices.
func NewBus(devices ...Device) *SystemBus {
	return &SystemBus{devices: devices}
}

// AddDevice attaches an additional device to the bus.
func (b *SystemBus) AddDevice(device Device) {
	b.devices = append(b.devices, device)
}

// SetWaitStates defines how many states the bus should report for each
// access when a WaitHook is configured.
func (b *SystemBus) SetWaitStates(states uint32) {
	b.waitStates = states
}

// SetWaitHook installs a callback that receives the configured wait
// states for every access. The CPU uses this to stretch its cycle
// counter for slow devices.
func (b *SystemBus) SetWaitHook(hook WaitHook) {
	b.waitHook = hook
}

// SetTickHook installs a callback that observes idle cycles forwarded
// through Tick.
func (b *SystemBus) SetTickHook(hook TickHook) {
	b.tickHook = hook
}

// Reset propagates a reset to all attached devices.
func (b *SystemBus) Reset() {
	for _, dev := range b.devices {
		dev.Reset()
	}
}

func (b *SystemBus) Read(address uint32) uint8 {
	dev := b.findDevice(address)
	if dev == nil {
		return 0xff
	}
	b.wait(address, dev)
	return dev.Read(address)
}

func (b *SystemBus) Write(address uint32, value uint8) {
	dev := b.findDevice(address)
	if dev == nil {
		return
	}
	b.wait(address, dev)
	dev.Write(address, value)
}

func (b *SystemBus) Tick(cycles uint32) {
	if b.tickHook != nil {
		b.tickHook(cycles)
	}
}

func (b *SystemBus) wait(address uint32, dev Device) {
	if b.waitHook == nil {
		return
	}

	states := b.waitStates
	if wsDev, ok := dev.(WaitStateDevice); ok {
		states += wsDev.WaitStates(address)
	}

	if states > 0 {
		b.waitHook(states)
	}
}

func (b *SystemBus) findDevice(address uint32) Device {
	if b.lastDevice != nil && b.lastDevice.Contains(address) {
		return b.lastDevice
	}

	for _, dev := range b.devices {
		if dev.Contains(address) {
			b.lastDevice = dev
			return dev
		}
	}

	return nil
}
