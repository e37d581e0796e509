package encoder

// reservedV0 and reservedVF are permanently withheld from allocation: V0 is
// the scratch register FX55/FX65 anchor on (those opcodes always transfer a
// contiguous run starting at V0), and VF is the flag register every
// arithmetic and draw opcode overwrites as a side effect.
const (
	reservedV0 = 0
	reservedVF = 0xF
)

// RegisterAllocator hands out CHIP-8 V-registers from a free-list bitmap.
// It is not a stack: nested sub-expressions may allocate and free in any
// order, so release must tolerate registers coming back out of sequence.
type RegisterAllocator struct {
	free [16]bool
}

// NewRegisterAllocator returns an allocator with every register but V0/VF
// free.
func NewRegisterAllocator() *RegisterAllocator {
	ra := &RegisterAllocator{}
	for i := range ra.free {
		ra.free[i] = true
	}
	ra.free[reservedV0] = false
	ra.free[reservedVF] = false
	return ra
}

// Allocate returns the lowest-indexed free register, or an error if the
// allocator is exhausted — the language's expressions never nest deep
// enough for this to happen in practice, but the generator must not panic
// if a pathological program manages it.
func (ra *RegisterAllocator) Allocate() (byte, error) {
	for i, isFree := range ra.free {
		if isFree {
			ra.free[i] = false
			return byte(i), nil
		}
	}
	return 0, &Error{Message: "register allocator exhausted: no free V-register"}
}

// Free releases r back to the pool. Freeing V0 or VF is a silent no-op —
// they are never actually checked out, so this keeps call sites that treat
// V0/VF uniformly with allocated registers simple.
func (ra *RegisterAllocator) Free(r byte) {
	if r == reservedV0 || r == reservedVF {
		return
	}
	if int(r) < len(ra.free) {
		ra.free[r] = true
	}
}
