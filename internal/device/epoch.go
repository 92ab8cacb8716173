package device

import "strconv"

// Epoch identifies one generation of a device context. Zero means no
// context. Each newly created context gets a strictly greater epoch than
// any before it, so a destroyed generation is never seen again.
type Epoch uint64

// NoEpoch is the epoch reported while no context is active.
const NoEpoch Epoch = 0

// String returns the epoch number, or "none" for NoEpoch.
func (e Epoch) String() string {
	if e == NoEpoch {
		return "none"
	}
	return strconv.FormatUint(uint64(e), 10)
}

// Stamp records the epoch an object was created under.
//
// A zero stamp means the object never needed a context. A non-zero stamp
// is valid exactly while the context generation it names is the active one,
// which makes invalidation of every object of a destroyed context O(1).
type Stamp struct {
	epoch Epoch
}

// StampOf returns the stamp for objects created under epoch e.
func StampOf(e Epoch) Stamp {
	return Stamp{epoch: e}
}

// Epoch returns the context generation recorded in the stamp.
func (s Stamp) Epoch() Epoch {
	return s.epoch
}

// IsZero reports whether the stamp was taken without a context.
func (s Stamp) IsZero() bool {
	return s.epoch == NoEpoch
}

// ValidAt reports whether the stamp is usable while active is the active epoch.
func (s Stamp) ValidAt(active Epoch) bool {
	return s.epoch != NoEpoch && s.epoch == active
}

func (s Stamp) String() string {
	return "stamp@" + s.epoch.String()
}
