package gamepad

// Axis indices in Snapshot.Axes.
const (
	AxisLeftX = iota
	AxisLeftY
	AxisRightX
	AxisRightY

	AxisCount
)

// Snapshot is one poll of a device: a pressed flag per button in ButtonID
// order and four stick axes in [-1, 1].
type Snapshot struct {
	Buttons [ButtonCount]bool
	Axes    [AxisCount]float64
}

// Pressed reports whether button b is down in the snapshot.
func (s *Snapshot) Pressed(b ButtonID) bool {
	if !b.Valid() {
		return false
	}
	return s.Buttons[b]
}

// SnapshotSource supplies fresh snapshots for a device. The bool result is
// false when the device cannot be read.
type SnapshotSource interface {
	Snapshot(device int) (Snapshot, bool)
}

// SnapshotFunc adapts a function to SnapshotSource.
type SnapshotFunc func(device int) (Snapshot, bool)

func (f SnapshotFunc) Snapshot(device int) (Snapshot, bool) {
	return f(device)
}
