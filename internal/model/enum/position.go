package enum

// PositionSide describes net exposure direction.
type PositionSide uint16

const (
	PositionSideFlat PositionSide = iota
	PositionSideLong
	PositionSideShort
)

func (s PositionSide) String() string {
	switch s {
	case PositionSideLong:
		return "LONG"
	case PositionSideShort:
		return "SHORT"
	default:
		return "FLAT"
	}
}
