package enum

// EntityKind identifies the record type under a trader in the execution store.
type EntityKind uint16

const (
	EntityKindUnknown EntityKind = iota
	EntityKindAccount
	EntityKindOrder
	EntityKindPosition
	EntityKindStrategy
)

func (k EntityKind) String() string {
	switch k {
	case EntityKindAccount:
		return "ACCOUNT"
	case EntityKindOrder:
		return "ORDER"
	case EntityKindPosition:
		return "POSITION"
	case EntityKindStrategy:
		return "STRATEGY"
	default:
		return "UNKNOWN"
	}
}
