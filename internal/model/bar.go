package model

// BarType names a bar stream, e.g. "XBT/USD-1-MINUTE-LAST".
type BarType string

// Bar is an immutable OHLC sample. Consumers treat it as read-only.
type Bar struct {
	Type        BarType
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	EventTsNano int64
	RecvTsNano  int64
}
