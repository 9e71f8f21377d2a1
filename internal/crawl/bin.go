package crawl

// Bin is the enumerated location of a destination. Exactly one bin holds a
// given URL at any time.
type Bin int

const (
	// binUnseen is the zero value: a URL the coordinator has never
	// recorded a bin for.
	binUnseen Bin = iota
	BinOpen
	BinOpenExternal
	BinInProgress
	BinClosed
)

func (b Bin) String() string {
	switch b {
	case BinOpen:
		return "open"
	case BinOpenExternal:
		return "open-external"
	case BinInProgress:
		return "in-progress"
	case BinClosed:
		return "closed"
	default:
		return "unseen"
	}
}
