package rate

import (
	"strconv"
	"time"
)

// Kind is the modulation family of a group.
type Kind int

const (
	KindOFDM Kind = iota
	KindCCK
	KindHT
	KindVHT
)

func (k Kind) String() string {
	switch k {
	case KindOFDM:
		return "OFDM"
	case KindCCK:
		return "CCK"
	case KindHT:
		return "HT"
	case KindVHT:
		return "VHT"
	default:
		return "UNKNOWN"
	}
}

// Legacy reports whether the kind predates spatial multiplexing.
func (k Kind) Legacy() bool {
	return k == KindOFDM || k == KindCCK
}

// Width is the channel width class in MHz.
type Width int

const (
	Width20 Width = 20
	Width40 Width = 40
	Width80 Width = 80
)

// GroupInfo describes the rates sharing one modulation family, width and stream count.
type GroupInfo struct {
	Kind          Kind
	Streams       int
	Width         Width
	ShortGI       bool
	ShortPreamble bool
}

func (g GroupInfo) String() string {
	switch g.Kind {
	case KindCCK:
		if g.ShortPreamble {
			return "CCK-SP"
		}
		return "CCK-LP"
	case KindOFDM:
		return "OFDM"
	}
	name := g.Kind.String() + strconv.Itoa(int(g.Width)) + "-" + strconv.Itoa(g.Streams) + "ss"
	if g.ShortGI {
		name += "-SGI"
	}
	return name
}

// Capabilities is the read-only view of the rates usable with one peer.
// Implementations must stay stable between two statistics windows.
type Capabilities interface {
	GroupCount() int
	GroupInfo(group int) GroupInfo
	// SupportedMask has bit i set when index i of group is usable with the peer.
	SupportedMask(group int) uint16
	// Duration returns the expected airtime of a reference frame sent at id.
	Duration(id ID) time.Duration
}

// Supported reports whether id is usable according to caps.
func Supported(caps Capabilities, id ID) bool {
	if !id.IsValid() || id.Group() >= caps.GroupCount() || id.Index() >= MaxGroupRates {
		return false
	}
	return caps.SupportedMask(id.Group())&(1<<uint(id.Index())) != 0
}
