package rate

import (
	"time"

	E "github.com/sagernet/sing/common/exceptions"
)

// PeerConfig describes what a peer advertised at association time.
type PeerConfig struct {
	CCK     bool  `yaml:"cck"`
	HT      bool  `yaml:"ht"`
	VHT     bool  `yaml:"vht"`
	Streams int   `yaml:"streams"`
	Width   Width `yaml:"width"`
	ShortGI bool  `yaml:"short_gi"`
	// ShortPreamble enables the short preamble CCK group instead of the long one.
	ShortPreamble bool `yaml:"short_preamble"`
}

func (c PeerConfig) Validate() error {
	if c.Streams < 0 || c.Streams > 4 {
		return E.New("invalid stream count: ", c.Streams)
	}
	switch c.Width {
	case 0, Width20, Width40, Width80:
	default:
		return E.New("invalid channel width: ", int(c.Width))
	}
	if c.Width == Width80 && !c.VHT {
		return E.New("80 MHz requires VHT")
	}
	return nil
}

// Peer is a Table restricted to the rates one peer supports.
type Peer struct {
	table *Table
	masks []uint16
}

var _ Capabilities = (*Peer)(nil)

// NewPeer builds the supported masks of config over table.
// A peer left without any usable group keeps the basic group.
func NewPeer(table *Table, config PeerConfig) (*Peer, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}
	width := config.Width
	if width == 0 {
		width = Width20
	}
	p := &Peer{
		table: table,
		masks: make([]uint16, table.GroupCount()),
	}
	for group := range p.masks {
		info := table.GroupInfo(group)
		var usable bool
		switch info.Kind {
		case KindOFDM:
			usable = true
		case KindCCK:
			usable = config.CCK && info.ShortPreamble == config.ShortPreamble
		case KindHT:
			usable = config.HT && !config.VHT
		case KindVHT:
			usable = config.VHT
		}
		if !info.Kind.Legacy() {
			usable = usable && info.Streams <= config.Streams && info.Width <= width && (!info.ShortGI || config.ShortGI)
		}
		if usable {
			p.masks[group] = table.ValidMask(group)
		}
	}
	p.ensureBasic()
	return p, nil
}

// SetSupported overrides the supported mask of group.
func (p *Peer) SetSupported(group int, mask uint16) {
	p.masks[group] = mask & p.table.ValidMask(group)
	p.ensureBasic()
}

func (p *Peer) ensureBasic() {
	for _, mask := range p.masks {
		if mask != 0 {
			return
		}
	}
	p.masks[BasicGroup] = p.table.ValidMask(BasicGroup)
}

// Table returns the catalogue the peer was built from.
func (p *Peer) Table() *Table {
	return p.table
}

func (p *Peer) GroupCount() int {
	return len(p.masks)
}

func (p *Peer) GroupInfo(group int) GroupInfo {
	return p.table.GroupInfo(group)
}

func (p *Peer) SupportedMask(group int) uint16 {
	return p.masks[group]
}

func (p *Peer) Duration(id ID) time.Duration {
	return p.table.Duration(id)
}
