package rate

import (
	"strconv"
	"time"

	"github.com/sagernet/quic-go/congestion"
)

// ReferenceFrameLength is the frame size airtime tables are computed for.
const ReferenceFrameLength congestion.ByteCount = 1200

// BasicGroup is the group every peer can fall back to.
const BasicGroup = 0

const (
	ofdmPreamble     = 20 * time.Microsecond
	ofdmSymbol       = 4 * time.Microsecond
	ofdmSymbolSGI    = 3600 * time.Nanosecond
	cckLongPreamble  = 192 * time.Microsecond
	cckShortPreamble = 96 * time.Microsecond
	htSignal         = 8 * time.Microsecond
	htTraining       = 4 * time.Microsecond
	vhtSignalB       = 4 * time.Microsecond

	serviceBits = 16
	tailBits    = 6
)

var (
	ofdmRates = []int{6, 9, 12, 18, 24, 36, 48, 54}
	// in units of 100 kbit/s
	cckRates = []int{10, 20, 55, 110}

	dataSubcarriers = map[Width]int{Width20: 52, Width40: 108, Width80: 234}
)

// mcs describes coded bits per subcarrier and the coding rate.
type mcs struct {
	bits     int
	num, den int
}

var mcsTable = [MaxGroupRates]mcs{
	{1, 1, 2}, {2, 1, 2}, {2, 3, 4}, {4, 1, 2}, {4, 3, 4},
	{6, 2, 3}, {6, 3, 4}, {6, 5, 6}, {8, 3, 4}, {8, 5, 6},
}

type tableGroup struct {
	info      GroupInfo
	valid     uint16
	durations [MaxGroupRates]time.Duration
	bitrates  [MaxGroupRates]Bandwidth
}

// Table is the catalogue of every group known to the rate engine.
// It is immutable once built and may be shared between peers.
type Table struct {
	groups []tableGroup
}

// DefaultTable returns the OFDM, CCK, HT and VHT catalogue.
//
// Group 0 is OFDM, groups 1 and 2 are CCK with long and short preamble,
// followed by HT (streams x width x guard interval, MCS 0-7) and VHT
// (streams x width x guard interval, MCS 0-9).
func DefaultTable() *Table {
	t := &Table{}
	t.groups = append(t.groups, ofdmGroup(), cckGroup(false), cckGroup(true))
	for streams := 1; streams <= 4; streams++ {
		for _, width := range []Width{Width20, Width40} {
			for _, sgi := range []bool{false, true} {
				t.groups = append(t.groups, mcsGroup(KindHT, streams, width, sgi, 8))
			}
		}
	}
	for streams := 1; streams <= 4; streams++ {
		for _, width := range []Width{Width20, Width40, Width80} {
			for _, sgi := range []bool{false, true} {
				t.groups = append(t.groups, mcsGroup(KindVHT, streams, width, sgi, MaxGroupRates))
			}
		}
	}
	return t
}

func ofdmGroup() tableGroup {
	g := tableGroup{info: GroupInfo{Kind: KindOFDM, Streams: 1, Width: Width20}}
	for i, mbps := range ofdmRates {
		bitsPerSymbol := mbps * 4
		symbols := ceilDiv(serviceBits+8*int(ReferenceFrameLength)+tailBits, bitsPerSymbol)
		g.valid |= 1 << uint(i)
		g.durations[i] = ofdmPreamble + time.Duration(symbols)*ofdmSymbol
		g.bitrates[i] = Bandwidth(mbps) * MBitsPerSecond
	}
	return g
}

func cckGroup(shortPreamble bool) tableGroup {
	g := tableGroup{info: GroupInfo{Kind: KindCCK, Streams: 1, Width: Width20, ShortPreamble: shortPreamble}}
	preamble := cckLongPreamble
	if shortPreamble {
		preamble = cckShortPreamble
	}
	for i, rate := range cckRates {
		// 1 Mbit/s has no short preamble variant
		if shortPreamble && i == 0 {
			continue
		}
		micros := ceilDiv(8*int(ReferenceFrameLength)*10, rate)
		g.valid |= 1 << uint(i)
		g.durations[i] = preamble + time.Duration(micros)*time.Microsecond
		g.bitrates[i] = Bandwidth(rate) * 100 * KBitsPerSecond
	}
	return g
}

func mcsGroup(kind Kind, streams int, width Width, shortGI bool, rates int) tableGroup {
	g := tableGroup{info: GroupInfo{Kind: kind, Streams: streams, Width: width, ShortGI: shortGI}}
	symbolTime := ofdmSymbol
	if shortGI {
		symbolTime = ofdmSymbolSGI
	}
	preamble := ofdmPreamble + htSignal + htTraining + time.Duration(streams)*htTraining
	if kind == KindVHT {
		preamble += vhtSignalB
	}
	for i := 0; i < rates; i++ {
		m := mcsTable[i]
		coded := dataSubcarriers[width] * m.bits * m.num * streams
		if coded%m.den != 0 {
			continue
		}
		bitsPerSymbol := coded / m.den
		symbols := ceilDiv(serviceBits+8*int(ReferenceFrameLength)+tailBits*streams, bitsPerSymbol)
		g.valid |= 1 << uint(i)
		g.durations[i] = preamble + time.Duration(symbols)*symbolTime
		g.bitrates[i] = Bandwidth(uint64(bitsPerSymbol) * uint64(time.Second) / uint64(symbolTime))
	}
	return g
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func (t *Table) GroupCount() int {
	return len(t.groups)
}

func (t *Table) GroupInfo(group int) GroupInfo {
	return t.groups[group].info
}

// ValidMask returns the indices of group that exist in the catalogue.
func (t *Table) ValidMask(group int) uint16 {
	return t.groups[group].valid
}

func (t *Table) contains(id ID) bool {
	return id.IsValid() && id.Group() < len(t.groups) && id.Index() < MaxGroupRates
}

func (t *Table) Duration(id ID) time.Duration {
	if !t.contains(id) {
		return 0
	}
	return t.groups[id.Group()].durations[id.Index()]
}

// Bitrate returns the nominal PHY bitrate of id.
func (t *Table) Bitrate(id ID) Bandwidth {
	if !t.contains(id) {
		return 0
	}
	return t.groups[id.Group()].bitrates[id.Index()]
}

// Name returns a human readable label such as "HT40-2ss-SGI MCS5".
func (t *Table) Name(id ID) string {
	if !t.contains(id) {
		return "none"
	}
	info := t.groups[id.Group()].info
	switch info.Kind {
	case KindOFDM, KindCCK:
		return info.String() + " " + t.groups[id.Group()].bitrates[id.Index()].String()
	}
	return info.String() + " MCS" + strconv.Itoa(id.Index())
}
