package rate

import (
	"math"
	"strconv"
	"time"

	"github.com/sagernet/quic-go/congestion"
)

// Bandwidth represents a data rate in bits per second.
type Bandwidth uint64

const (
	BitsPerSecond  Bandwidth = 1
	BytesPerSecond Bandwidth = 8 * BitsPerSecond
	KBitsPerSecond Bandwidth = 1000 * BitsPerSecond
	MBitsPerSecond Bandwidth = 1000 * KBitsPerSecond

	infBandwidth Bandwidth = math.MaxUint64
)

// BandwidthFromDelta returns the rate needed to move bytes in delta.
func BandwidthFromDelta(bytes congestion.ByteCount, delta time.Duration) Bandwidth {
	if delta <= 0 {
		return infBandwidth
	}
	return Bandwidth(uint64(bytes) * uint64(BytesPerSecond) * uint64(time.Second) / uint64(delta))
}

// Mbps returns the bandwidth in megabits per second.
func (b Bandwidth) Mbps() float64 {
	return float64(b) / float64(MBitsPerSecond)
}

func (b Bandwidth) IsInfinite() bool {
	return b == infBandwidth
}

func (b Bandwidth) String() string {
	if b.IsInfinite() {
		return "inf"
	}
	return strconv.FormatFloat(b.Mbps(), 'f', 1, 64) + "Mbps"
}
