package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIDZeroValueIsNone(t *testing.T) {
	var id ID
	require.False(t, id.IsValid())
	require.Equal(t, None, id)
	require.Equal(t, "none", id.String())

	id = NewID(0, 0)
	require.True(t, id.IsValid())
	require.NotEqual(t, None, id)
	require.Equal(t, NewID(0, 0), id)
	require.Equal(t, "0/0", id.String())

	id = NewID(17, 9)
	require.Equal(t, 17, id.Group())
	require.Equal(t, 9, id.Index())
}

func TestDefaultTableLayout(t *testing.T) {
	table := DefaultTable()
	require.Equal(t, 3+16+24, table.GroupCount())
	require.Equal(t, KindOFDM, table.GroupInfo(BasicGroup).Kind)
	require.Equal(t, uint16(0xff), table.ValidMask(BasicGroup))
	require.Equal(t, uint16(0xf), table.ValidMask(1))
	require.Equal(t, uint16(0xe), table.ValidMask(2))
}

func TestDurationsShrinkWithIndex(t *testing.T) {
	table := DefaultTable()
	for group := 0; group < table.GroupCount(); group++ {
		var last time.Duration
		mask := table.ValidMask(group)
		for index := 0; index < MaxGroupRates; index++ {
			if mask&(1<<uint(index)) == 0 {
				continue
			}
			duration := table.Duration(NewID(group, index))
			require.Positive(t, duration)
			if last != 0 {
				require.LessOrEqual(t, duration, last, "group %s index %d", table.GroupInfo(group), index)
			}
			last = duration
		}
	}
}

func TestKnownBitrates(t *testing.T) {
	table := DefaultTable()
	require.Equal(t, 54*MBitsPerSecond, table.Bitrate(NewID(BasicGroup, 7)))
	require.Equal(t, 11*MBitsPerSecond, table.Bitrate(NewID(1, 3)))

	var ht20 int
	for group := 0; group < table.GroupCount(); group++ {
		info := table.GroupInfo(group)
		if info.Kind == KindHT && info.Streams == 1 && info.Width == Width20 && !info.ShortGI {
			ht20 = group
		}
	}
	require.Equal(t, 65*MBitsPerSecond, table.Bitrate(NewID(ht20, 7)))
	require.Equal(t, "HT20-1ss MCS7", table.Name(NewID(ht20, 7)))
}

func TestVHT20WithoutMCS9(t *testing.T) {
	table := DefaultTable()
	for group := 0; group < table.GroupCount(); group++ {
		info := table.GroupInfo(group)
		if info.Kind != KindVHT || info.Width != Width20 {
			continue
		}
		mcs9 := table.ValidMask(group)&(1<<9) != 0
		require.Equal(t, info.Streams == 3, mcs9, "%s", info)
	}
}

func TestPeerMasks(t *testing.T) {
	table := DefaultTable()
	peer, err := NewPeer(table, PeerConfig{HT: true, Streams: 2, Width: Width40, ShortGI: true})
	require.NoError(t, err)
	for group := 0; group < peer.GroupCount(); group++ {
		info := peer.GroupInfo(group)
		supported := peer.SupportedMask(group) != 0
		switch info.Kind {
		case KindOFDM:
			require.True(t, supported)
		case KindCCK, KindVHT:
			require.False(t, supported, "%s", info)
		case KindHT:
			require.Equal(t, info.Streams <= 2, supported, "%s", info)
		}
	}
	require.True(t, Supported(peer, NewID(BasicGroup, 3)))
	require.False(t, Supported(peer, None))
	require.False(t, Supported(peer, NewID(1, 0)))
}

func TestPeerDegradesToBasicGroup(t *testing.T) {
	peer, err := NewPeer(DefaultTable(), PeerConfig{})
	require.NoError(t, err)
	for group := 0; group < peer.GroupCount(); group++ {
		peer.SetSupported(group, 0)
	}
	require.Equal(t, uint16(0xff), peer.SupportedMask(BasicGroup))
}

func TestPeerConfigValidate(t *testing.T) {
	_, err := NewPeer(DefaultTable(), PeerConfig{HT: true, Streams: 5})
	require.Error(t, err)
	_, err = NewPeer(DefaultTable(), PeerConfig{HT: true, Streams: 1, Width: Width80})
	require.Error(t, err)
	_, err = NewPeer(DefaultTable(), PeerConfig{HT: true, Streams: 1, Width: 30})
	require.Error(t, err)
}

func TestTableOutOfRange(t *testing.T) {
	table := DefaultTable()
	for _, id := range []ID{None, NewID(0, 12), NewID(table.GroupCount(), 0)} {
		require.Zero(t, table.Duration(id))
		require.Zero(t, table.Bitrate(id))
		require.Equal(t, "none", table.Name(id))
	}
}

func TestBandwidthFromDelta(t *testing.T) {
	require.Equal(t, 160*MBitsPerSecond, BandwidthFromDelta(1200, 60*time.Microsecond))
	require.True(t, BandwidthFromDelta(1200, 0).IsInfinite())
	require.Equal(t, "160.0Mbps", (160 * MBitsPerSecond).String())
}
