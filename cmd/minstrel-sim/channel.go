package main

import (
	"github.com/sagernet/sing-minstrel/rate"

	"golang.org/x/exp/rand"
)

const (
	maxSuccessProbability = 0.97
	cleanCapacityShare    = 0.8
	deadCapacityShare     = 1.2
)

// channel decides the fate of each attempt from the rate's nominal bitrate
// relative to the current capacity.
type channel struct {
	table    *rate.Table
	random   *rand.Rand
	capacity rate.Bandwidth
}

func newChannel(table *rate.Table, seed uint64) *channel {
	return &channel{
		table:  table,
		random: rand.New(rand.NewSource(seed)),
	}
}

func (c *channel) successProbability(id rate.ID) float64 {
	share := float64(c.table.Bitrate(id)) / float64(c.capacity)
	switch {
	case share <= cleanCapacityShare:
		return maxSuccessProbability
	case share >= deadCapacityShare:
		return 0
	default:
		return maxSuccessProbability * (deadCapacityShare - share) / (deadCapacityShare - cleanCapacityShare)
	}
}

func (c *channel) attempt(id rate.ID) bool {
	return c.random.Float64() < c.successProbability(id)
}
