package minstrel_ht

import "strconv"

const probabilityShift = 16

// Probability is a success probability in fixed point.
type Probability uint32

const ProbabilityOne Probability = 1 << probabilityShift

// FracProbability returns num/den as a Probability.
func FracProbability(num, den uint32) Probability {
	if den == 0 {
		return 0
	}
	return Probability(uint64(num) << probabilityShift / uint64(den))
}

func (p Probability) Float() float64 {
	return float64(p) / float64(ProbabilityOne)
}

func (p Probability) String() string {
	return strconv.FormatFloat(p.Float()*100, 'f', 1, 64) + "%"
}

// ewma blends cur into avg, keeping level percent of the old value.
func ewma(avg, cur Probability, level int) Probability {
	return Probability((uint64(avg)*uint64(level) + uint64(cur)*uint64(100-level)) / 100)
}
