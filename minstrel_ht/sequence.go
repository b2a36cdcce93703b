package minstrel_ht

import "github.com/sagernet/sing-minstrel/rate"

// sampleSequence interleaves the categories 3:2:1 in favour of incremental steps.
var sampleSequence = [...]SampleType{
	SampleIncremental,
	SampleJump,
	SampleIncremental,
	SampleJump,
	SampleIncremental,
	SampleSlow,
}

// nextSampleRate consumes a candidate from the category at the current
// sequence position and advances the position.
func (s *Station) nextSampleRate() (rate.ID, SampleType) {
	sampleType := sampleSequence[s.sampleSeq]
	s.sampleSeq = (s.sampleSeq + 1) % len(sampleSequence)
	return s.drawSample(sampleType), sampleType
}

// drawSample consumes the first remaining entry of the snapshot of sampleType.
func (s *Station) drawSample(sampleType SampleType) rate.ID {
	current := &s.sample[sampleType].current
	for i, id := range current {
		if !id.IsValid() {
			continue
		}
		current[i] = rate.None
		return id
	}
	return rate.None
}
