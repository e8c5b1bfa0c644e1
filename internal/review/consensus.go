package review

// ConsensusScore scores agreement between successful responses.
//
// No responses score 0 and a single response scores 1. Otherwise a keyword
// is in consensus when strictly more than half the responses mention it,
// and the score is consensus keywords over keywords mentioned at all
// (0 when nothing in the vocabulary is mentioned).
func ConsensusScore(responses []string, vocab Vocabulary) float64 {
	switch len(responses) {
	case 0:
		return 0.0
	case 1:
		return 1.0
	}

	counts := vocab.Counts(responses)
	if len(counts) == 0 {
		return 0.0
	}

	threshold := float64(len(responses)) / 2
	consensus := 0
	for _, count := range counts {
		if float64(count) > threshold {
			consensus++
		}
	}

	return float64(consensus) / float64(len(counts))
}
