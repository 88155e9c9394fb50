package knowledge

import (
	"math"
	"time"
)

// RecencyDecay implements spec section 3's recency_decay(last_used,
// decay_days): exp(-elapsed_days/decay_days), monotonically decreasing and
// bounded to [0,1]. decay_days <= 0 is treated as "no decay" (always 1.0)
// to keep the function total rather than dividing by zero.
func RecencyDecay(lastUsed, now time.Time, decayDays float64) float64 {
	if decayDays <= 0 {
		return 1.0
	}
	elapsedDays := now.Sub(lastUsed).Hours() / 24
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	v := math.Exp(-elapsedDays / decayDays)
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// argumentScore implements spec section 3's ArgumentUsage score:
// (freq/totalFreq)*0.6 + recency_decay*0.4.
func argumentScore(usage uint64, totalFreq uint64, lastUsed, now time.Time, decayDays float64) float64 {
	var freqNorm float64
	if totalFreq > 0 {
		freqNorm = float64(usage) / float64(totalFreq)
	}
	return freqNorm*0.6 + RecencyDecay(lastUsed, now, decayDays)*0.4
}

// sequenceScore uses the same freq/recency blend spec section 4.4 specifies
// for get_sequences_starting_with ("same freq/recency blend").
func sequenceScore(usage uint64, totalFreq uint64, lastUsed, now time.Time, decayDays float64) float64 {
	return argumentScore(usage, totalFreq, lastUsed, now, decayDays)
}
