package srs

import "github.com/phrazzld/kioku/internal/domain"

// easeDelta is the SM-2 ease adjustment for a successful review, in
// hundredths: 10 - (5-q)*(8 + (5-q)*2). Quality 5 adds 10, 4 adds nothing and
// 3 subtracts 14.
func easeDelta(quality int) int {
	miss := domain.MaxQuality - quality
	return 10 - miss*(8+miss*2)
}

// calculateNextEaseFactor returns the ease after a review, never below the
// configured minimum.
func calculateNextEaseFactor(current, quality int, params *Params) int {
	var next int
	if quality < params.PassingQuality {
		next = current - params.FailEasePenalty
	} else {
		next = current + easeDelta(quality)
	}
	if next < params.MinEaseFactor {
		next = params.MinEaseFactor
	}
	return next
}

// calculateNextInterval returns the interval in days after a review.
//
// A failure resets to one day. The first success also yields one day;
// afterwards the prior interval is scaled by nextEase/EaseDivisor and rounded
// half up, using integer arithmetic only.
func calculateNextInterval(prior, nextEase, quality int, params *Params) int {
	if quality < params.PassingQuality || prior == 0 {
		return 1
	}

	num := int64(prior) * int64(nextEase)
	den := int64(params.EaseDivisor)
	next := (2*num + den) / (2 * den)

	if next < 1 {
		return 1
	}
	if next > int64(params.MaxInterval) {
		return params.MaxInterval
	}
	return int(next)
}

// calculateNextStatus applies at most one status transition per review.
// Failures send reviewing and burned items back to learning; successes promote
// one stage when the new interval reaches that stage's threshold.
func calculateNextStatus(current domain.ProgressStatus, nextInterval, quality int, params *Params) domain.ProgressStatus {
	if quality < params.PassingQuality {
		return domain.StatusLearning
	}

	switch current {
	case domain.StatusNew:
		return domain.StatusLearning
	case domain.StatusLearning:
		if nextInterval >= params.ReviewingInterval {
			return domain.StatusReviewing
		}
	case domain.StatusReviewing:
		if nextInterval >= params.BurnedInterval {
			return domain.StatusBurned
		}
	}
	return current
}

// schedule is the pure scheduling function behind Service.Schedule.
func schedule(quality int, prior domain.ProgressState, params *Params) domain.ProgressState {
	ease := calculateNextEaseFactor(prior.EaseFactor, quality, params)
	interval := calculateNextInterval(prior.Interval, ease, quality, params)

	return domain.ProgressState{
		Interval:   interval,
		EaseFactor: ease,
		Status:     calculateNextStatus(prior.Status, interval, quality, params),
	}
}
