package batch

// FaultPolicy decides, per item-processing failure, whether the item is
// retried, skipped, or aborts the step. It generalizes the plain skip and
// retry variants: a failure is first retried up to the retry limit, then
// skipped while the cumulative skip count stays within the skip limit, and
// otherwise aborts the step.
type FaultPolicy struct {
	retryLimit int // re-invocations allowed per item
	skipLimit  int // cumulative skips allowed across the step; <0 disables skipping
}

// NoTolerance aborts the step on the first failure.
func NoTolerance() FaultPolicy {
	return FaultPolicy{skipLimit: -1}
}

// SkipPolicy drops failing items until more than limit items have been
// skipped, then aborts.
func SkipPolicy(limit int) FaultPolicy {
	return FaultPolicy{skipLimit: limit}
}

// RetryPolicy re-invokes the processor up to limit times per item, then
// aborts the step.
func RetryPolicy(limit int) FaultPolicy {
	return FaultPolicy{retryLimit: limit, skipLimit: -1}
}

// RetryThenSkip combines both: retries times per item, then the item is
// skipped as long as no more than skips items have been dropped.
func RetryThenSkip(retries, skips int) FaultPolicy {
	return FaultPolicy{retryLimit: retries, skipLimit: skips}
}

// RetryLimit returns the number of re-invocations allowed per item.
func (p FaultPolicy) RetryLimit() int {
	return p.retryLimit
}

// CanSkip reports whether one more item may be skipped given the number
// already skipped in this step.
func (p FaultPolicy) CanSkip(skipped int) bool {
	return p.skipLimit >= 0 && skipped < p.skipLimit
}

// SkipsEnabled reports whether the policy permits skipping at all.
func (p FaultPolicy) SkipsEnabled() bool {
	return p.skipLimit >= 0
}
