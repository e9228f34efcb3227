// Package ratelimit paces simulated requests.
//
// DelayPolicy draws a uniform random wait from a [min, max] interval in
// seconds and blocks for it before each request. The random source is
// injected so that a fixed seed yields a reproducible sequence of waits.
//
// TokenBucket is an optional request budget. It holds a fixed number of
// tokens that are refilled after each period; Wait blocks until a token is
// available.
//
// Usage:
//
//	rng := rand.New(rand.NewPCG(42, 42))
//	delay, err := ratelimit.NewDelayPolicy(2, 5, rng)
//	if err != nil {
//	    return err // config error
//	}
//	waited := delay.Wait()
//
//	// 50 requests per hour
//	budget := ratelimit.NewHourlyBudget(50)
//	budget.Wait()
package ratelimit
