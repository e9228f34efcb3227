// Package scraper provides the batch collector that drives a simulated
// profile collection run.
//
// For every identifier, in input order, the Collector:
//   - takes a rotated header set
//   - waits for the request budget, when one is configured
//   - waits for the delay policy
//   - generates the record, optionally retrying failed generations
//   - appends the record and logs the outcome
//
// A failure or panic in any step skips that identifier and is logged; it
// never aborts the run. The collector moves Idle -> Running -> Completed and
// each Collect call starts a new run with its own run id.
//
// Usage:
//
//	rng := rand.New(rand.NewPCG(seed, seed))
//	delay, err := ratelimit.NewDelayPolicy(2, 5, rng)
//	if err != nil {
//	    return err
//	}
//	c := scraper.New(headers.NewProvider(rng), delay, generator.New(rng), log)
//	records := c.Collect(identifiers)
//	stats := c.Statistics()
package scraper
