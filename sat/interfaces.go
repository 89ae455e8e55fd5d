package sat

// ClauseDeletionPolicy decides which learned clauses survive a database
// reduction pass. The default keeps tier-0 (glue) clauses unconditionally
// and reduces tier 1/2 by age.
type ClauseDeletionPolicy interface {
	Named
	// ShouldDelete is asked once per learned clause during reduceDB, with
	// the clause's rank in learning order (0 = oldest).
	ShouldDelete(c *Clause, rank, total int) bool
}

// tieredDeletionPolicy keeps glue (tier-0) clauses and every other clause
// ranked in the older half of the learned list; tiers 1 and 2 are treated
// alike.
type tieredDeletionPolicy struct{}

func (tieredDeletionPolicy) Name() string { return "tiered-lbd" }

func (tieredDeletionPolicy) ShouldDelete(c *Clause, rank, total int) bool {
	if c.Tier == 0 {
		return false
	}
	return rank >= total/2
}
