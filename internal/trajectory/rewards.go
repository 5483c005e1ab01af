package trajectory

import api "github.com/agentbed/testbed/api/v1alpha1"

// SummarizeRewards aggregates the signed reward annotations over a
// trajectory. Total is the plain sum, Positive sums only the positive
// entries, Penalties holds the absolute value of the negative ones, so
// Total == Positive - Penalties by construction.
func SummarizeRewards(messages []api.Message) api.RewardSummary {
	var summary api.RewardSummary
	for _, m := range messages {
		if m.Reward == nil {
			continue
		}
		r := *m.Reward
		summary.Total += r
		if r > 0 {
			summary.Positive += r
		} else {
			summary.Penalties += -r
		}
	}
	return summary
}
