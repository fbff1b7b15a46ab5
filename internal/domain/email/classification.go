package email

import "strings"

type rule struct {
	outcome Outcome
	phrases []string
}

// rules are checked in order and the first matching group wins, even if a
// later group would also match. The bare "congratulations" phrase is broad on
// purpose; existing ledgers depend on it.
var rules = []rule{
	{
		outcome: OutcomeRejected,
		phrases: []string{"we regret to inform", "unfortunately", "not moving forward"},
	},
	{
		outcome: OutcomeInterview,
		phrases: []string{"schedule an interview", "invite you to interview", "looking forward to interviewing"},
	},
	{
		outcome: OutcomeOffer,
		phrases: []string{"offer you the position", "extend an offer", "congratulations on your offer", "congratulations"},
	},
}

// Classify maps body text to an outcome using ordered keyword rules.
func Classify(body string) Outcome {
	lower := strings.ToLower(body)

	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				return r.outcome
			}
		}
	}

	return OutcomeUnknown
}
