package email

// Outcome is what a message says about the state of an application.
type Outcome string

const (
	OutcomeRejected  Outcome = "Rejected"
	OutcomeInterview Outcome = "Interview"
	OutcomeOffer     Outcome = "Offer"
	OutcomeUnknown   Outcome = "Unknown/No Decision"
)

// Outcomes lists every outcome in classification priority order.
var Outcomes = []Outcome{OutcomeRejected, OutcomeInterview, OutcomeOffer, OutcomeUnknown}

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeRejected, OutcomeInterview, OutcomeOffer, OutcomeUnknown:
		return true
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}
