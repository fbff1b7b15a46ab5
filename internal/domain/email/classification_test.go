package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Outcome
	}{
		{"regret", "We regret to inform you that the role was filled.", OutcomeRejected},
		{"unfortunately", "Unfortunately we went with another candidate.", OutcomeRejected},
		{"not moving forward", "We are NOT MOVING FORWARD with your application.", OutcomeRejected},
		{"schedule interview", "We would like to schedule an interview next week.", OutcomeInterview},
		{"invite", "We invite you to interview with the team.", OutcomeInterview},
		{"looking forward", "Looking forward to interviewing you!", OutcomeInterview},
		{"offer position", "We are pleased to offer you the position.", OutcomeOffer},
		{"extend offer", "We'd like to extend an offer.", OutcomeOffer},
		{"congratulations on offer", "Congratulations on your offer!", OutcomeOffer},
		{"bare congratulations", "Congratulations, your application was received.", OutcomeOffer},
		{"nothing", "Thank you for applying. We will review your application.", OutcomeUnknown},
		{"empty", "", OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.body))
		})
	}
}

func TestClassify_RejectedWinsOverLaterGroups(t *testing.T) {
	bodies := []string{
		"Unfortunately we cannot schedule an interview.",
		"We wanted to extend an offer but unfortunately the budget was cut.",
		"Congratulations on reaching the final round. Unfortunately we chose someone else.",
		"We'd love to invite you to interview, unfortunately the position closed.",
	}

	for _, body := range bodies {
		assert.Equal(t, OutcomeRejected, Classify(body), body)
	}
}

func TestClassify_InterviewWinsOverOffer(t *testing.T) {
	assert.Equal(t, OutcomeInterview, Classify("Congratulations! We'd like to schedule an interview."))
}

func TestEmail_ClassifyAndLedgerRow(t *testing.T) {
	e := NewEmail("id-1", "Mon, 1 Jan 2024 10:00:00 +0000", "hr@acme.io", "Your application", "We regret to inform you", "We regret")

	assert.Equal(t, OutcomeRejected, e.Classify())
	assert.Equal(t, []string{"Mon, 1 Jan 2024 10:00:00 +0000", "hr@acme.io", "Your application", "We regret", "Rejected"}, e.LedgerRow())
	assert.Len(t, LedgerHeader, len(e.LedgerRow()))
}

func TestOutcome_IsValid(t *testing.T) {
	for _, o := range Outcomes {
		assert.True(t, o.IsValid(), o)
	}
	assert.False(t, Outcome("Ghosted").IsValid())
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a")
	s.Add("c")
	s.Add("a")

	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("z"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())
}
