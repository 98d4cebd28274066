package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	r := NewRouter(0.35)

	tests := []struct {
		name string
		text string
		want Type
	}{
		{name: "policy question", text: "How many leave days do I get per year?", want: PolicyQuestion},
		{name: "benefits question", text: "Does the health insurance cover my dependents?", want: PolicyQuestion},
		{name: "leave request", text: "I'd like to request leave from 2025-04-01 to 2025-04-05", want: LeaveRequest},
		{name: "vacation phrasing", text: "I want to take some time off next month", want: LeaveRequest},
		{name: "interview scheduling", text: "Schedule an interview with int-1 next week", want: InterviewScheduling},
		{name: "gibberish", text: "florble womp zzz", want: Unknown},
		{name: "empty", text: "   ", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Classify(tt.text, Context{})
			assert.Equal(t, tt.want, got.Type, "confidence=%f reason=%s", got.Confidence, got.Reason)
		})
	}
}

func TestClassifyGibberishHasZeroishConfidence(t *testing.T) {
	r := NewRouter(0.35)
	got := r.Classify("florble womp zzz", Context{})
	assert.Equal(t, Unknown, got.Type)
	assert.Less(t, got.Confidence, 0.35)
}

func TestClassifyStickiness(t *testing.T) {
	r := NewRouter(0.35)

	// A bare date continues a pending leave request
	got := r.Classify("2025-04-01 to 2025-04-05", Context{PendingFlow: LeaveRequest})
	assert.Equal(t, LeaveRequest, got.Type)
	assert.GreaterOrEqual(t, got.Confidence, 0.9)

	// A short reason fragment also continues it
	got = r.Classify("for a family event", Context{PendingFlow: LeaveRequest})
	assert.Equal(t, LeaveRequest, got.Type)

	// A full fresh question escapes the pending flow
	got = r.Classify("Actually, how many sick days does the policy give employees every calendar year?", Context{PendingFlow: LeaveRequest})
	assert.Equal(t, PolicyQuestion, got.Type)
}

func TestClassifyWithoutPendingFlowIgnoresContinuations(t *testing.T) {
	r := NewRouter(0.35)
	got := r.Classify("2025-04-01", Context{})
	assert.Equal(t, Unknown, got.Type)
}
