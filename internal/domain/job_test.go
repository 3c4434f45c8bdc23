package domain

import (
	"errors"
	"testing"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from  JobStatus
		event JobEvent
		want  JobStatus
		ok    bool
	}{
		{JobStatusOpen, EventOfferAccepted, JobStatusInProgress, true},
		{JobStatusReopened, EventOfferAccepted, JobStatusInProgress, true},
		{JobStatusOpen, EventClientClosed, JobStatusClosed, true},
		{JobStatusReopened, EventClientClosed, JobStatusClosed, true},
		{JobStatusInProgress, EventClientClosed, JobStatusClosed, true},
		{JobStatusClosed, EventClientReopened, JobStatusReopened, true},
		{JobStatusCompleted, EventClientReopened, JobStatusReopened, true},
		{JobStatusInProgress, EventProfessionalCompleted, JobStatusCompleted, true},

		{JobStatusInProgress, EventOfferAccepted, "", false},
		{JobStatusClosed, EventOfferAccepted, "", false},
		{JobStatusCompleted, EventClientClosed, "", false},
		{JobStatusClosed, EventClientClosed, "", false},
		{JobStatusOpen, EventClientReopened, "", false},
		{JobStatusReopened, EventClientReopened, "", false},
		{JobStatusInProgress, EventClientReopened, "", false},
		{JobStatusOpen, EventProfessionalCompleted, "", false},
		{JobStatusCompleted, EventProfessionalCompleted, "", false},
		{JobStatusOpen, JobEvent("bogus"), "", false},
	}

	for _, tc := range cases {
		got, err := NextStatus(tc.from, tc.event)
		if tc.ok {
			if err != nil {
				t.Errorf("%s + %s: unexpected error %v", tc.from, tc.event, err)
				continue
			}
			if got != tc.want {
				t.Errorf("%s + %s = %s, want %s", tc.from, tc.event, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s + %s: err = %v, want ErrInvalidTransition", tc.from, tc.event, err)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []JobStatus{JobStatusOpen, JobStatusReopened} {
		if !s.AcceptingOffers() {
			t.Errorf("%s should accept offers", s)
		}
		if s.Reviewable() {
			t.Errorf("%s should not be reviewable", s)
		}
	}
	for _, s := range []JobStatus{JobStatusInProgress, JobStatusCompleted, JobStatusClosed} {
		if s.AcceptingOffers() {
			t.Errorf("%s should not accept offers", s)
		}
		if !s.Reviewable() {
			t.Errorf("%s should be reviewable", s)
		}
	}
	if JobStatus("archived").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestTransitionSourcesCoverEveryRule(t *testing.T) {
	for event, rule := range jobTransitions {
		sources := TransitionSources(event)
		if len(sources) != len(rule.from) {
			t.Errorf("%s: sources = %v, want %v", event, sources, rule.from)
		}
	}
	if TransitionSources(JobEvent("bogus")) != nil {
		t.Error("unknown event returned sources")
	}
}
