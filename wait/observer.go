package wait

import "time"

// Outcome is how a wait ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// Observer receives poll and wait events, typically to export metrics.
type Observer interface {
	// ObservePoll is called after every condition evaluation.
	ObservePoll(description string, elapsed time.Duration, err error)
	// ObserveWait is called once when a wait ends.
	ObserveWait(description string, outcome Outcome, elapsed time.Duration, attempts int)
}

type nopObserver struct{}

func (nopObserver) ObservePoll(string, time.Duration, error) {}
func (nopObserver) ObserveWait(string, Outcome, time.Duration, int) {}

// Observers fans events out to every non-nil observer.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return nopObserver{}
	case 1:
		return list[0]
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) ObservePoll(description string, elapsed time.Duration, err error) {
	for _, o := range m {
		o.ObservePoll(description, elapsed, err)
	}
}

func (m multiObserver) ObserveWait(description string, outcome Outcome, elapsed time.Duration, attempts int) {
	for _, o := range m {
		o.ObserveWait(description, outcome, elapsed, attempts)
	}
}
