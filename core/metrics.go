package core

// Metrics records the business events of the services.
type Metrics interface {
	EnrollmentCreated()
	LessonCompleted(status string)
	ReviewMutated(op string)
	AggregateRecomputed(ok bool)
	RecomputeRetried(ok bool)
}

// NopMetrics discards every event.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) EnrollmentCreated()       {}
func (NopMetrics) LessonCompleted(string)   {}
func (NopMetrics) ReviewMutated(string)     {}
func (NopMetrics) AggregateRecomputed(bool) {}
func (NopMetrics) RecomputeRetried(bool)    {}
