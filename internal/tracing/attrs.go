package tracing

// Span names and attribute keys used for submissions.
const (
	SpanSubmit = "registration.submit"

	AttrSubmissionID = "submission.id"
	AttrCourse       = "registration.course"
	AttrState        = "registration.state"
	AttrEducation    = "registration.previous_education"
	AttrHostel       = "registration.hostel"
	AttrSubscribers  = "submission.subscribers"

	EventPublished = "submission.published"
)
