package domain

// Outcome of recording one activity event
const (
	OutcomeRecorded  = "RECORDED"
	OutcomeDuplicate = "DUPLICATE"
)
