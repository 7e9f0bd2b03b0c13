package constants

// JobStatus is the canonical status for a document as it moves through the pipeline.
type JobStatus string

// Stable values (store these exact strings).
const (
	JobStatusQueued     JobStatus = "QUEUED"     // queued for processing
	JobStatusRunning    JobStatus = "RUNNING"    // in progress
	JobStatusExtracted  JobStatus = "EXTRACTED"  // stage 1 completed (text available)
	JobStatusReconciled JobStatus = "RECONCILED" // stage 2 completed (record produced)
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure
)
