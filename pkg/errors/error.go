// package errors contains domain errors that the pipeline stages return and
// that the orchestrator inspects to decide on logging and user-facing
// messaging. This is implemented as a separate package in order to avoid
// cycle import errors.
package errors

import "errors"

// The following errors classify the failure of each pipeline stage. Stages
// wrap them with %w so the orchestrator can match with errors.Is while the
// wrapped text keeps the operator-facing detail.
var (
	// ErrLocationLookup is used when the platform's file metadata endpoint
	// responds with a non-success status or a malformed body.
	ErrLocationLookup = errors.New("file location lookup failed")
	// ErrDownload is used when streaming the remote file to staging storage
	// fails.
	ErrDownload = errors.New("file download failed")
	// ErrTranscoderBinaryMissing is used when neither the bundled nor the
	// search-path transcoder binary exists.
	ErrTranscoderBinaryMissing = errors.New("transcoder binary not found")
	// ErrTranscode is used when the transcoder process runs but exits with a
	// non-zero status.
	ErrTranscode = errors.New("transcoding failed")
	// ErrUpload is used when pushing the transcoded artifact to the blob
	// store fails.
	ErrUpload = errors.New("blob upload failed")
	// ErrLinkIssue is used when the blob store cannot sign a download URL.
	ErrLinkIssue = errors.New("link issuance failed")
	// ErrNotifyTimeout is used when the backend submission times out or the
	// transport fails.
	ErrNotifyTimeout = errors.New("backend submission timed out")
	// ErrNotifyRejected is used when the backend answers with anything other
	// than 202.
	ErrNotifyRejected = errors.New("backend rejected submission")
	// ErrNotFound is used when a resource doesn't exist.
	ErrNotFound = errors.New("not found")
)
