package sojourner

// Outcome is the typed result of a store attempt. Exactly one value is
// produced per attempt and each variant maps to its own user-facing message;
// collapsing these into a bool would lose the distinction between a name
// collision, a transient backend failure and a rejected manifest, which call
// for different user actions.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBlobExists
	OutcomeUploadError
	OutcomeMetadataError
	OutcomeUnknown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlobExists:
		return "blob_exists"
	case OutcomeUploadError:
		return "upload_error"
	case OutcomeMetadataError:
		return "metadata_error"
	default:
		return "unknown_error"
	}
}
