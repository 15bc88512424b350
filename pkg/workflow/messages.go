package workflow

import (
	"fmt"

	"github.com/tinyland-inc/sojourner-relay/pkg/sojourner"
)

const (
	msgDownloadFailed   = "Sorry, I couldn't download the file."
	msgExpired          = "This upload confirmation has expired or is invalid. Share the file again to retry."
	msgNoClientSelected = "No client was selected, so the upload was not attempted."
)

// ConfirmationText is the body of the confirmation prompt.
func ConfirmationText(filename string) string {
	return fmt.Sprintf("Do you want to upload `%s` to Sojourner?", filename)
}

func msgInvalidClientName(name string) string {
	if name == "" {
		return "Please provide a name for the new client; the upload was not attempted."
	}
	return fmt.Sprintf("`%s` is not a usable client name; the upload was not attempted.", name)
}

func msgRegistryFailed(name string) string {
	return fmt.Sprintf("Couldn't register client `%s`, so the upload was not attempted. Please try again.", name)
}

// OutcomeMessage maps every store outcome to its own user-facing message.
// The variants stay distinct on purpose: a collision, a transient failure and
// a rejected manifest call for different user actions.
func OutcomeMessage(o sojourner.Outcome, filename, clientName, manifest string) string {
	switch o {
	case sojourner.OutcomeSuccess:
		return fmt.Sprintf(
			"File `%s` has been successfully uploaded to Sojourner for client `%s`.\nManifest: `%s`",
			filename, clientName, manifest)
	case sojourner.OutcomeBlobExists:
		return fmt.Sprintf(
			"Failed to upload `%s` to Sojourner for `%s`. A file with this name already exists.",
			filename, clientName)
	case sojourner.OutcomeUploadError:
		return fmt.Sprintf(
			"Failed to upload `%s` to Sojourner for `%s` due to an upload error. Please try again later.",
			filename, clientName)
	case sojourner.OutcomeMetadataError:
		return fmt.Sprintf(
			"Failed to upload `%s` to Sojourner for `%s` due to a metadata error. Please check your manifest and try again.",
			filename, clientName)
	default:
		return fmt.Sprintf(
			"An unexpected error occurred while uploading `%s` to Sojourner for `%s`.",
			filename, clientName)
	}
}
