package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinyland-inc/sojourner-relay/pkg/logger"
	"github.com/tinyland-inc/sojourner-relay/pkg/utils"
)

// The auto policy is the implicit-trust deployment mode: no confirmation, no
// form. The client name is derived from the conversation's name and the
// manifest is generated. A deployment runs either this policy or the
// interactive one, never both.

// DeriveClientName maps a conversation name like "uploads-acme" to the
// client "acme": the substring after the last dash, or the whole name when
// there is none.
func DeriveClientName(channelName string) string {
	if idx := strings.LastIndex(channelName, "-"); idx >= 0 {
		return channelName[idx+1:]
	}
	return channelName
}

// HandleFileSharedAuto stores a shared file immediately under the derived
// client name and reports the outcome. Fetch failures terminate with the
// download-failure message and no store attempt, same as the interactive
// policy.
func (w *Workflow) HandleFileSharedAuto(ctx context.Context, fileID, channelID string) error {
	channelName, err := w.conv.ChannelName(ctx, channelID)
	if err != nil {
		return fmt.Errorf("resolving channel name: %w", err)
	}

	// A channel name like "uploads-" derives an empty client, which would
	// store under the bare "/" prefix. Reject it before any bytes move.
	clientName := DeriveClientName(channelName)
	if err := utils.ValidateClientName(clientName); err != nil {
		logger.WarnCF("workflow", "unusable derived client name", map[string]any{
			"channel_name": channelName,
			"error":        err.Error(),
		})
		return w.conv.PostMessage(ctx, channelID, msgInvalidClientName(clientName))
	}

	filename, content, err := w.fetcher.Fetch(ctx, fileID)
	if err != nil {
		logger.ErrorCF("workflow", "file fetch failed", map[string]any{
			"file_id": fileID,
			"error":   err.Error(),
		})
		return w.conv.PostMessage(ctx, channelID, msgDownloadFailed)
	}

	manifest := fmt.Sprintf("File uploaded from Slack: %s", filename)
	outcome := w.store.Store(ctx, clientName, filename, content, manifest)
	logger.InfoCF("workflow", "auto store finished", map[string]any{
		"client":  clientName,
		"file":    filename,
		"outcome": outcome.String(),
	})

	return w.conv.PostMessage(ctx, channelID, OutcomeMessage(outcome, filename, clientName, manifest))
}
