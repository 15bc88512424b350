// Package workflow drives the upload negotiation: the multi-step
// conversation that starts when a file appears in a channel and ends with a
// typed Sojourner outcome reported back into that channel.
//
// The platform delivers each step as an independent event with no shared
// process state, so every emission encodes the session into the outbound UI
// element and every handler reconstructs it from the inbound payload. The
// workflow talks to the platform only through the Conversation and
// FileFetcher interfaces, which keeps it testable and platform-substitutable.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tinyland-inc/sojourner-relay/pkg/logger"
	"github.com/tinyland-inc/sojourner-relay/pkg/registry"
	"github.com/tinyland-inc/sojourner-relay/pkg/session"
	"github.com/tinyland-inc/sojourner-relay/pkg/sojourner"
	"github.com/tinyland-inc/sojourner-relay/pkg/utils"
)

// Identifiers shared between the workflow and the platform adapter. The
// platform echoes them back on interaction events.
const (
	ActionAccept        = "upload_file_yes"
	ActionDecline       = "upload_file_no"
	ActionClientSelect  = "client_name_select"
	ActionNewClientName = "new_client_input"
	ActionManifest      = "manifest_input"

	BlockConfirmActions = "upload_confirm_actions"
	BlockClientName     = "client_name_block"
	BlockNewClientName  = "new_client_block"
	BlockManifest       = "manifest_block"

	CallbackUploadModal = "sojourner_upload_modal"

	// NewClientOptionValue is the synthetic trailing option the workflow
	// appends to every suggestion response; selecting it routes the free-text
	// new-client field into effect.
	NewClientOptionValue = "__create_new_client__"
)

// Conversation is the outbound half of the chat platform boundary.
// DeleteMessage must treat "already gone" as success: an accept and a decline
// racing on the same prompt both try to remove it.
type Conversation interface {
	PostConfirmation(ctx context.Context, channelID, filename, token string) (messageID string, err error)
	UpdateConfirmation(ctx context.Context, channelID, messageID, filename, token string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	OpenMetadataForm(ctx context.Context, triggerID, token string) error
	PostMessage(ctx context.Context, channelID, text string) error
	ChannelName(ctx context.Context, channelID string) (string, error)
}

// FileFetcher retrieves a shared file's bytes from the platform.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) (filename string, content []byte, err error)
}

// Option is one autocomplete choice offered for the client-name field.
type Option struct {
	Label string
	Value string
}

// Submission carries the decoded fields of a metadata form submission.
type Submission struct {
	Token          string // session token from the form's private metadata
	SelectedClient string // value of the chosen autocomplete option
	NewClient      string // free-text field, honored only via the create-new option
	Manifest       string
}

// Workflow reacts to inbound platform events and performs the terminal
// store-and-report action. It holds no per-negotiation state.
type Workflow struct {
	conv         Conversation
	fetcher      FileFetcher
	store        sojourner.Client
	clients      *registry.Registry
	suggestLimit int
}

func New(conv Conversation, fetcher FileFetcher, store sojourner.Client, clients *registry.Registry, suggestLimit int) *Workflow {
	if suggestLimit <= 0 {
		suggestLimit = 20
	}
	return &Workflow{
		conv:         conv,
		fetcher:      fetcher,
		store:        store,
		clients:      clients,
		suggestLimit: suggestLimit,
	}
}

// HandleFileShared opens a negotiation: post the confirmation prompt with the
// session encoded into its buttons, then re-encode with the assigned message
// id and patch the prompt in place (the id is only known after the post).
func (w *Workflow) HandleFileShared(ctx context.Context, fileID, filename, channelID string) error {
	sess := session.Session{
		FileID:        fileID,
		ChannelID:     channelID,
		NegotiationID: uuid.NewString(),
	}

	messageID, err := w.conv.PostConfirmation(ctx, channelID, filename, session.Encode(sess))
	if err != nil {
		return fmt.Errorf("posting confirmation: %w", err)
	}

	sess.AnchorMessageID = messageID
	if err := w.conv.UpdateConfirmation(ctx, channelID, messageID, filename, session.Encode(sess)); err != nil {
		return fmt.Errorf("anchoring confirmation: %w", err)
	}

	logger.InfoCF("workflow", "negotiation opened", map[string]any{
		"negotiation": sess.NegotiationID,
		"file":        filename,
		"channel":     channelID,
	})
	return nil
}

// HandleDecline removes the confirmation prompt. Terminal; no message beyond
// the removal.
func (w *Workflow) HandleDecline(ctx context.Context, channelID, messageID string) error {
	return w.conv.DeleteMessage(ctx, channelID, messageID)
}

// HandleAccept decodes the session carried in the accept button and opens the
// metadata form. A token that no longer decodes is terminal: the user is told
// the confirmation expired and no form is opened.
func (w *Workflow) HandleAccept(ctx context.Context, triggerID, channelID, token string) error {
	sess, err := session.Decode(token)
	if err != nil {
		logger.WarnCF("workflow", "accept with undecodable token", map[string]any{"error": err.Error()})
		return w.conv.PostMessage(ctx, channelID, msgExpired)
	}

	logger.InfoCF("workflow", "upload accepted", map[string]any{
		"negotiation": sess.NegotiationID,
	})
	return w.conv.OpenMetadataForm(ctx, triggerID, token)
}

// SuggestClients answers an autocomplete query for the client-name field: the
// registry's ranked matches plus the trailing create-new escape hatch.
func (w *Workflow) SuggestClients(query string) []Option {
	names := w.clients.Search(query, w.suggestLimit)

	opts := make([]Option, 0, len(names)+1)
	for _, n := range names {
		opts = append(opts, Option{Label: n, Value: n})
	}
	opts = append(opts, Option{Label: "Create a new client…", Value: NewClientOptionValue})
	return opts
}

// HandleSubmission runs the terminal half of an accepted negotiation:
// resolve the client name, register it if new, fetch the file, store it, and
// report the outcome into the originating channel.
func (w *Workflow) HandleSubmission(ctx context.Context, sub Submission) error {
	sess, err := session.Decode(sub.Token)
	if err != nil {
		// No channel to report into without a session.
		return fmt.Errorf("submission with undecodable token: %w", err)
	}

	clientName, terminalMsg := w.resolveClient(sub)
	if terminalMsg != "" {
		w.finish(ctx, sess, terminalMsg)
		return nil
	}

	filename, content, err := w.fetcher.Fetch(ctx, sess.FileID)
	if err != nil {
		logger.ErrorCF("workflow", "file fetch failed", map[string]any{
			"negotiation": sess.NegotiationID,
			"file_id":     sess.FileID,
			"error":       err.Error(),
		})
		w.finish(ctx, sess, msgDownloadFailed)
		return nil
	}

	outcome := w.store.Store(ctx, clientName, filename, content, sub.Manifest)
	logger.InfoCF("workflow", "store finished", map[string]any{
		"negotiation": sess.NegotiationID,
		"client":      clientName,
		"file":        filename,
		"outcome":     outcome.String(),
	})

	w.finish(ctx, sess, OutcomeMessage(outcome, filename, clientName, sub.Manifest))
	return nil
}

// resolveClient picks the destination client name from the submission and,
// for the create-new path, registers it durably before any store attempt.
// A non-empty terminal message means the negotiation ends without a store.
func (w *Workflow) resolveClient(sub Submission) (clientName, terminalMsg string) {
	if sub.SelectedClient != NewClientOptionValue {
		if sub.SelectedClient == "" {
			return "", msgNoClientSelected
		}
		return sub.SelectedClient, ""
	}

	name := strings.TrimSpace(sub.NewClient)
	if err := utils.ValidateClientName(name); err != nil {
		return "", msgInvalidClientName(name)
	}

	// Register speculatively, not transactionally with the store call: a
	// failed upload still leaves the name available for the retry.
	if err := w.clients.Add(name); err != nil {
		logger.ErrorCF("registry", "persisting new client failed", map[string]any{
			"client": name,
			"error":  err.Error(),
		})
		return "", msgRegistryFailed(name)
	}
	return name, ""
}

// finish posts the terminal message and removes the confirmation prompt if it
// is still visible.
func (w *Workflow) finish(ctx context.Context, sess session.Session, text string) {
	if err := w.conv.PostMessage(ctx, sess.ChannelID, text); err != nil {
		logger.ErrorCF("workflow", "posting outcome failed", map[string]any{"error": err.Error()})
	}
	if sess.AnchorMessageID == "" {
		return
	}
	if err := w.conv.DeleteMessage(ctx, sess.ChannelID, sess.AnchorMessageID); err != nil {
		logger.WarnCF("workflow", "removing confirmation failed", map[string]any{"error": err.Error()})
	}
}
