package channels

import (
	"context"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/tinyland-inc/sojourner-relay/pkg/logger"
	"github.com/tinyland-inc/sojourner-relay/pkg/workflow"
)

// Upload policies. A deployment runs exactly one; the two are never blended
// within a single workflow.
const (
	PolicyInteractive = "interactive"
	PolicyAuto        = "auto"
)

// SlackChannel consumes Socket Mode envelopes and dispatches them to the
// workflow. Every envelope is handled in its own goroutine and runs to a
// terminal outcome; no state is shared between envelopes beyond the session
// tokens the platform echoes back.
type SlackChannel struct {
	*BaseChannel

	api    *slack.Client
	socket *socketmode.Client
	wf     *workflow.Workflow
	policy string
}

var _ Channel = (*SlackChannel)(nil)

func NewSlackChannel(botToken, appToken, policy string) *SlackChannel {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &SlackChannel{
		BaseChannel: NewBaseChannel("slack"),
		api:         api,
		socket:      socketmode.New(api),
		policy:      policy,
	}
}

// API exposes the underlying client so the gateway can build the
// conversation and fetcher adapters over the same connection.
func (c *SlackChannel) API() *slack.Client {
	return c.api
}

// SetWorkflow attaches the upload workflow. The workflow is built after the
// channel because its conversation adapter rides on the channel's client,
// so attachment happens before Start.
func (c *SlackChannel) SetWorkflow(wf *workflow.Workflow) {
	c.wf = wf
}

func (c *SlackChannel) Start(ctx context.Context) error {
	c.SetRunning(true)
	go func() {
		if err := c.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorCF("slack", "socket mode stopped", map[string]any{"error": err.Error()})
		}
	}()
	go c.eventLoop(ctx)
	logger.InfoCF("slack", "channel started", map[string]any{"policy": c.policy})
	return nil
}

func (c *SlackChannel) Stop(ctx context.Context) error {
	c.SetRunning(false)
	return nil
}

func (c *SlackChannel) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.socket.Events:
			if !ok {
				return
			}
			c.dispatch(ctx, evt)
		}
	}
}

func (c *SlackChannel) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnected:
		logger.InfoC("slack", "socket mode connected")

	case socketmode.EventTypeConnectionError:
		logger.WarnC("slack", "socket mode connection error")

	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		c.socket.Ack(*evt.Request)
		if apiEvent.Type != slackevents.CallbackEvent {
			return
		}
		if shared, ok := apiEvent.InnerEvent.Data.(*slackevents.FileSharedEvent); ok {
			go c.handleFileShared(ctx, shared)
		}

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		switch callback.Type {
		case slack.InteractionTypeBlockActions:
			c.socket.Ack(*evt.Request)
			go c.handleBlockActions(ctx, callback)
		case slack.InteractionTypeBlockSuggestion:
			// Autocomplete must answer within the envelope's deadline, so
			// the options ride in the ack itself.
			c.socket.Ack(*evt.Request, c.suggestionResponse(callback))
		case slack.InteractionTypeViewSubmission:
			c.socket.Ack(*evt.Request)
			go c.handleViewSubmission(ctx, callback)
		}
	}
}

func (c *SlackChannel) handleFileShared(ctx context.Context, ev *slackevents.FileSharedEvent) {
	if c.policy == PolicyAuto {
		if err := c.wf.HandleFileSharedAuto(ctx, ev.FileID, ev.ChannelID); err != nil {
			logger.ErrorCF("slack", "auto upload failed", map[string]any{
				"file_id": ev.FileID,
				"error":   err.Error(),
			})
		}
		return
	}

	info, _, _, err := c.api.GetFileInfoContext(ctx, ev.FileID, 0, 0)
	if err != nil {
		logger.ErrorCF("slack", "resolving shared file failed", map[string]any{
			"file_id": ev.FileID,
			"error":   err.Error(),
		})
		return
	}

	if err := c.wf.HandleFileShared(ctx, ev.FileID, info.Name, ev.ChannelID); err != nil {
		logger.ErrorCF("slack", "opening negotiation failed", map[string]any{
			"file_id": ev.FileID,
			"error":   err.Error(),
		})
	}
}

func (c *SlackChannel) handleBlockActions(ctx context.Context, callback slack.InteractionCallback) {
	for _, action := range callback.ActionCallback.BlockActions {
		switch action.ActionID {
		case workflow.ActionAccept:
			if err := c.wf.HandleAccept(ctx, callback.TriggerID, callback.Channel.ID, action.Value); err != nil {
				logger.ErrorCF("slack", "accept failed", map[string]any{"error": err.Error()})
			}
		case workflow.ActionDecline:
			if err := c.wf.HandleDecline(ctx, callback.Channel.ID, callback.Message.Timestamp); err != nil {
				logger.ErrorCF("slack", "decline failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

func (c *SlackChannel) suggestionResponse(callback slack.InteractionCallback) slack.OptionsResponse {
	if callback.ActionID != workflow.ActionClientSelect {
		return slack.OptionsResponse{}
	}
	return optionsResponse(c.wf.SuggestClients(callback.Value))
}

func (c *SlackChannel) handleViewSubmission(ctx context.Context, callback slack.InteractionCallback) {
	if callback.View.CallbackID != workflow.CallbackUploadModal || callback.View.State == nil {
		return
	}

	values := callback.View.State.Values
	sub := workflow.Submission{
		Token:          callback.View.PrivateMetadata,
		SelectedClient: values[workflow.BlockClientName][workflow.ActionClientSelect].SelectedOption.Value,
		NewClient:      values[workflow.BlockNewClientName][workflow.ActionNewClientName].Value,
		Manifest:       values[workflow.BlockManifest][workflow.ActionManifest].Value,
	}

	if err := c.wf.HandleSubmission(ctx, sub); err != nil {
		logger.ErrorCF("slack", "submission failed", map[string]any{"error": err.Error()})
	}
}

// SlackConversation implements workflow.Conversation over the Web API.
type SlackConversation struct {
	api *slack.Client
}

var _ workflow.Conversation = (*SlackConversation)(nil)

func NewSlackConversation(api *slack.Client) *SlackConversation {
	return &SlackConversation{api: api}
}

func (c *SlackConversation) PostConfirmation(ctx context.Context, channelID, filename, token string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(workflow.ConfirmationText(filename), false),
		slack.MsgOptionBlocks(confirmationBlocks(filename, token)...),
	)
	return ts, err
}

func (c *SlackConversation) UpdateConfirmation(ctx context.Context, channelID, messageID, filename, token string) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, messageID,
		slack.MsgOptionText(workflow.ConfirmationText(filename), false),
		slack.MsgOptionBlocks(confirmationBlocks(filename, token)...),
	)
	return err
}

// DeleteMessage removes a posted message. A prompt that is already gone
// counts as removed: accept and decline can race on the same prompt.
func (c *SlackConversation) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_, _, err := c.api.DeleteMessageContext(ctx, channelID, messageID)
	if err != nil && isAlreadyGone(err) {
		return nil
	}
	return err
}

func (c *SlackConversation) OpenMetadataForm(ctx context.Context, triggerID, token string) error {
	_, err := c.api.OpenViewContext(ctx, triggerID, metadataModal(token))
	return err
}

func (c *SlackConversation) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	return err
}

func (c *SlackConversation) ChannelName(ctx context.Context, channelID string) (string, error) {
	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

func isAlreadyGone(err error) bool {
	return strings.Contains(err.Error(), "message_not_found")
}

func confirmationBlocks(filename, token string) []slack.Block {
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, workflow.ConfirmationText(filename), false, false),
		nil, nil,
	)

	yes := slack.NewButtonBlockElement(workflow.ActionAccept, token,
		slack.NewTextBlockObject(slack.PlainTextType, "Yes", true, false)).
		WithStyle(slack.StylePrimary)
	no := slack.NewButtonBlockElement(workflow.ActionDecline, token,
		slack.NewTextBlockObject(slack.PlainTextType, "No", true, false)).
		WithStyle(slack.StyleDanger)

	return []slack.Block{
		section,
		slack.NewActionBlock(workflow.BlockConfirmActions, yes, no),
	}
}

func metadataModal(token string) slack.ModalViewRequest {
	clientSelect := slack.NewOptionsSelectBlockElement(slack.OptTypeExternal,
		slack.NewTextBlockObject(slack.PlainTextType, "Select client name", false, false),
		workflow.ActionClientSelect)
	minQuery := 0
	clientSelect.MinQueryLength = &minQuery

	clientBlock := slack.NewInputBlock(workflow.BlockClientName,
		slack.NewTextBlockObject(slack.PlainTextType, "Client Name", false, false),
		nil, clientSelect)

	newClient := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "Name for the new client", false, false),
		workflow.ActionNewClientName)
	newClientBlock := slack.NewInputBlock(workflow.BlockNewClientName,
		slack.NewTextBlockObject(slack.PlainTextType, "New Client", false, false),
		slack.NewTextBlockObject(slack.PlainTextType, "Only used with \"Create a new client\"", false, false),
		newClient)
	newClientBlock.Optional = true

	manifest := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "Enter a description of the file", false, false),
		workflow.ActionManifest)
	manifest.Multiline = true
	manifestBlock := slack.NewInputBlock(workflow.BlockManifest,
		slack.NewTextBlockObject(slack.PlainTextType, "File Description (Manifest)", false, false),
		nil, manifest)

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      workflow.CallbackUploadModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Upload File to Sojourner", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Upload", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks:          slack.Blocks{BlockSet: []slack.Block{clientBlock, newClientBlock, manifestBlock}},
		PrivateMetadata: token,
	}
}

func optionsResponse(opts []workflow.Option) slack.OptionsResponse {
	blockOpts := make([]*slack.OptionBlockObject, 0, len(opts))
	for _, o := range opts {
		blockOpts = append(blockOpts, slack.NewOptionBlockObject(o.Value,
			slack.NewTextBlockObject(slack.PlainTextType, o.Label, false, false), nil))
	}
	return slack.OptionsResponse{Options: blockOpts}
}
