package channels

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/tinyland-inc/sojourner-relay/pkg/workflow"
)

// DownloadError reports a failed private file download.
type DownloadError struct {
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("file download returned status %d", e.StatusCode)
}

// SlackFileFetcher downloads shared file content. The Web API only hands out
// the private download URL; the actual bytes come over plain HTTP with the
// bot token as a bearer credential.
type SlackFileFetcher struct {
	api      *slack.Client
	botToken string
	http     *http.Client
}

var _ workflow.FileFetcher = (*SlackFileFetcher)(nil)

func NewSlackFileFetcher(api *slack.Client, botToken string) *SlackFileFetcher {
	return &SlackFileFetcher{
		api:      api,
		botToken: botToken,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (f *SlackFileFetcher) Fetch(ctx context.Context, fileID string) (string, []byte, error) {
	info, _, _, err := f.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return "", nil, fmt.Errorf("file info for %s: %w", fileID, err)
	}

	content, err := f.download(ctx, info.URLPrivateDownload)
	if err != nil {
		return "", nil, err
	}
	return info.Name, content, nil
}

func (f *SlackFileFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.botToken)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
