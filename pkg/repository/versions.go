package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
	"github.com/clinaccel/reponav/pkg/resourceuri"
)

// VersionHistory fetches the version chain of a file. A 403 or 404 is
// recovered into a notification and a nil result.
func (c *Client) VersionHistory(ctx context.Context, item *models.Item) (*models.Collection[models.VersionHistoryItem], error) {
	resp, err := c.do(ctx, "versions", http.MethodGet, itemsPath+"/"+item.ID+"/versions", nil, nil)
	if err != nil {
		if IsAccessDenied(err) {
			c.notifyError(notify.MsgAccessError)
			return nil, nil
		}
		return nil, err
	}
	history, err := decodeJSON[models.Collection[models.VersionHistoryItem]](resp)
	if err != nil {
		return nil, err
	}
	if history.Items == nil {
		return nil, fmt.Errorf("versions %s: %w", item.ID, ErrEmptyResponse)
	}
	return history, nil
}

// VersionDetail fetches the file-flavored representation of one version.
func (c *Client) VersionDetail(ctx context.Context, id, version string) (*models.File, error) {
	header := http.Header{"Accept": []string{models.FileMediaType}}
	resp, err := c.do(ctx, "versionDetail", http.MethodGet, itemsPath+"/"+id+"/versions/"+version, nil, header)
	if err != nil {
		return nil, err
	}
	return decodeJSON[models.File](resp)
}

// VersionContentByURI fetches the text content of the file version a
// navigator URI addresses, refreshing the file's concurrency token.
func (c *Client) VersionContentByURI(ctx context.Context, u *url.URL) (string, error) {
	id := resourceuri.ResourceID(u)
	version := resourceuri.VersionFragment(u)

	data, err := c.versionContent(ctx, id, version)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("version content %s@%s: %w", id, version, ErrContentType)
	}
	return string(data), nil
}

// DownloadVersion fetches the raw content of one file version.
func (c *Client) DownloadVersion(ctx context.Context, v *models.VersionHistoryItem) ([]byte, error) {
	return c.versionContent(ctx, v.FileID, v.FileVersion)
}

func (c *Client) versionContent(ctx context.Context, id, version string) ([]byte, error) {
	resp, err := c.do(ctx, "versionContent", http.MethodGet, itemsPath+"/"+id+"/versions/"+version+"/content", nil, nil)
	if err != nil {
		return nil, err
	}
	c.tokens.Update(id, resp.Header)

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("version content %s@%s: %w", id, version, err)
	}
	metrics.RecordDownload(int64(len(data)))
	return data, nil
}
