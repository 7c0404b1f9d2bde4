package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/query"
)

// CreateFolder creates a child folder under parent and returns the new item.
func (c *Client) CreateFolder(ctx context.Context, parent *models.Item, name string) (*models.Item, error) {
	path := fmt.Sprintf("%s/%s/children?name=%s&type=FOLDER", itemsPath, parent.ID, url.QueryEscape(name))
	header := http.Header{"Accept": []string{models.ItemMediaType}}
	resp, err := c.do(ctx, "createFolder", http.MethodPost, path, nil, header)
	if err != nil {
		return nil, err
	}
	folder, err := decodeJSON[models.Item](resp)
	if err != nil {
		return nil, err
	}
	c.log.Info("created folder", zap.String("name", name), zap.String("parent", parent.ID))
	return folder, nil
}

// Rename changes an item's name. The request carries the most recently
// cached concurrency token for the item as If-Match; when none was ever
// observed an empty etag with the current timestamp is used instead.
func (c *Client) Rename(ctx context.Context, item *models.Item, name string) (*models.Item, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("rename %s: %w", item.ID, err)
	}

	token := c.tokens.Get(item.ID)
	header := http.Header{
		"Accept":              []string{models.ItemMediaType},
		"Content-Type":        []string{"application/json"},
		"If-Match":            []string{token.ETag},
		"If-Unmodified-Since": []string{token.LastModified},
	}
	resp, err := c.do(ctx, "rename", http.MethodPatch, itemsPath+"/"+item.ID, bytes.NewReader(body), header)
	if err != nil {
		return nil, err
	}
	c.tokens.Update(item.ID, resp.Header)

	renamed, err := decodeJSON[models.Item](resp)
	if err != nil {
		return nil, err
	}
	c.log.Info("renamed item", zap.String("id", item.ID), zap.String("name", name))
	return renamed, nil
}

// Upload streams raw bytes to an item's child-content endpoint. expand asks
// the server to extract an archive in place; comment and version are
// appended only when non-empty.
func (c *Client) Upload(ctx context.Context, item *models.Item, location string, content []byte, expand bool, comment, version string) (*models.Item, error) {
	name := filepath.Base(location)
	path := fmt.Sprintf("%s/%s/content?name=%s&expand=%t", itemsPath, item.ID, url.QueryEscape(name), expand)
	if comment != "" {
		path += "&comment=" + url.QueryEscape(comment)
	}
	if version != "" {
		path += "&fileVersion=" + version
	}

	header := http.Header{
		"Accept":       []string{models.ItemMediaType},
		"Content-Type": []string{"application/octet-stream"},
	}
	resp, err := c.do(ctx, "upload", http.MethodPut, path, bytes.NewReader(content), header)
	if err != nil {
		return nil, err
	}
	metrics.RecordUpload(int64(len(content)))

	uploaded, err := decodeJSON[models.Item](resp)
	if err != nil {
		return nil, err
	}
	c.log.Info("uploaded content",
		zap.String("name", name),
		zap.String("target", item.ID),
		zap.Int("bytes", len(content)))
	return uploaded, nil
}

// Download fetches content for one or more items. A single item is fetched
// directly; multiple items are fetched in one batched call filtered by id and
// returned as a zip archive.
func (c *Client) Download(ctx context.Context, items []*models.Item) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var resp *http.Response
	var err error
	if len(items) == 1 {
		resp, err = c.do(ctx, "download", http.MethodPost, itemsPath+"/"+items[0].ID+"/content", bytes.NewReader([]byte(`[""]`)), nil)
	} else {
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}
		body, merr := json.Marshal(map[string]string{
			"filter": query.BuildFilter(query.OpIn, "id", ids),
		})
		if merr != nil {
			return nil, fmt.Errorf("download: %w", merr)
		}
		header := http.Header{"Content-Type": []string{"application/json"}}
		resp, err = c.do(ctx, "download", http.MethodPost, filesContentPath, bytes.NewReader(body), header)
	}
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	metrics.RecordDownload(int64(len(data)))
	return data, nil
}

// Delete soft-deletes an item, moving it to the recoverable recycle state.
// Permanent deletion is never issued from this layer. The item's cached
// concurrency token is evicted.
func (c *Client) Delete(ctx context.Context, item *models.Item) error {
	resp, err := c.do(ctx, "delete", http.MethodDelete, itemsPath+"/"+item.ID+"?permanent=false", nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.tokens.Evict(item.ID)
	c.log.Info("deleted item", zap.String("id", item.ID), zap.String("name", item.Name))
	return nil
}
