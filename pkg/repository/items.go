package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
	"github.com/clinaccel/reponav/pkg/resourceuri"
)

// Children lists the children of parent, or of the repository root when
// parent is nil. The listing is paginated: pages are fetched strictly in
// sequence, advancing by the page size observed on the first page, until the
// server-reported total count is reached. Returns an empty slice while the
// client is not yet authorized.
func (c *Client) Children(ctx context.Context, parent *models.Item) ([]models.Item, error) {
	if !c.Authorized() {
		return nil, nil
	}
	if err := c.ensureTypes(ctx); err != nil {
		return nil, err
	}

	parentID := models.RootItemID
	if parent != nil {
		parentID = parent.ID
	}

	page, err := c.childrenPage(ctx, parentID, 0)
	if err != nil {
		return nil, err
	}
	items := page.Items

	pageSize := len(page.Items)
	if pageSize == 0 {
		return items, nil
	}
	for start := pageSize; start < page.Count; start += pageSize {
		next, err := c.childrenPage(ctx, parentID, start)
		if err != nil {
			return nil, err
		}
		items = append(items, next.Items...)
	}

	c.log.Debug("listed children",
		zap.String("parent", parentID),
		zap.Int("items", len(items)))
	return items, nil
}

func (c *Client) childrenPage(ctx context.Context, parentID string, start int) (*models.Collection[models.Item], error) {
	path := fmt.Sprintf("%s/%s/children?start=%d&limit=%d", itemsPath, parentID, start, c.pageSize)
	header := http.Header{"Accept": []string{models.CollectionMediaType}}
	resp, err := c.do(ctx, "children", http.MethodGet, path, nil, header)
	if err != nil {
		return nil, err
	}
	page, err := decodeJSON[models.Collection[models.Item]](resp)
	if err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, fmt.Errorf("children %s: %w", parentID, ErrEmptyResponse)
	}
	return page, nil
}

// ResourceByID fetches an item's representation and refreshes its
// concurrency token from the response headers. A 403 or 404 is recovered
// into a notification and a nil result; callers must treat nil as a terminal
// failure for that item, not retry.
func (c *Client) ResourceByID(ctx context.Context, id string) (*models.Item, error) {
	item, err := c.fetchResource(ctx, id)
	if err != nil {
		if IsAccessDenied(err) {
			c.notifyError(notify.MsgAccessError)
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// ResourceByURI fetches the item a navigator URI addresses, refreshing its
// concurrency token. Unlike ResourceByID, access errors propagate.
func (c *Client) ResourceByURI(ctx context.Context, u *url.URL) (*models.Item, error) {
	return c.fetchResource(ctx, resourceuri.ResourceID(u))
}

func (c *Client) fetchResource(ctx context.Context, id string) (*models.Item, error) {
	resp, err := c.do(ctx, "resource", http.MethodGet, itemsPath+"/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	c.tokens.Update(id, resp.Header)
	return decodeJSON[models.Item](resp)
}

// ContentByURI fetches the text content of the file a URI addresses. The
// fetch refreshes the file's concurrency token. Content that is not valid
// text fails with ErrContentType.
func (c *Client) ContentByURI(ctx context.Context, u *url.URL) (string, error) {
	id := resourceuri.ResourceID(u)
	resp, err := c.do(ctx, "content", http.MethodPost, itemsPath+"/"+id+"/content", strings.NewReader("[\"\"]"), nil)
	if err != nil {
		return "", err
	}
	c.tokens.Update(id, resp.Header)

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("content %s: %w", id, err)
	}
	metrics.RecordDownload(int64(len(data)))

	if !utf8.Valid(data) {
		return "", fmt.Errorf("content %s: %w", id, ErrContentType)
	}
	return string(data), nil
}

// ItemURI produces the addressable URI for an item. Reference items are
// resolved to their target first; when resolution fails the reference item
// itself is encoded.
func (c *Client) ItemURI(ctx context.Context, item *models.Item, readOnly bool) *url.URL {
	if item.TypeID != "reference" {
		return resourceuri.ForItem(item, readOnly)
	}
	target, err := c.fetchResource(ctx, item.ID)
	if err != nil {
		c.log.Debug("reference resolution failed", zap.String("id", item.ID), zap.Error(err))
		return resourceuri.ForItem(item, readOnly)
	}
	return resourceuri.ForItem(target, readOnly)
}
