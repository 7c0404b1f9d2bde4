package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
)

// PerformBatchAction submits an asynchronous batch action tagged with this
// session's client id and returns the poll token extracted from the
// response's location header. A 403 or 404 is recovered into a notification
// and an empty token.
func (c *Client) PerformBatchAction(ctx context.Context, action models.Action, body *models.ActionBody) (string, error) {
	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("batch action %s: %w", action, err)
		}
	}

	path := fmt.Sprintf("%s?action=%s&clientId=%s", itemsBatchPath, action, c.clientID)
	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.do(ctx, "batchAction", http.MethodPost, path, bytes.NewReader(payload), header)
	if err != nil {
		if IsAccessDenied(err) {
			c.notifyError(notify.MsgAccessError)
			return "", nil
		}
		return "", err
	}
	resp.Body.Close()

	token := actionToken(resp.Header)
	c.log.Info("submitted batch action",
		zap.String("action", string(action)),
		zap.String("token", token))
	return token, nil
}

// actionToken extracts the poll token from a location-style header: the last
// path segment of the status URL.
func actionToken(header http.Header) string {
	location := header.Get("Location")
	if location == "" {
		return ""
	}
	parts := strings.Split(location, "/")
	return parts[len(parts)-1]
}

// ActionStatus polls the status of a submitted batch action. summaryOnly
// requests the summary representation without per-item details.
func (c *Client) ActionStatus(ctx context.Context, token string, summaryOnly bool) (*models.ActionStatus, error) {
	accept := models.ActionStatusMediaType
	if summaryOnly {
		accept = models.ActionSummaryMediaType
	}
	metrics.RecordPollTick()

	header := http.Header{"Accept": []string{accept}}
	resp, err := c.do(ctx, "actionStatus", http.MethodGet, actionStatusPath+"/"+token, nil, header)
	if err != nil {
		return nil, err
	}
	status, err := decodeJSON[models.ActionStatus](resp)
	if err != nil {
		return nil, err
	}
	if status.Summary.ID == "" && len(status.Details) == 0 {
		return nil, fmt.Errorf("action status %s: %w", token, ErrEmptyResponse)
	}
	return status, nil
}
