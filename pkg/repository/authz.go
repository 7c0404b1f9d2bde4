package repository

import (
	"context"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
)

// Permission derives the capability record for an item. Read is always
// granted; delete unless the item is a context; create unless it is a file;
// write comes from the remote authorization lookup. A failed lookup is
// notified and leaves write false.
func (c *Client) Permission(ctx context.Context, item *models.Item) *models.Permission {
	canWrite := false
	grants, err := c.grants(ctx, "permissions", item.ID)
	if err != nil {
		c.notifyError(notify.MsgAccessPermissionsError)
		c.log.Debug("permission lookup failed", zap.String("id", item.ID), zap.Error(err))
	} else {
		canWrite = slices.Contains(grants, models.PermissionWrite)
	}

	return &models.Permission{
		Read:   true,
		Write:  canWrite,
		Delete: item.PrimaryType != models.ItemTypeContext,
		Create: item.PrimaryType != models.ItemTypeFile,
	}
}

// Privilege derives the versioning capability record for an item. A failed
// lookup is notified and returns nil.
func (c *Client) Privilege(ctx context.Context, item *models.Item) *models.Privilege {
	grants, err := c.grants(ctx, "privileges", item.ID)
	if err != nil {
		c.notifyError(notify.MsgAccessPrivilegesError)
		c.log.Debug("privilege lookup failed", zap.String("id", item.ID), zap.Error(err))
		return nil
	}

	return &models.Privilege{
		EnableVersioning: slices.Contains(grants, models.PrivilegeEnableVersioning),
		ManageVersioning: slices.Contains(grants, models.PrivilegeManageVersioning),
	}
}

func (c *Client) grants(ctx context.Context, kind, id string) ([]string, error) {
	resp, err := c.do(ctx, kind, http.MethodGet, authzPath+"/"+id+"/"+kind, nil, nil)
	if err != nil {
		return nil, err
	}
	grants, err := decodeJSON[[]string](resp)
	if err != nil {
		return nil, err
	}
	return *grants, nil
}
