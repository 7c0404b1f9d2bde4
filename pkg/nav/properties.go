package nav

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
)

// PropertyType classifies a property value for display.
type PropertyType int

const (
	PropertyString PropertyType = iota
	PropertyNumber
	PropertyBoolean
	PropertyDate
	PropertyUser
)

// Property is one row of the property panel.
type Property struct {
	Key   string
	Label string
	Value string
	Type  PropertyType
}

// RootDisplayName overrides the server-provided name of the root item.
const RootDisplayName = "Repository"

var titleCaser = cases.Title(language.AmericanEnglish)

// Properties derives the fixed, ordered attribute list for an item. Base
// attributes always appear; CONTEXT items add their state and FILE items add
// size, lock status, version status, and, when versioned, the version number.
func (n *Navigator) Properties(item *models.Item) []Property {
	name := item.Name
	if item.ID == models.RootItemID {
		name = RootDisplayName
	}

	properties := []Property{
		{Key: "name", Label: notify.LabelName, Value: name, Type: PropertyString},
		{Key: "description", Label: notify.LabelDescription, Value: item.Description, Type: PropertyString},
		{Key: "location", Label: notify.LabelLocation, Value: item.Location, Type: PropertyString},
		{Key: "typeId", Label: notify.LabelType, Value: n.repo.ObjectTypeName(item.TypeID), Type: PropertyString},
		{Key: "ownerDisplayName", Label: notify.LabelOwner, Value: item.OwnerDisplayName, Type: PropertyUser},
		{Key: "createdByDisplayName", Label: notify.LabelCreatedBy, Value: item.CreatedByDisplayName, Type: PropertyUser},
		{Key: "creationTimeStamp", Label: notify.LabelDateCreated, Value: FormatDate(item.CreationTimeStamp), Type: PropertyDate},
		{Key: "modifiedByDisplayName", Label: notify.LabelModifiedBy, Value: item.ModifiedByDisplayName, Type: PropertyUser},
		{Key: "modifiedTimeStamp", Label: notify.LabelDateModified, Value: FormatDate(item.ModifiedTimeStamp), Type: PropertyDate},
	}

	if item.IsContext() {
		properties = append(properties, Property{
			Key:   "state",
			Label: notify.LabelState,
			Value: titleCaser.String(strings.ToLower(string(item.State))),
			Type:  PropertyBoolean,
		})
	}

	if item.PrimaryType == models.ItemTypeFile {
		locked := notify.ValueUnlocked
		if item.Locked {
			locked = notify.ValueLocked
		}
		versioned := notify.ValueUnversioned
		if item.Versioned {
			versioned = notify.ValueVersioned
		}
		properties = append(properties,
			Property{Key: "size", Label: notify.LabelSize, Value: FormatBytes(item.Size, 0), Type: PropertyNumber},
			Property{Key: "locked", Label: notify.LabelLockStatus, Value: locked, Type: PropertyBoolean},
			Property{Key: "versioned", Label: notify.LabelVersionState, Value: versioned, Type: PropertyBoolean},
		)
		if item.Versioned {
			properties = append(properties, Property{
				Key:   "fileVersion",
				Label: notify.LabelVersion,
				Value: item.FileVersion,
				Type:  PropertyNumber,
			})
		}
	}

	return properties
}

// RefreshedProperties re-fetches the item and derives its property list. A
// vanished item yields nil and an explanatory message.
func (n *Navigator) RefreshedProperties(ctx context.Context, item *models.Item) ([]Property, string) {
	current, err := n.repo.ResourceByID(ctx, item.ID)
	if err != nil || current == nil {
		return nil, notify.MsgPropertiesError
	}
	return n.Properties(current), ""
}
