package notify

import "strings"

// Message catalog. Placeholders use {name} syntax and are substituted with
// Format so front ends can relocalize the templates wholesale.
const (
	MsgAccessError            = "The item cannot be accessed."
	MsgAccessPermissionsError = "The item permissions cannot be accessed."
	MsgAccessPrivilegesError  = "The item privileges cannot be accessed."
	MsgFileOpenError          = "The file type is unsupported."
	MsgFileNotVersioned       = "The selected file is not versioned."
	MsgVersioningUnsupported  = "The item selected does not support versioning."
	MsgVersionHistoryError    = "Unable to display version history for the selected item."
	MsgPropertiesError        = "Unable to display properties for the selected item."
	MsgItemLocation           = "Location: {location}"

	MsgFolderCreationSuccess = `Created new folder "{name}" at "{location}".`
	MsgFolderCreationError   = `Unable to create new folder "{name}" at "{location}". {message}`
	MsgRenameSuccess         = `Successfully renamed "{oldName}" to "{newName}".`
	MsgRenameError           = `Unable to rename "{oldName}" to "{newName}". {message}`
	MsgDownloadedMessage     = `Downloaded "{name}" to "{location}"`
	MsgDownloadError         = "There was an error downloading the selected version"
	MsgUploadedMessage       = `Uploaded "{name}" to "{location}".`
	MsgUploadedExpanded      = `Uploaded and expanded "{name}" to "{location}".`
	MsgUploadError           = `Unable to upload "{name}" to "{location}". {message}`
	MsgDeleteError           = "There was an error in deleting the selected item(s)."
	MsgRecycleBinSuccess     = `Moved "{name}" to the Recycle Bin.`
	MsgRecycleBinError       = `Unable to move "{name}" to the Recycle Bin. {message}`

	MsgEnabledVersioning      = `Successfully enabled versioning for file "{name}".`
	MsgEnableVersioningError  = `There was an error enabling versioning for file "{name}". {message}`
	MsgDisabledVersioning     = `Successfully disabled versioning for file "{name}".`
	MsgDisableVersioningError = `There was an error disabling versioning for file "{name}". {message}`

	LabelName         = "Name:"
	LabelDescription  = "Description:"
	LabelLocation     = "Location:"
	LabelType         = "Type:"
	LabelOwner        = "Owner:"
	LabelCreatedBy    = "Created by:"
	LabelDateCreated  = "Date created:"
	LabelModifiedBy   = "Modified by:"
	LabelDateModified = "Date modified:"
	LabelState        = "State:"
	LabelSize         = "Size:"
	LabelLockStatus   = "Lock status:"
	LabelVersionState = "Version status:"
	LabelVersion      = "Version:"

	ValueLocked      = "Locked"
	ValueUnlocked    = "Unlocked"
	ValueVersioned   = "Versioned"
	ValueUnversioned = "Unversioned"
)

// Format substitutes {key} placeholders in a message template.
func Format(template string, args map[string]string) string {
	out := template
	for key, value := range args {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
