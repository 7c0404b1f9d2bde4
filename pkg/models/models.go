// Package models contains the data types exchanged with the repository service.
package models

// Media types served by the repository endpoints.
const (
	CollectionMediaType    = "application/vnd.sas.collection+json"
	ItemMediaType          = "application/vnd.sas.clinical.repository.item+json"
	FileMediaType          = "application/vnd.sas.clinical.repository.file+json"
	ContainerMediaType     = "application/vnd.sas.clinical.repository.container+json"
	ActionStatusMediaType  = "application/vnd.sas.clinical.action.status+json"
	ActionSummaryMediaType = "application/vnd.sas.clinical.action.status.summary+json"
)

// ItemType is the primary classification of a repository item.
type ItemType string

const (
	ItemTypeContext ItemType = "CONTEXT"
	ItemTypeFolder  ItemType = "FOLDER"
	ItemTypeFile    ItemType = "FILE"
)

// State is the lifecycle state of a context.
type State string

const (
	StateActive State = "ACTIVE"
	StateClosed State = "CLOSED"
)

// RootItemID is the id of the repository root container.
const RootItemID = "1"

// Item is a node in the repository hierarchy. Containers (CONTEXT, FOLDER)
// have children and no content; FILE items are leaves with content and an
// optional version chain.
type Item struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Description            string   `json:"description,omitempty"`
	Location               string   `json:"location,omitempty"`
	Path                   string   `json:"path,omitempty"`
	PrimaryType            ItemType `json:"primaryType"`
	TypeID                 string   `json:"typeId"`
	Size                   int64    `json:"size,omitempty"`
	State                  State    `json:"state,omitempty"`
	Versioned              bool     `json:"versioned"`
	FileVersion            string   `json:"fileVersion,omitempty"`
	Locked                 bool     `json:"locked,omitempty"`
	ETag                   string   `json:"eTag,omitempty"`
	Owner                  string   `json:"owner,omitempty"`
	OwnerDisplayName       string   `json:"ownerDisplayName,omitempty"`
	CreatedBy              string   `json:"createdBy,omitempty"`
	CreatedByDisplayName   string   `json:"createdByDisplayName,omitempty"`
	CreationTimeStamp      string   `json:"creationTimeStamp,omitempty"`
	ModifiedBy             string   `json:"modifiedBy,omitempty"`
	ModifiedByDisplayName  string   `json:"modifiedByDisplayName,omitempty"`
	ModifiedTimeStamp      string   `json:"modifiedTimeStamp,omitempty"`
	PropertiesModifiedBy   string   `json:"propertiesModifiedBy,omitempty"`
	PropertiesModifiedTime string   `json:"propertiesModifiedTimeStamp,omitempty"`
}

// IsContainer reports whether the item can hold children.
func (it *Item) IsContainer() bool {
	return it.PrimaryType == ItemTypeContext || it.PrimaryType == ItemTypeFolder
}

// IsContext reports whether the item is a context.
func (it *Item) IsContext() bool {
	return it.PrimaryType == ItemTypeContext
}

// IsValid reports whether the item carries the minimum identity fields.
func (it *Item) IsValid() bool {
	return it != nil && it.ID != "" && it.Name != ""
}

// File is the file-flavored representation of an item, returned by
// version-detail fetches.
type File struct {
	Item
	Digest            string `json:"digest,omitempty"`
	ContentType       string `json:"contentType,omitempty"`
	FileSize          int64  `json:"fileSize,omitempty"`
	MajorVersionLimit *int   `json:"majorVersionLimit"`
	MinorVersionLimit *int   `json:"minorVersionLimit"`
}

// ObjectType is a catalog entry describing a typeId.
type ObjectType struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Icon         string   `json:"icon,omitempty"`
	Auditable    bool     `json:"auditable,omitempty"`
	Searchable   bool     `json:"searchable,omitempty"`
	ContextType  bool     `json:"contextType,omitempty"`
	FileType     bool     `json:"fileType,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Collection is the paged envelope the server wraps listings in.
type Collection[T any] struct {
	Name  string `json:"name,omitempty"`
	Count int    `json:"count"`
	Start int    `json:"start"`
	Limit int    `json:"limit"`
	Items []T    `json:"items"`
}

// VersionHistoryItem is one entry in a file's version chain.
type VersionHistoryItem struct {
	Name                 string `json:"name,omitempty"`
	FileID               string `json:"fileId"`
	VersionID            string `json:"versionId,omitempty"`
	Path                 string `json:"path,omitempty"`
	FileVersion          string `json:"fileVersion"`
	Comment              string `json:"comment,omitempty"`
	CreatedBy            string `json:"createdBy,omitempty"`
	CreatedByDisplayName string `json:"createdByDisplayName,omitempty"`
	CreationTimeStamp    int64  `json:"creationTimeStamp,omitempty"`
	Size                 int64  `json:"size,omitempty"`
	Latest               bool   `json:"latest,omitempty"`
	Signed               bool   `json:"signed,omitempty"`
}

// Permission is the capability record for an item.
type Permission struct {
	Read   bool
	Write  bool
	Delete bool
	Create bool
}

// Privilege is the versioning capability record for an item.
type Privilege struct {
	EnableVersioning bool
	ManageVersioning bool
}

// Permission and privilege grants returned by the authorization service.
const (
	PermissionRead            = "READ"
	PermissionWrite           = "WRITE"
	PrivilegeEnableVersioning = "PRIVILEGE_ENABLE_VERSIONING"
	PrivilegeManageVersioning = "PRIVILEGE_MANAGE_VERSIONING"
)

// Action identifies an asynchronous batch action.
type Action string

const (
	ActionEnableVersioning  Action = "ENABLE_VERSIONING"
	ActionDisableVersioning Action = "DISABLE_VERSIONING"
)

// FileSpecification names one file affected by an enable-versioning action.
type FileSpecification struct {
	Path        string `json:"path"`
	FileVersion string `json:"fileVersion,omitempty"`
}

// ActionBody is the request body submitted with a batch action.
// EnableVersioning uses FileSpecifications; DisableVersioning uses Paths.
type ActionBody struct {
	Comment            string              `json:"comment,omitempty"`
	FileSpecifications []FileSpecification `json:"fileSpecifications,omitempty"`
	Paths              []string            `json:"paths,omitempty"`
}

// ProgressStatus is the in-flight state of a batch action.
type ProgressStatus string

const (
	ProgressQueued     ProgressStatus = "QUEUED"
	ProgressProcessing ProgressStatus = "PROCESSING"
	ProgressStopped    ProgressStatus = "STOPPED"
	ProgressStopping   ProgressStatus = "STOPPING"
	ProgressCompleted  ProgressStatus = "COMPLETED"
	ProgressTerminated ProgressStatus = "TERMINATED"
)

// CompletionStatus is the terminal disposition of a batch action.
type CompletionStatus string

const (
	CompletionInfo  CompletionStatus = "INFO"
	CompletionWarn  CompletionStatus = "WARN"
	CompletionError CompletionStatus = "ERROR"
)

// ActionStatusSummary is the aggregate status of a batch action. A non-empty
// EndTimeStamp marks the action terminal.
type ActionStatusSummary struct {
	ID               string           `json:"id"`
	ClientID         string           `json:"clientId,omitempty"`
	Action           string           `json:"action,omitempty"`
	Message          string           `json:"message,omitempty"`
	DetailMessage    string           `json:"detailMessage,omitempty"`
	StartTimeStamp   string           `json:"startTimeStamp,omitempty"`
	EndTimeStamp     string           `json:"endTimeStamp,omitempty"`
	PercentComplete  int              `json:"percentComplete,omitempty"`
	Stoppable        bool             `json:"stoppable,omitempty"`
	ProgressStatus   ProgressStatus   `json:"progressStatus,omitempty"`
	CompletionStatus CompletionStatus `json:"completionStatus,omitempty"`
}

// ActionStatusDetail is the per-item outcome of a batch action.
type ActionStatusDetail struct {
	ID               string           `json:"id"`
	ItemIdentifier   string           `json:"itemIdentifier,omitempty"`
	ItemLocation     string           `json:"itemLocation,omitempty"`
	ItemName         string           `json:"itemName,omitempty"`
	Message          string           `json:"message,omitempty"`
	StartTimeStamp   string           `json:"startTimeStamp,omitempty"`
	EndTimeStamp     string           `json:"endTimeStamp,omitempty"`
	PercentComplete  int              `json:"percentComplete,omitempty"`
	ProgressStatus   ProgressStatus   `json:"progressStatus,omitempty"`
	CompletionStatus CompletionStatus `json:"completionStatus,omitempty"`
}

// ActionStatus is the full asynchronous result of a submitted batch action.
type ActionStatus struct {
	Summary ActionStatusSummary  `json:"summary"`
	Details []ActionStatusDetail `json:"details,omitempty"`
}

// Done reports whether the action has reached a terminal status.
func (s *ActionStatus) Done() bool {
	return s.Summary.EndTimeStamp != ""
}

// Failed reports whether a terminal action ended in error.
func (s *ActionStatus) Failed() bool {
	return s.Summary.CompletionStatus == CompletionError
}
