// Package nav projects repository state into the contracts a host front end
// consumes: a live hierarchy tree, a version-history panel, a property list,
// and read-only content and stat providers. All remote work goes through the
// access layer; this package decides presentation and notification policy.
package nav

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clinaccel/reponav/pkg/action"
	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
	"github.com/clinaccel/reponav/pkg/repository"
	"github.com/clinaccel/reponav/pkg/resourceuri"
)

// Repository is the access-layer surface the navigator drives.
type Repository interface {
	Children(ctx context.Context, parent *models.Item) ([]models.Item, error)
	ResourceByID(ctx context.Context, id string) (*models.Item, error)
	ResourceByURI(ctx context.Context, u *url.URL) (*models.Item, error)
	ContentByURI(ctx context.Context, u *url.URL) (string, error)
	ItemURI(ctx context.Context, item *models.Item, readOnly bool) *url.URL
	ObjectType(typeID string) *models.ObjectType
	ObjectTypeName(typeID string) string

	CreateFolder(ctx context.Context, parent *models.Item, name string) (*models.Item, error)
	Rename(ctx context.Context, item *models.Item, name string) (*models.Item, error)
	Upload(ctx context.Context, item *models.Item, location string, content []byte, expand bool, comment, version string) (*models.Item, error)
	Download(ctx context.Context, items []*models.Item) ([]byte, error)
	Delete(ctx context.Context, item *models.Item) error
	PerformBatchAction(ctx context.Context, act models.Action, body *models.ActionBody) (string, error)

	VersionHistory(ctx context.Context, item *models.Item) (*models.Collection[models.VersionHistoryItem], error)
	VersionDetail(ctx context.Context, id, version string) (*models.File, error)
	VersionContentByURI(ctx context.Context, u *url.URL) (string, error)
	DownloadVersion(ctx context.Context, v *models.VersionHistoryItem) ([]byte, error)
}

// StatusPoller awaits the terminal status of a submitted batch action.
type StatusPoller interface {
	Poll(ctx context.Context, params action.Params) (*models.ActionStatus, error)
}

// Node is the display projection of one repository item.
type Node struct {
	Item        models.Item
	Label       string
	Icon        string
	ContextTags string
	Collapsible bool
	URI         *url.URL
}

// FileStat is filesystem-style metadata for an addressable URI.
type FileStat struct {
	Dir      bool
	Size     int64
	Created  time.Time
	Modified time.Time
	ReadOnly bool
}

// TreeSource lists hierarchy nodes for display.
type TreeSource interface {
	Nodes(ctx context.Context, parent *models.Item) ([]Node, error)
}

// ContentSource provides read-only text content for an addressable URI.
type ContentSource interface {
	Content(ctx context.Context, u *url.URL) (string, error)
}

// FileStatSource provides filesystem-style metadata for an addressable URI.
type FileStatSource interface {
	Stat(ctx context.Context, u *url.URL) (*FileStat, error)
}

// EditorRegistry tracks the documents a host currently has open, so the
// navigator can close a stale handle before renaming or replacing the file
// behind it. Documents are matched by the URI query component, which carries
// the resource id and therefore survives renames.
type EditorRegistry interface {
	Open(u *url.URL)
	CloseMatching(query string) bool
}

// MemoryEditorRegistry is an in-process EditorRegistry, used by hosts without
// their own document tracking and by tests.
type MemoryEditorRegistry struct {
	mu   sync.Mutex
	open map[string]*url.URL
}

func NewMemoryEditorRegistry() *MemoryEditorRegistry {
	return &MemoryEditorRegistry{open: make(map[string]*url.URL)}
}

func (r *MemoryEditorRegistry) Open(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[u.RawQuery] = u
}

func (r *MemoryEditorRegistry) CloseMatching(query string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.open[query]; ok {
		delete(r.open, query)
		return true
	}
	return false
}

// IsOpen reports whether a document with the given query component is open.
func (r *MemoryEditorRegistry) IsOpen(query string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.open[query]
	return ok
}

// Selection carries the context flags a host derives command visibility from.
type Selection struct {
	Items            []*models.Item
	OneItemSelected  bool
	TwoItemsSelected bool
}

// Navigator coordinates the tree, content, and stat contracts over one
// repository session. It implements TreeSource, ContentSource, and
// FileStatSource.
type Navigator struct {
	repo     Repository
	poller   StatusPoller
	notifier notify.Notifier
	editors  EditorRegistry
	log      *zap.Logger

	mu        sync.Mutex
	selection Selection
	listeners []func()
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithNotifier sets the notification sink.
func WithNotifier(n notify.Notifier) NavigatorOption {
	return func(nav *Navigator) { nav.notifier = n }
}

// WithEditorRegistry sets the open-document tracker.
func WithEditorRegistry(r EditorRegistry) NavigatorOption {
	return func(nav *Navigator) { nav.editors = r }
}

// WithNavigatorLogger sets the diagnostic logger.
func WithNavigatorLogger(log *zap.Logger) NavigatorOption {
	return func(nav *Navigator) { nav.log = log }
}

// NewNavigator builds a navigator over a repository session and a poller for
// its batch actions.
func NewNavigator(repo Repository, poller StatusPoller, opts ...NavigatorOption) *Navigator {
	nav := &Navigator{
		repo:     repo,
		poller:   poller,
		notifier: notify.Nop(),
		editors:  NewMemoryEditorRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(nav)
	}
	return nav
}

// OnChange registers a callback fired after every successful mutation, so
// hosts can re-query the tree.
func (n *Navigator) OnChange(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

func (n *Navigator) signalChange() {
	n.mu.Lock()
	listeners := make([]func(), len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// SetSelection records the host's current selection and derives the
// visibility context flags.
func (n *Navigator) SetSelection(items []*models.Item) Selection {
	sel := Selection{
		Items:            items,
		OneItemSelected:  len(items) == 1,
		TwoItemsSelected: len(items) == 2,
	}
	n.mu.Lock()
	n.selection = sel
	n.mu.Unlock()
	return sel
}

// Selection returns the most recently recorded selection.
func (n *Navigator) Selection() Selection {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selection
}

// Nodes implements TreeSource: the display projection of parent's children,
// or of the repository root when parent is nil.
func (n *Navigator) Nodes(ctx context.Context, parent *models.Item) ([]Node, error) {
	items, err := n.repo.Children(ctx, parent)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, len(items))
	for i := range items {
		nodes[i] = n.node(ctx, &items[i])
	}
	return nodes, nil
}

func (n *Navigator) node(ctx context.Context, item *models.Item) Node {
	icon := DefaultIcon
	if objectType := n.repo.ObjectType(item.TypeID); objectType != nil {
		icon = IconAsset(objectType.Icon)
	}
	return Node{
		Item:        *item,
		Label:       item.Name,
		Icon:        icon,
		ContextTags: contextTags(item),
		Collapsible: item.IsContainer(),
		URI:         n.repo.ItemURI(ctx, item, false),
	}
}

// contextTags derives the sorted, dash-joined capability tags the host keys
// command visibility on.
func contextTags(item *models.Item) string {
	if !item.IsValid() {
		return ""
	}
	tags := []string{"open", "update"}
	if item.IsContainer() {
		tags = append(tags, "create")
	} else {
		tags = append(tags, "compare")
		if item.Versioned {
			tags = append(tags, "versioned")
		} else {
			tags = append(tags, "unversioned")
		}
	}
	if !item.IsContext() {
		tags = append(tags, "delete")
	}
	sort.Strings(tags)
	return strings.Join(tags, "-")
}

// Content implements ContentSource for the read-write and read-only schemes.
func (n *Navigator) Content(ctx context.Context, u *url.URL) (string, error) {
	if u.Scheme == resourceuri.SchemeVersion {
		return n.repo.VersionContentByURI(ctx, u)
	}
	return n.repo.ContentByURI(ctx, u)
}

// Stat implements FileStatSource.
func (n *Navigator) Stat(ctx context.Context, u *url.URL) (*FileStat, error) {
	item, err := n.repo.ResourceByURI(ctx, u)
	if err != nil {
		return nil, err
	}
	created, _ := parseServerTime(item.CreationTimeStamp)
	modified, _ := parseServerTime(item.ModifiedTimeStamp)
	return &FileStat{
		Dir:      item.IsContainer(),
		Size:     item.Size,
		Created:  created,
		Modified: modified,
		ReadOnly: true,
	}, nil
}

// CreateFolder creates a child folder and notifies the outcome. The new
// folder's URI is returned on success.
func (n *Navigator) CreateFolder(ctx context.Context, parent *models.Item, name string) (*url.URL, error) {
	folder, err := n.repo.CreateFolder(ctx, parent, name)
	if err != nil {
		n.notifier.Notify(notify.LevelError, notify.Format(notify.MsgFolderCreationError, map[string]string{
			"name":     name,
			"location": parent.Path,
			"message":  repository.ServerMessage(err),
		}))
		return nil, err
	}

	n.notifier.Notify(notify.LevelInfo, notify.Format(notify.MsgFolderCreationSuccess, map[string]string{
		"name":     name,
		"location": parent.Path,
	}))
	n.signalChange()
	return resourceuri.ForItem(folder, false), nil
}

// Rename renames an item and notifies the outcome. A fresh representation is
// fetched first so the concurrency token is current. When the renamed file
// was open in an editor, the stale handle is closed and the new URI opened in
// its place.
func (n *Navigator) Rename(ctx context.Context, item *models.Item, name string) (*url.URL, error) {
	current, err := n.repo.ResourceByID(ctx, item.ID)
	if err != nil || current == nil {
		current = item
	}

	renamed, err := n.repo.Rename(ctx, current, name)
	if err != nil {
		n.notifier.Notify(notify.LevelError, notify.Format(notify.MsgRenameError, map[string]string{
			"oldName": item.Name,
			"newName": name,
			"message": repository.ServerMessage(err),
		}))
		return nil, err
	}

	newURI := resourceuri.ForItem(renamed, false)
	oldURI := resourceuri.ForItem(item, false)
	if n.editors.CloseMatching(oldURI.RawQuery) {
		n.editors.Open(newURI)
	}

	n.notifier.Notify(notify.LevelInfo, notify.Format(notify.MsgRenameSuccess, map[string]string{
		"oldName": item.Name,
		"newName": name,
	}))
	n.signalChange()
	return newURI, nil
}

// Delete soft-deletes the selected items concurrently. Each outcome is
// notified individually; the aggregate succeeds only when every item did.
// Open editors on deleted files are closed first.
func (n *Navigator) Delete(ctx context.Context, items []*models.Item) bool {
	for _, item := range items {
		n.editors.CloseMatching(resourceuri.ForItem(item, false).RawQuery)
	}

	results := make([]bool, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := n.repo.Delete(ctx, item); err != nil {
				n.notifier.Notify(notify.LevelError, notify.Format(notify.MsgRecycleBinError, map[string]string{
					"name":    item.Name,
					"message": repository.ServerMessage(err),
				}))
				return
			}
			results[i] = true
			n.notifier.Notify(notify.LevelInfo, notify.Format(notify.MsgRecycleBinSuccess, map[string]string{
				"name": item.Name,
			}))
		}()
	}
	wg.Wait()

	success := true
	for _, ok := range results {
		success = success && ok
	}
	if !success {
		n.notifier.Notify(notify.LevelError, notify.MsgDeleteError)
	}
	n.signalChange()
	return success
}

// UploadSpec names one local file to upload.
type UploadSpec struct {
	Location string
	Content  []byte
}

// Upload streams the given files to a target item concurrently. Each outcome
// is notified individually; the aggregate succeeds only when every upload
// did. When the target is a FILE being replaced, any open editor on it is
// closed first.
func (n *Navigator) Upload(ctx context.Context, item *models.Item, files []UploadSpec, expand bool, comment, version string) bool {
	results := make([]bool, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uploaded, err := n.repo.Upload(ctx, item, file.Location, file.Content, expand, comment, version)
			if err != nil {
				n.notifier.Notify(notify.LevelError, notify.Format(notify.MsgUploadError, map[string]string{
					"name":     file.Location,
					"location": item.Path,
					"message":  repository.ServerMessage(err),
				}))
				return
			}
			results[i] = true

			if item.PrimaryType == models.ItemTypeFile && uploaded != nil {
				newURI := resourceuri.ForItem(uploaded, false)
				if n.editors.CloseMatching(newURI.RawQuery) {
					n.editors.Open(newURI)
				}
			}

			message := notify.MsgUploadedMessage
			if expand {
				message = notify.MsgUploadedExpanded
			}
			n.notifier.Notify(notify.LevelInfo, notify.Format(message, map[string]string{
				"name":     file.Location,
				"location": item.Path,
			}))
		}()
	}
	wg.Wait()

	success := true
	for _, ok := range results {
		success = success && ok
	}
	n.signalChange()
	return success
}

// Download fetches content for the selection and notifies where it went. The
// caller persists the returned bytes.
func (n *Navigator) Download(ctx context.Context, items []*models.Item, destination string) ([]byte, error) {
	data, err := n.repo.Download(ctx, items)
	if err != nil {
		n.notifier.Notify(notify.LevelError, notify.MsgDownloadError)
		return nil, err
	}

	name := "selected files"
	if len(items) == 1 {
		name = items[0].Name
	}
	n.notifier.Notify(notify.LevelInfo, notify.Format(notify.MsgDownloadedMessage, map[string]string{
		"name":     name,
		"location": destination,
	}))
	return data, nil
}

// EnableVersioning submits the enable-versioning action for a file and waits
// for its terminal status.
func (n *Navigator) EnableVersioning(ctx context.Context, item *models.Item, comment, version string) bool {
	body := &models.ActionBody{
		Comment: comment,
		FileSpecifications: []models.FileSpecification{
			{Path: item.Path, FileVersion: version},
		},
	}
	return n.performVersioningAction(ctx, item, models.ActionEnableVersioning, body)
}

// DisableVersioning submits the disable-versioning action for a file and
// waits for its terminal status.
func (n *Navigator) DisableVersioning(ctx context.Context, item *models.Item, comment string) bool {
	body := &models.ActionBody{
		Comment: comment,
		Paths:   []string{item.Path},
	}
	return n.performVersioningAction(ctx, item, models.ActionDisableVersioning, body)
}

func (n *Navigator) performVersioningAction(ctx context.Context, item *models.Item, act models.Action, body *models.ActionBody) bool {
	success := notify.MsgEnabledVersioning
	failure := notify.MsgEnableVersioningError
	if act == models.ActionDisableVersioning {
		success = notify.MsgDisabledVersioning
		failure = notify.MsgDisableVersioningError
	}

	token, err := n.repo.PerformBatchAction(ctx, act, body)
	if err != nil || token == "" {
		n.notifier.Notify(notify.LevelError, notify.Format(failure, map[string]string{
			"name":    item.Name,
			"message": repository.ServerMessage(err),
		}))
		return false
	}

	status, err := n.poller.Poll(ctx, action.Params{Token: token, Data: item})
	if err != nil {
		name := item.Name
		message := ""
		if status != nil && len(status.Details) > 0 {
			name = status.Details[0].ItemName
			message = status.Details[0].Message
		}
		n.notifier.Notify(notify.LevelWarn, notify.Format(failure, map[string]string{
			"name":    name,
			"message": message,
		}))
		return false
	}

	name := item.Name
	if len(status.Details) > 0 && status.Details[0].ItemName != "" {
		name = status.Details[0].ItemName
	}
	n.notifier.Notify(notify.LevelInfo, notify.Format(success, map[string]string{
		"name": name,
	}))
	n.signalChange()
	return true
}
