package nav

import (
	"context"
	"strings"

	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
	"github.com/clinaccel/reponav/pkg/resourceuri"
)

// VersionEntry is the display projection of one entry in a file's version
// chain. Entries carry the owning file's name so the panel can render
// version URIs and labels without re-fetching the file.
type VersionEntry struct {
	Version models.VersionHistoryItem
	Label   string
	Comment string
}

// VersionPanel is the state of the version-history view for one selection.
// When Entries is empty, Message explains why.
type VersionPanel struct {
	Description string
	Message     string
	Entries     []VersionEntry
}

// VersionPanelFor builds the version-history panel for the selected item.
// Containers are unsupported, unversioned files report so, and versioned
// files list every version annotated with the file's name.
func (n *Navigator) VersionPanelFor(ctx context.Context, item *models.Item) (*VersionPanel, error) {
	if item == nil || item.IsContainer() {
		panel := &VersionPanel{Message: notify.MsgVersioningUnsupported}
		if item != nil {
			panel.Description = item.Name
		}
		return panel, nil
	}

	panel := &VersionPanel{Description: item.Name}
	if !item.Versioned {
		panel.Message = notify.MsgFileNotVersioned
		return panel, nil
	}

	history, err := n.repo.VersionHistory(ctx, item)
	if err != nil {
		return nil, err
	}
	if history == nil {
		panel.Message = notify.MsgVersionHistoryError
		return panel, nil
	}

	panel.Message = notify.Format(notify.MsgItemLocation, map[string]string{"location": item.Location})
	panel.Entries = make([]VersionEntry, len(history.Items))
	for i, version := range history.Items {
		version.Name = item.Name
		panel.Entries[i] = VersionEntry{
			Version: version,
			Label:   "v" + version.FileVersion,
			Comment: version.Comment,
		}
	}
	return panel, nil
}

// VersionURI produces the addressable URI for one version entry.
func (n *Navigator) VersionURI(entry *VersionEntry) string {
	return resourceuri.ForVersion(&entry.Version).String()
}

// VersionTooltip renders the structured summary shown for one version entry:
// author, creation date, size, and comment, from the version-detail fetch.
func (n *Navigator) VersionTooltip(ctx context.Context, entry *VersionEntry) (string, error) {
	detail, err := n.repo.VersionDetail(ctx, entry.Version.FileID, entry.Version.FileVersion)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	writeTooltipField(&b, "Version created by:", detail.ModifiedByDisplayName)
	writeTooltipField(&b, "Date version created:", FormatDate(detail.ModifiedTimeStamp))
	writeTooltipField(&b, "Size:", FormatBytes(detail.FileSize, 0))
	writeTooltipField(&b, "Comment:", entry.Comment)
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeTooltipField(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString("\n   ")
	b.WriteString(value)
	b.WriteString("\n")
}

// DownloadVersion fetches the raw content of one version entry and notifies
// where it went. The caller persists the returned bytes.
func (n *Navigator) DownloadVersion(ctx context.Context, entry *VersionEntry, destination string) ([]byte, error) {
	data, err := n.repo.DownloadVersion(ctx, &entry.Version)
	if err != nil {
		n.notifier.Notify(notify.LevelError, notify.MsgDownloadError)
		return nil, err
	}
	n.notifier.Notify(notify.LevelInfo, notify.Format(notify.MsgDownloadedMessage, map[string]string{
		"name":     entry.Version.Name,
		"location": destination,
	}))
	return data, nil
}
