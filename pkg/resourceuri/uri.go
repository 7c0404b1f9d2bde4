// Package resourceuri maps repository identifiers to the addressable URIs
// consumed by the host editor, and back.
package resourceuri

import (
	"net/url"
	"path"
	"strings"

	"github.com/clinaccel/reponav/pkg/models"
)

// URI schemes. Read-only and read-write schemes are distinct so the host can
// apply different capabilities to documents opened through them.
const (
	Scheme         = "sasHca"
	SchemeReadOnly = "sasHcaReadOnly"
	SchemeVersion  = "sasHcaVersion"
)

const (
	idPrefix      = "id="
	versionPrefix = "version="
)

// ForItem produces the addressable URI for a repository item. The resource id
// travels in the query so renames do not invalidate open documents.
func ForItem(item *models.Item, readOnly bool) *url.URL {
	scheme := Scheme
	if readOnly {
		scheme = SchemeReadOnly
	}
	return &url.URL{
		Scheme:   scheme,
		Path:     "/" + item.Name,
		RawQuery: idPrefix + item.ID,
	}
}

// ForVersion produces the addressable URI for one version of a file. The
// display basename carries a "-v<version>" marker inserted before the
// original extension, e.g. "report.pdf" v1.1 becomes "report-v1.1.pdf".
func ForVersion(v *models.VersionHistoryItem) *url.URL {
	ext := path.Ext(v.Name)
	stem := strings.TrimSuffix(v.Name, ext)
	return &url.URL{
		Scheme:   SchemeVersion,
		Path:     "/" + stem + "-v" + v.FileVersion + ext,
		RawQuery: idPrefix + v.FileID,
		Fragment: versionPrefix + v.FileVersion,
	}
}

// ResourceID extracts the resource id from a URI's query component.
func ResourceID(u *url.URL) string {
	return strings.TrimPrefix(u.RawQuery, idPrefix)
}

// VersionFragment extracts the file version from a URI's fragment component.
func VersionFragment(u *url.URL) string {
	return strings.TrimPrefix(u.Fragment, versionPrefix)
}

// IsReadOnly reports whether the URI was encoded with the read-only scheme.
func IsReadOnly(u *url.URL) bool {
	return u.Scheme == SchemeReadOnly
}
