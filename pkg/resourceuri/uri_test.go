package resourceuri

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinaccel/reponav/pkg/models"
)

func TestForItem_RoundTrip(t *testing.T) {
	item := &models.Item{ID: "abc-123", Name: "study.sas", PrimaryType: models.ItemTypeFile}

	for _, readOnly := range []bool{false, true} {
		u := ForItem(item, readOnly)
		assert.Equal(t, item.ID, ResourceID(u))
	}

	assert.Equal(t, Scheme, ForItem(item, false).Scheme)
	assert.Equal(t, SchemeReadOnly, ForItem(item, true).Scheme)
}

func TestForItem_SurvivesReparse(t *testing.T) {
	item := &models.Item{ID: "f0a1", Name: "notes.txt"}
	u := ForItem(item, false)

	parsed, err := url.Parse(u.String())
	require.NoError(t, err)
	assert.Equal(t, "f0a1", ResourceID(parsed))
	assert.False(t, IsReadOnly(parsed))
}

func TestForVersion_RoundTrip(t *testing.T) {
	v := &models.VersionHistoryItem{Name: "report.pdf", FileID: "file-9", FileVersion: "1.1"}
	u := ForVersion(v)

	assert.Equal(t, SchemeVersion, u.Scheme)
	assert.Equal(t, "/report-v1.1.pdf", u.Path)
	assert.Equal(t, "file-9", ResourceID(u))
	assert.Equal(t, "1.1", VersionFragment(u))
}

func TestForVersion_NoExtension(t *testing.T) {
	v := &models.VersionHistoryItem{Name: "README", FileID: "file-1", FileVersion: "2.0"}
	u := ForVersion(v)

	assert.Equal(t, "/README-v2.0", u.Path)
	assert.Equal(t, "2.0", VersionFragment(u))
}
