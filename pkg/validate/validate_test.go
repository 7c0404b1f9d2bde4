package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderName(t *testing.T) {
	assert.NoError(t, FolderName("output"))
	assert.NoError(t, FolderName("Study 42 (final)"))

	assert.ErrorIs(t, FolderName(strings.Repeat("a", 256)), ErrFolderNameLength)
	assert.NoError(t, FolderName(strings.Repeat("a", 255)))

	assert.ErrorIs(t, FolderName(".hidden"), ErrFolderNameLeadingDot)
	assert.ErrorIs(t, FolderName(" padded"), ErrFolderNameLeadingSpace)
	assert.ErrorIs(t, FolderName("padded "), ErrFolderNameTrailingSpace)

	assert.ErrorIs(t, FolderName(""), ErrFolderNameCharacters)
	assert.ErrorIs(t, FolderName("a/b"), ErrFolderNameCharacters)
	assert.ErrorIs(t, FolderName("a:b"), ErrFolderNameCharacters)
	assert.ErrorIs(t, FolderName("a?b"), ErrFolderNameCharacters)
	assert.ErrorIs(t, FolderName("a​b"), ErrFolderNameCharacters)
}

func TestFileName(t *testing.T) {
	assert.NoError(t, FileName("report.sas"))
	assert.NoError(t, FileName("summary table.csv"))

	assert.ErrorIs(t, FileName(""), ErrFileName)
	assert.ErrorIs(t, FileName("noextension"), ErrFileName)
	assert.ErrorIs(t, FileName("bad/name.sas"), ErrFileName)
	assert.ErrorIs(t, FileName("bad#name.sas"), ErrFileName)
}

func TestComment(t *testing.T) {
	assert.NoError(t, Comment(""))
	assert.NoError(t, Comment("first draft"))
	assert.NoError(t, Comment(strings.Repeat("x", 1024)))
	assert.ErrorIs(t, Comment(strings.Repeat("x", 1025)), ErrCommentLength)
}

func TestVersion(t *testing.T) {
	assert.NoError(t, Version(""))
	assert.NoError(t, Version("1.0"))
	assert.NoError(t, Version("12.34"))

	assert.ErrorIs(t, Version("1"), ErrVersionFormat)
	assert.ErrorIs(t, Version("1.0.0"), ErrVersionFormat)
	assert.ErrorIs(t, Version("v1.0"), ErrVersionFormat)
	assert.ErrorIs(t, Version("1.x"), ErrVersionFormat)
}
