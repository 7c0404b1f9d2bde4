// Package validate enforces the repository's input rules before any network
// call. Front ends surface the returned errors inline at the input point.
package validate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation failures, phrased for direct display.
var (
	ErrFolderNameLength        = errors.New("the folder name cannot contain more than 255 characters")
	ErrFolderNameLeadingDot    = errors.New("the folder name cannot begin with a period")
	ErrFolderNameLeadingSpace  = errors.New("the folder name cannot begin with a space")
	ErrFolderNameTrailingSpace = errors.New("the folder name cannot end with a space")
	ErrFolderNameCharacters    = errors.New("the folder name contains unsupported characters")
	ErrFileName                = errors.New("invalid file name")
	ErrCommentLength           = errors.New("the comment cannot contain more than 1024 characters")
	ErrVersionFormat           = errors.New("please enter a valid version (ex: 1.0, etc.)")
)

var (
	// fileNamePattern requires a basename with an extension and none of the
	// path or URI delimiter characters.
	fileNamePattern = regexp.MustCompile(`^[^/<>;\\{}?#]+\.\w+$`)
	// versionPattern accepts major.minor numeric versions.
	versionPattern = regexp.MustCompile(`^\d+\.\d+$`)
	// forbiddenNameChars are rejected anywhere in a folder name: quoting and
	// path delimiters plus the Unicode space-like codepoints the server
	// refuses.
	forbiddenNameChars = "\u0022\u0024\u002A\u002F\u003A\u003C\u003E\u003F\u005C\u007C\u007F" +
		"\u00A0\u1680\u180E\u2000\u2001\u2002\u2003\u2004\u2005\u2006\u2008" +
		"\u2009\u200A\u200B\u2028\u2029\u205F\u3000"
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("foldername", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), forbiddenNameChars)
	}))
	must(v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		return fileNamePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("fileversion", func(fl validator.FieldLevel) bool {
		return versionPattern.MatchString(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

type folderNameInput struct {
	Name string `validate:"required,max=255,foldername"`
}

type fileNameInput struct {
	Name string `validate:"required,filename"`
}

type commentInput struct {
	Comment string `validate:"max=1024"`
}

type versionInput struct {
	Version string `validate:"omitempty,fileversion"`
}

// FolderName checks a new or renamed folder name.
func FolderName(name string) error {
	if strings.HasPrefix(name, ".") {
		return ErrFolderNameLeadingDot
	}
	if strings.HasPrefix(name, " ") {
		return ErrFolderNameLeadingSpace
	}
	if strings.HasSuffix(name, " ") {
		return ErrFolderNameTrailingSpace
	}

	err := inputValidator.Struct(folderNameInput{Name: name})
	if err == nil {
		return nil
	}
	if tagged(err, "max") {
		return ErrFolderNameLength
	}
	return ErrFolderNameCharacters
}

// FileName checks a new or renamed file name. File names must carry an
// extension.
func FileName(name string) error {
	if err := inputValidator.Struct(fileNameInput{Name: name}); err != nil {
		return ErrFileName
	}
	return nil
}

// Comment checks an upload or versioning comment. Empty comments are allowed.
func Comment(comment string) error {
	if err := inputValidator.Struct(commentInput{Comment: comment}); err != nil {
		return ErrCommentLength
	}
	return nil
}

// Version checks a file version in major.minor form. Empty versions are
// allowed; the server then assigns the next number.
func Version(version string) error {
	if err := inputValidator.Struct(versionInput{Version: version}); err != nil {
		return ErrVersionFormat
	}
	return nil
}

func tagged(err error, tag string) bool {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return false
	}
	for _, fieldError := range fieldErrors {
		if fieldError.Tag() == tag {
			return true
		}
	}
	return false
}
