package assets

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Category is a coarse document family accepted for upload.
type Category string

const (
	CategoryPDF  Category = "PDF"
	CategoryDOC  Category = "DOC"
	CategoryDOCX Category = "DOCX"
)

type categoryRule struct {
	category    Category
	contentType string
	magic       [][]byte
	mimes       []string // detected type must be exactly one of these
	// container is checked when detection stops at a generic container type.
	container func(data []byte) bool
}

var rulesByExt = map[string]categoryRule{
	".pdf": {
		category:    CategoryPDF,
		contentType: "application/pdf",
		magic:       [][]byte{{0x25, 0x50, 0x44, 0x46}}, // %PDF
		mimes:       []string{"application/pdf"},
	},
	".doc": {
		category:    CategoryDOC,
		contentType: "application/msword",
		magic:       [][]byte{{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE compound document
		mimes:       []string{"application/msword", "application/x-ole-storage"},
	},
	".docx": {
		category:    CategoryDOCX,
		contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		magic:       [][]byte{{0x50, 0x4B, 0x03, 0x04}}, // PK zip
		mimes: []string{
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/zip",
		},
		container: isWordprocessingZip,
	},
}

// Classify checks the extension whitelist, the magic bytes and the sniffed MIME type,
// and returns the category and the content type to store the object with.
func Classify(fileName string, data []byte, allowed []Category) (Category, string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return "", "", fmt.Errorf("%w: file has no extension", ErrInvalidAsset)
	}
	rule, ok := rulesByExt[ext]
	if !ok || !containsCategory(allowed, rule.category) {
		return "", "", fmt.Errorf("%w: file type %s not allowed", ErrInvalidAsset, ext)
	}

	if !hasAnyPrefix(data, rule.magic) {
		return "", "", fmt.Errorf("%w: content does not match %s", ErrInvalidAsset, ext)
	}

	detected := mimetype.Detect(data)
	if !matchesAny(detected, rule.mimes) {
		return "", "", fmt.Errorf("%w: detected %s for %s", ErrInvalidAsset, detected.String(), ext)
	}
	if detected.Is("application/zip") && rule.container != nil && !rule.container(data) {
		return "", "", fmt.Errorf("%w: archive is not a Word document", ErrInvalidAsset)
	}

	return rule.category, rule.contentType, nil
}

func containsCategory(allowed []Category, c Category) bool {
	for _, a := range allowed {
		if a == c {
			return true
		}
	}
	return false
}

func hasAnyPrefix(data []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// matchesAny compares the detected type itself, not its parents, so an .xls or .msi
// (children of x-ole-storage) or an .xlsx (child of zip) is not taken for a Word file.
func matchesAny(detected *mimetype.MIME, accepted []string) bool {
	for _, want := range accepted {
		if detected.Is(want) {
			return true
		}
	}
	return false
}

// isWordprocessingZip reports whether a zip carries the OOXML parts of a Word document.
func isWordprocessingZip(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	var contentTypes, document bool
	for _, f := range zr.File {
		switch f.Name {
		case "[Content_Types].xml":
			contentTypes = true
		case "word/document.xml":
			document = true
		}
	}
	return contentTypes && document
}
