package report

import (
	"errors"

	"github.com/ManakiYoshihara/GAS-con-test/document"
	"github.com/ManakiYoshihara/GAS-con-test/drive"
	"github.com/ManakiYoshihara/GAS-con-test/merge"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
	"github.com/ManakiYoshihara/GAS-con-test/template"
)

var notFound = []error{
	sheet.ErrNotFound,
	merge.ErrHeaderNotFound,
	template.ErrTemplateMissing,
	drive.ErrNotFound,
	document.ErrNotFound,
}

// IsNotFound reports whether err means an expected table, header, template,
// folder, file or document is absent. Such failures are logged and end the
// run without an error.
func IsNotFound(err error) bool {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
