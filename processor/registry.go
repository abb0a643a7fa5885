package processor

import (
	"regexp"

	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// HandlerFunc processes a matched formula in a table cell.
// It receives the table, 1-based row/col and the formula without "=".
type HandlerFunc func(t *sheet.Table, row, col int, formula string) error

// Registry holds formula pattern → handler mappings.
type Registry struct {
	handlers []entry
}

type entry struct {
	pattern *regexp.Regexp
	handler HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler for formulas matching pattern.
// Handlers are checked in registration order; the first match wins.
func (r *Registry) Register(pattern *regexp.Regexp, handler HandlerFunc) {
	r.handlers = append(r.handlers, entry{pattern: pattern, handler: handler})
}

// Process checks the formula against all registered patterns.
// If a match is found, the corresponding handler is called.
// Returns true if a handler was executed.
func (r *Registry) Process(t *sheet.Table, row, col int, formula string) (bool, error) {
	for _, e := range r.handlers {
		if e.pattern.MatchString(formula) {
			if err := e.handler(t, row, col, formula); err != nil {
				return false, err
			}

			return true, nil
		}
	}

	return false, nil
}

// Rewrite returns a handler that replaces every match of pattern in the
// formula with repl and stores the result back in the cell.
func Rewrite(pattern *regexp.Regexp, repl string) HandlerFunc {
	return func(t *sheet.Table, row, col int, formula string) error {
		return t.SetFormula(row, col, pattern.ReplaceAllLiteralString(formula, repl))
	}
}
