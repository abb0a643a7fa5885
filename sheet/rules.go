package sheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RuleKind selects how a conditional rule decides whether to apply.
type RuleKind int

const (
	// FormulaRule applies when Expr, a formula relative to the first cell of
	// the range, is true.
	FormulaRule RuleKind = iota
	// TextRule applies when the cell text equals Expr.
	TextRule
	// OtherRule is any rule kind this package does not author.
	OtherRule
)

// Rule is a conditional-format rule that paints a background.
type Rule struct {
	Ranges     []string
	Kind       RuleKind
	Expr       string
	Background string
}

// Key identifies a rule for deduplication: its rendered range set and its
// background color.
func (r Rule) Key() string {
	return strings.Join(r.Ranges, " ") + "|" + NormalizeColor(r.Background)
}

// Rules lists the conditional rules of the table, ordered by range.
// Rule groups that share an identical range are reported once.
func (t *Table) Rules() ([]Rule, error) {
	groups, err := t.wb.file.GetConditionalFormats(t.sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: conditional formats: %w", t.Name(), err)
	}
	refs := make([]string, 0, len(groups))
	for ref := range groups {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var rules []Rule
	for _, ref := range refs {
		for _, opt := range groups[ref] {
			rule := Rule{Ranges: strings.Fields(ref), Kind: OtherRule}
			switch {
			case opt.Type == "formula":
				rule.Kind, rule.Expr = FormulaRule, opt.Criteria
			case opt.Type == "cell" && opt.Criteria == "equal to":
				rule.Kind, rule.Expr = TextRule, unquote(opt.Value)
			}
			if opt.Format != nil {
				style, err := t.wb.file.GetConditionalStyle(*opt.Format)
				if err != nil {
					return nil, fmt.Errorf("%s: conditional style %d: %w", t.Name(), *opt.Format, err)
				}
				if len(style.Fill.Color) > 0 {
					rule.Background = NormalizeColor(style.Fill.Color[0])
				}
			}
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// AddRules installs the rules that are not already present, comparing by Key,
// and returns how many were added.
func (t *Table) AddRules(rules []Rule) (int, error) {
	existing, err := t.Rules()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.Key()] = true
	}

	pending := make(map[string][]excelize.ConditionalFormatOptions)
	var order []string
	added := 0
	for _, r := range rules {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		opt, err := t.ruleOptions(r)
		if err != nil {
			return added, err
		}
		ref := strings.Join(r.Ranges, " ")
		if _, ok := pending[ref]; !ok {
			order = append(order, ref)
		}
		pending[ref] = append(pending[ref], opt)
		added++
	}

	groups, err := t.wb.file.GetConditionalFormats(t.sheet)
	if err != nil {
		return 0, fmt.Errorf("%s: conditional formats: %w", t.Name(), err)
	}
	for _, ref := range order {
		opts := pending[ref]
		// a second group with the same range would hide the first from
		// GetConditionalFormats, so same-ranged rules are merged into one
		if prior, ok := groups[ref]; ok {
			if err := t.wb.file.UnsetConditionalFormat(t.sheet, ref); err != nil {
				return 0, fmt.Errorf("%s!%s: unset rules: %w", t.Name(), ref, err)
			}
			opts = append(prior, opts...)
		}
		if err := t.wb.file.SetConditionalFormat(t.sheet, ref, opts); err != nil {
			return 0, fmt.Errorf("%s!%s: set rules: %w", t.Name(), ref, err)
		}
	}
	return added, nil
}

func (t *Table) ruleOptions(r Rule) (excelize.ConditionalFormatOptions, error) {
	style, err := t.wb.styles.Highlight(r.Background)
	if err != nil {
		return excelize.ConditionalFormatOptions{}, fmt.Errorf("%s: highlight %s: %w", t.Name(), r.Background, err)
	}
	switch r.Kind {
	case FormulaRule:
		return excelize.ConditionalFormatOptions{
			Type: "formula", Criteria: strings.TrimPrefix(r.Expr, "="), Format: &style,
		}, nil
	case TextRule:
		return excelize.ConditionalFormatOptions{
			Type: "cell", Criteria: "==", Value: quote(r.Expr), Format: &style,
		}, nil
	}
	return excelize.ConditionalFormatOptions{}, fmt.Errorf("%s: unsupported rule kind %d", t.Name(), r.Kind)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
