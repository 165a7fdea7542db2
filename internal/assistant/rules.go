package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"go-jewel-billing/internal/billing"
)

// ItemSpec is a new item as read from text, before rates are applied.
type ItemSpec struct {
	Description string
	WeightGm    float64
	Karat       billing.Karat
}

// Fragment is what one rule read from the message. Zero values mean the
// rule found nothing for that field.
type Fragment struct {
	CustomerName   string
	CustomerMobile string
	Items          []ItemSpec
	OldItems       []billing.OldItem
	MiscItems      []billing.MiscItem
	MakingPct      *float64
	Hallmark       *float64
	Rate           *float64
}

// Rule extracts one kind of detail. Rules sharing a Group are exclusive:
// once one of them matches, later rules of that group are skipped.
type Rule struct {
	Name    string
	Group   string
	Extract func(text string) (Fragment, bool)
}

// DefaultRules is the precedence order used by BuildDraft. The karat-first
// item form runs before the quantity form so "22K" is never read as a count.
var DefaultRules = []Rule{
	{Name: "customer", Extract: extractCustomer},
	{Name: "karat_items", Group: "items", Extract: extractKaratItems},
	{Name: "quantity_items", Group: "items", Extract: extractQuantityItems},
	{Name: "making", Extract: extractMaking},
	{Name: "hallmark", Extract: extractHallmark},
	{Name: "rate", Extract: extractRate},
	{Name: "old_items", Extract: extractOldItems},
	{Name: "misc_items", Extract: extractMiscItems},
}

const (
	maxQuantity  = 50
	defaultKarat = billing.Karat18
)

var (
	customerColonRe = regexp.MustCompile(`(?i)customer\s*:\s*([^\n,]+?)\s+(\d{8,15})`)
	forNameRe       = regexp.MustCompile(`(?i)\bfor\s+([a-z][a-z\s'.-]{1,60})`)
	mobileRe        = regexp.MustCompile(`(?i)\bmobile(?:\s+number)?\s*[:\-]?\s*(\d{8,15})\b`)
	nameTailRe      = regexp.MustCompile(`(?i)\s*\b(?:and\s+)?(?:mobile|phone|with|number)\b.*$`)

	weightUnit = `g(?:rams?|ms?)?\b`

	karatItemRe = regexp.MustCompile(`(?i)\b(\d{2})\s*(?:karat|kt|k)\b\s*(\d+(?:\.\d+)?)\s*` + weightUnit + `\s*([a-z][a-z ]*)?`)
	qtyItemRe   = regexp.MustCompile(`(?i)\b(\d+)\s*x\s*([a-z][a-z ]*?)\s*(?:each\s*)?(\d+(?:\.\d+)?)\s*` + weightUnit + `\s*(\d{2}\s*k\b|silver)?`)
	makingRe    = regexp.MustCompile(`(?i)\b(?:making(?:\s+charges?)?|mc)\s*:?\s*(\d+(?:\.\d+)?)\s*%`)
	hallmarkRe  = regexp.MustCompile(`(?i)\b(?:hallmark|hm)\s*:?\s*(\d+(?:\.\d+)?)`)
	rateRe      = regexp.MustCompile(`@\s*(\d+(?:\.\d+)?)`)
	oldItemRe   = regexp.MustCompile(`(?i)\b(?:old|exchange)\s*:?\s*([a-z][a-z ]*?)?\s*(\d+(?:\.\d+)?)\s*` + weightUnit + `\s*@\s*(\d+(?:\.\d+)?)`)
	miscItemRe  = regexp.MustCompile(`(?i)\b(?:misc|service|charge)\s*:?\s*([a-z][a-z ]*?)?\s*(\d+(?:\.\d+)?)`)
	nonDigitRe  = regexp.MustCompile(`\D+`)
)

var descriptionCuts = []string{" for ", " customer", " mobile", " old", " exchange", " misc", " making", " mc ", " hm", " hallmark", ",", ":", "- ", " each"}

func extractCustomer(text string) (Fragment, bool) {
	if m := customerColonRe.FindStringSubmatch(text); m != nil {
		return Fragment{CustomerName: cleanCustomerName(m[1]), CustomerMobile: cleanMobile(m[2])}, true
	}
	name := forNameRe.FindStringSubmatch(text)
	mobile := mobileRe.FindStringSubmatch(text)
	if name == nil || mobile == nil {
		return Fragment{}, false
	}
	cleaned := cleanCustomerName(name[1])
	if cleaned == "" {
		return Fragment{}, false
	}
	return Fragment{CustomerName: cleaned, CustomerMobile: cleanMobile(mobile[1])}, true
}

func extractKaratItems(text string) (Fragment, bool) {
	var f Fragment
	for _, m := range karatItemRe.FindAllStringSubmatch(text, -1) {
		k, ok := billing.ParseKarat(m[1] + "K")
		if !ok {
			continue
		}
		f.Items = append(f.Items, ItemSpec{
			Description: cleanDescription(m[3]),
			WeightGm:    parseNumber(m[2]),
			Karat:       k,
		})
	}
	return f, len(f.Items) > 0
}

func extractQuantityItems(text string) (Fragment, bool) {
	var f Fragment
	for _, m := range qtyItemRe.FindAllStringSubmatch(text, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty < 1 {
			qty = 1
		}
		if qty > maxQuantity {
			qty = maxQuantity
		}
		k := defaultKarat
		if parsed, ok := billing.ParseKarat(m[4]); ok {
			k = parsed
		}
		spec := ItemSpec{
			Description: cleanDescription(m[2]),
			WeightGm:    parseNumber(m[3]),
			Karat:       k,
		}
		for i := 0; i < qty; i++ {
			f.Items = append(f.Items, spec)
		}
	}
	return f, len(f.Items) > 0
}

func extractMaking(text string) (Fragment, bool) {
	m := makingRe.FindStringSubmatch(text)
	if m == nil {
		return Fragment{}, false
	}
	v := parseNumber(m[1])
	return Fragment{MakingPct: &v}, true
}

func extractHallmark(text string) (Fragment, bool) {
	m := hallmarkRe.FindStringSubmatch(text)
	if m == nil {
		return Fragment{}, false
	}
	v := parseNumber(m[1])
	return Fragment{Hallmark: &v}, true
}

// extractRate reads an explicit "@6100" for new items. Old item clauses
// carry their own "@rate" and are removed first.
func extractRate(text string) (Fragment, bool) {
	stripped := oldItemRe.ReplaceAllString(text, " ")
	m := rateRe.FindStringSubmatch(stripped)
	if m == nil {
		return Fragment{}, false
	}
	v := parseNumber(m[1])
	return Fragment{Rate: &v}, true
}

func extractOldItems(text string) (Fragment, bool) {
	var f Fragment
	for _, m := range oldItemRe.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[1])
		if desc == "" {
			desc = billing.DefaultOldItemDescription
		}
		f.OldItems = append(f.OldItems, billing.OldItem{
			Description: desc,
			WeightGm:    parseNumber(m[2]),
			RatePerGm:   parseNumber(m[3]),
		})
	}
	return f, len(f.OldItems) > 0
}

func extractMiscItems(text string) (Fragment, bool) {
	var f Fragment
	lower := strings.ToLower(text)
	for _, loc := range miscItemRe.FindAllStringSubmatchIndex(text, -1) {
		// "making charge 12%" is a making charge, not a misc line
		if strings.HasSuffix(strings.TrimSpace(lower[:loc[0]]), "making") {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(text[loc[1]:]), "%") {
			continue
		}
		desc := ""
		if loc[2] >= 0 {
			desc = strings.TrimSpace(text[loc[2]:loc[3]])
		}
		if desc == "" {
			desc = billing.DefaultMiscItemDescription
		}
		f.MiscItems = append(f.MiscItems, billing.MiscItem{
			Description: desc,
			Amount:      parseNumber(text[loc[4]:loc[5]]),
		})
	}
	return f, len(f.MiscItems) > 0
}

// Extract runs rules in order and merges their fragments. Later rules
// only fill fields earlier ones left empty.
func Extract(text string, rules []Rule) Fragment {
	var out Fragment
	claimed := make(map[string]bool)
	for _, r := range rules {
		if r.Group != "" && claimed[r.Group] {
			continue
		}
		f, ok := r.Extract(text)
		if !ok {
			continue
		}
		if r.Group != "" {
			claimed[r.Group] = true
		}
		out.merge(f)
	}
	return out
}

func (f *Fragment) merge(o Fragment) {
	if f.CustomerName == "" {
		f.CustomerName = o.CustomerName
	}
	if f.CustomerMobile == "" {
		f.CustomerMobile = o.CustomerMobile
	}
	f.Items = append(f.Items, o.Items...)
	f.OldItems = append(f.OldItems, o.OldItems...)
	f.MiscItems = append(f.MiscItems, o.MiscItems...)
	if f.MakingPct == nil {
		f.MakingPct = o.MakingPct
	}
	if f.Hallmark == nil {
		f.Hallmark = o.Hallmark
	}
	if f.Rate == nil {
		f.Rate = o.Rate
	}
}

func cleanDescription(desc string) string {
	base := " " + strings.TrimSpace(desc)
	lower := strings.ToLower(base)
	cut := len(base)
	for _, k := range descriptionCuts {
		if i := strings.Index(lower, k); i != -1 && i < cut {
			cut = i
		}
	}
	words := strings.Fields(base[:cut])
	if len(words) > 3 {
		words = words[:3]
	}
	if len(words) == 0 {
		return billing.DefaultNewItemDescription
	}
	return strings.Join(words, " ")
}

func cleanCustomerName(name string) string {
	n := strings.Trim(strings.TrimSpace(name), `"`)
	n = nameTailRe.ReplaceAllString(n, "")
	n = strings.Join(strings.Fields(n), " ")
	return strings.TrimRight(n, " .,-")
}

func cleanMobile(mobile string) string {
	return nonDigitRe.ReplaceAllString(mobile, "")
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
