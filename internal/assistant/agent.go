package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/database"

	"github.com/rs/zerolog"
)

// Intent names the branch a message was handled by.
type Intent string

const (
	IntentDraftBill         Intent = "draft_bill"
	IntentSetRate           Intent = "set_rate"
	IntentMonthlySummary    Intent = "monthly_summary"
	IntentCompareMonths     Intent = "compare_months"
	IntentPurchasesByName   Intent = "purchases_by_name"
	IntentPurchasesByMobile Intent = "purchases_by_mobile"
	IntentRateQuery         Intent = "rate_query"
	IntentLLM               Intent = "llm"
	IntentHelp              Intent = "help"
)

const (
	helpText           = "I can help with rates, monthly summaries, or generate a draft bill from a prompt."
	parseHelpText      = "Couldn't parse items. Try: 'generate bill 22K 10g ring, MC 12%, HM 100, customer: Asha 9876543210'"
	draftNeedsCustomer = "Draft bill prepared. Please provide customer name and mobile, then Open Billing."
	draftReady         = "Draft bill prepared. Click Open Billing to review."

	maxNameResults   = 5
	maxMobileResults = 10
)

var ErrEmptyMessage = errors.New("message is empty")

// Store is the data the assistant reads and the one write it performs (rates).
type Store interface {
	RateTable(ctx context.Context) (billing.RateTable, error)
	UpsertRates(ctx context.Context, rates map[billing.Karat]float64) error
	MonthSummary(ctx context.Context, year, month int) (*database.MonthSummary, error)
	CompareMonths(ctx context.Context, now time.Time) (*database.MonthComparison, error)
	PurchasesByName(ctx context.Context, name string, minTotal float64, year int) ([]database.Purchase, error)
	CustomerWithPurchases(ctx context.Context, mobile string) (*database.CustomerHistory, error)
}

// Reply is the assistant's answer. Bill and Totals are set for drafts only.
type Reply struct {
	Text         string              `json:"text"`
	Intent       Intent              `json:"intent"`
	Bill         *billing.BillInput  `json:"bill,omitempty"`
	Totals       *billing.BillTotals `json:"totals,omitempty"`
	NeedCustomer bool                `json:"needCustomer,omitempty"`
	Warnings     []billing.Warning   `json:"warnings,omitempty"`
}

// Agent answers shop questions locally and falls back to a Summarizer when one is configured.
type Agent struct {
	store      Store
	summarizer Summarizer
	defaults   Defaults
	log        zerolog.Logger
	now        func() time.Time
}

// NewAgent builds an agent. summarizer may be nil, in which case every reply is computed locally.
func NewAgent(store Store, summarizer Summarizer, defaults Defaults, log zerolog.Logger) *Agent {
	return &Agent{store: store, summarizer: summarizer, defaults: defaults, log: log, now: time.Now}
}

type handler func(ctx context.Context, text string) (*Reply, bool, error)

// Respond routes text through the intents in precedence order; the first that accepts it answers.
func (a *Agent) Respond(ctx context.Context, text string) (*Reply, error) {
	text = normalizeText(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrEmptyMessage
	}

	for _, h := range []handler{
		a.draftBill,
		a.setRate,
		a.monthlySummary,
		a.compareMonths,
		a.purchasesByName,
		a.purchasesByMobile,
		a.rateQuery,
		a.llmFallback,
	} {
		reply, ok, err := h(ctx, text)
		if err != nil {
			return nil, err
		}
		if ok {
			return reply, nil
		}
	}
	return &Reply{Text: helpText, Intent: IntentHelp}, nil
}

var (
	generateRe  = regexp.MustCompile(`(?i)\b(generate|create|make)\b`)
	billRe      = regexp.MustCompile(`(?i)\b(bill|invoice)\b`)
	setRateRe   = regexp.MustCompile(`(?i)\b(?:set|update)\s+(?:rate\s+(?:for|of)\s+)?(\d{2}\s*(?:karat|kt|k)|silver)\s*(?:rate\s*)?(?:to|=)\s*(\d+(?:\.\d+)?)`)
	summaryRe   = regexp.MustCompile(`(?i)\b(summary|summarise|summarize|monthly|report|reports)\b`)
	compareRe   = regexp.MustCompile(`(?i)\bcompare\b`)
	monthWordRe = regexp.MustCompile(`(?i)\bmonths?\b`)
	byNameRe    = regexp.MustCompile(`(?i)find\s+all\s+([a-z][a-z\s'.-]{1,60}?)\s+purchases\s+above\s+(\d+(?:\.\d+)?)\s*(?:this\s+year|(\d{4}))?`)
	rateWordRe  = regexp.MustCompile(`(?i)\b(rate|rates|price)\b`)
	rateKaratRe = regexp.MustCompile(`(?i)\b(\d{2})\s*(?:karat|kt|k)\b|\bsilver\b`)
	webQueryRe  = regexp.MustCompile(`(?i)\b(web|online|google)\b`)
	yearMonthRe = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})\b`)
	thisMonthRe = regexp.MustCompile(`(?i)\b(this|current)\s+month\b`)
	googleRe    = regexp.MustCompile(`(?i)google`)
)

var byMobileRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)find\s+all\s+purchases\s+by\s+(?:mobile|number|phone)\s*[:\-]?\s*(\d[\d\s-]{6,})`),
	regexp.MustCompile(`(?i)purchases\s+for\s+mobile\s*[:\-]?\s*(\d[\d\s-]{6,})`),
	regexp.MustCompile(`(?i)by\s+mobile\s*(\d[\d\s-]{6,})`),
}

var googleNearRate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brate\b[^\n]{0,20}\bgoogle\b`),
	regexp.MustCompile(`(?i)\bgoogle\b[^\n]{0,20}\brate\b`),
}

var monthNames = []string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"}

// normalizeText fixes the voice-input slip of "google" for "gold" next to rate questions.
func normalizeText(raw string) string {
	t := raw
	for _, re := range googleNearRate {
		t = re.ReplaceAllStringFunc(t, func(m string) string {
			return googleRe.ReplaceAllString(m, "gold")
		})
	}
	return t
}

func (a *Agent) draftBill(ctx context.Context, text string) (*Reply, bool, error) {
	if !generateRe.MatchString(text) || !billRe.MatchString(text) {
		return nil, false, nil
	}
	table, err := a.store.RateTable(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("assistant: rate table unavailable, drafting without rates")
		table = billing.RateTable{}
	}

	d := BuildDraft(text, table, a.defaults)
	if !d.HasItems() {
		return &Reply{Text: parseHelpText, Intent: IntentDraftBill}, true, nil
	}

	msg := draftReady
	customerNote := "Customer provided."
	if d.NeedCustomer {
		msg = draftNeedsCustomer
		customerNote = "Customer missing."
	}
	prompt := fmt.Sprintf("%s\n\nDraft bill items parsed: %d new, %d old, %d misc. %s\nRates: %s\nRespond concisely.",
		text, len(d.Bill.NewItems), len(d.Bill.OldItems), len(d.Bill.MiscItems), customerNote, table.Summary())
	msg = a.summarize(ctx, prompt, msg)

	bill, totals := d.Bill, d.Totals
	return &Reply{
		Text:         msg,
		Intent:       IntentDraftBill,
		Bill:         &bill,
		Totals:       &totals,
		NeedCustomer: d.NeedCustomer,
		Warnings:     d.Warnings,
	}, true, nil
}

func (a *Agent) setRate(ctx context.Context, text string) (*Reply, bool, error) {
	m := setRateRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}
	k, ok := billing.ParseKarat(m[1])
	if !ok {
		return &Reply{Text: fmt.Sprintf("Unknown grade %q. Use one of 14K to 24K or SILVER.", strings.TrimSpace(m[1])), Intent: IntentSetRate}, true, nil
	}
	value := parseNumber(m[2])
	if err := a.store.UpsertRates(ctx, map[billing.Karat]float64{k: value}); err != nil {
		if errors.Is(err, database.ErrInvalidRate) {
			return &Reply{Text: "That rate is not valid.", Intent: IntentSetRate}, true, nil
		}
		return nil, false, fmt.Errorf("set rate: %w", err)
	}
	return &Reply{Text: fmt.Sprintf("Updated rate: %s = %s/g", k, billing.Currency(value)), Intent: IntentSetRate}, true, nil
}

func (a *Agent) monthlySummary(ctx context.Context, text string) (*Reply, bool, error) {
	if !summaryRe.MatchString(text) {
		return nil, false, nil
	}
	year, month := parseMonth(text, a.now())
	sum, err := a.store.MonthSummary(ctx, year, month)
	if err != nil {
		return nil, false, fmt.Errorf("monthly summary: %w", err)
	}

	local := fmt.Sprintf("Summary for %04d-%02d. Invoices: %d; Gross: %s; Old exchange: %s; Tax: %s; Net: %s",
		year, month, sum.Count, billing.Currency(sum.Gross), billing.Currency(sum.OldExchange),
		billing.Currency(sum.Tax), billing.Currency(sum.Net))

	rates := ""
	if table, err := a.store.RateTable(ctx); err == nil {
		rates = table.Summary()
	}
	data, _ := json.Marshal(sum)
	prompt := fmt.Sprintf("%s\nRates: %s\nData: %s\nSummarize in 3 bullets.", text, rates, data)
	return &Reply{Text: a.summarize(ctx, prompt, local), Intent: IntentMonthlySummary}, true, nil
}

func (a *Agent) compareMonths(ctx context.Context, text string) (*Reply, bool, error) {
	if !compareRe.MatchString(text) || !monthWordRe.MatchString(text) {
		return nil, false, nil
	}
	cmp, err := a.store.CompareMonths(ctx, a.now())
	if err != nil {
		return nil, false, fmt.Errorf("compare months: %w", err)
	}
	cur, prev := cmp.Current, cmp.Previous
	lines := []string{
		fmt.Sprintf("Invoices: %d vs %d (%s)", cur.Count, prev.Count, signedInt(cur.Count-prev.Count)),
		fmt.Sprintf("Net: %s vs %s (%s%%)", billing.Currency(cur.Net), billing.Currency(prev.Net), signedPct(pctChange(cur.Net, prev.Net))),
		fmt.Sprintf("Gross & Tax: %s + %s (prev %s + %s)", billing.Currency(cur.Gross), billing.Currency(cur.Tax), billing.Currency(prev.Gross), billing.Currency(prev.Tax)),
	}
	out := fmt.Sprintf("Comparison (%04d-%02d vs %04d-%02d):\n- %s", cur.Year, cur.Month, prev.Year, prev.Month, strings.Join(lines, "\n- "))
	return &Reply{Text: out, Intent: IntentCompareMonths}, true, nil
}

func (a *Agent) purchasesByName(ctx context.Context, text string) (*Reply, bool, error) {
	m := byNameRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}
	name := strings.TrimSpace(m[1])
	minTotal := parseNumber(m[2])
	year := a.now().Year()
	if m[3] != "" {
		year = int(parseNumber(m[3]))
	}

	rows, err := a.store.PurchasesByName(ctx, name, minTotal, year)
	if err != nil {
		return nil, false, fmt.Errorf("purchases by name: %w", err)
	}
	if len(rows) == 0 {
		return &Reply{Text: fmt.Sprintf("No purchases found for %s above %s in %d.", name, billing.Currency(minTotal), year), Intent: IntentPurchasesByName}, true, nil
	}

	out := fmt.Sprintf("Found %d purchases for %s above %s in %d:\n- %s", len(rows), name, billing.Currency(minTotal), year, strings.Join(purchaseLines(rows, maxNameResults), "\n- "))
	if len(rows) > maxNameResults {
		out += fmt.Sprintf("\nShowing %d of %d.", maxNameResults, len(rows))
	}
	return &Reply{Text: out, Intent: IntentPurchasesByName}, true, nil
}

func (a *Agent) purchasesByMobile(ctx context.Context, text string) (*Reply, bool, error) {
	var raw string
	for _, re := range byMobileRes {
		if m := re.FindStringSubmatch(text); m != nil {
			raw = m[1]
			break
		}
	}
	if raw == "" {
		return nil, false, nil
	}
	mobile := cleanMobile(raw)

	hist, err := a.store.CustomerWithPurchases(ctx, mobile)
	if errors.Is(err, database.ErrNotFound) || (err == nil && len(hist.Purchases) == 0) {
		return &Reply{Text: fmt.Sprintf("No purchases found for %s.", mobile), Intent: IntentPurchasesByMobile}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("purchases by mobile: %w", err)
	}

	header := fmt.Sprintf("Purchases for %s:", mobile)
	if hist.Customer != nil && hist.Customer.Name != "" {
		header = fmt.Sprintf("Purchases for %s (%s):", hist.Customer.Name, mobile)
	}
	return &Reply{
		Text:   header + "\n- " + strings.Join(purchaseLines(hist.Purchases, maxMobileResults), "\n- "),
		Intent: IntentPurchasesByMobile,
	}, true, nil
}

func (a *Agent) rateQuery(ctx context.Context, text string) (*Reply, bool, error) {
	if !rateWordRe.MatchString(text) || webQueryRe.MatchString(text) {
		return nil, false, nil
	}
	table, err := a.store.RateTable(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("rate query: %w", err)
	}

	var asked []billing.Karat
	for _, m := range rateKaratRe.FindAllStringSubmatch(text, -1) {
		raw := m[0]
		if m[1] != "" {
			raw = m[1] + "K"
		}
		if k, ok := billing.ParseKarat(raw); ok {
			asked = append(asked, k)
		}
	}
	if len(asked) == 0 {
		asked = billing.Karats
	}

	var parts []string
	for _, k := range asked {
		if table.Has(k) {
			parts = append(parts, fmt.Sprintf("%s %s/g", k, billing.Currency(table[k])))
		} else if len(asked) < len(billing.Karats) {
			parts = append(parts, fmt.Sprintf("%s not set", k))
		}
	}
	if len(parts) == 0 {
		return &Reply{Text: "No rates are configured yet.", Intent: IntentRateQuery}, true, nil
	}
	return &Reply{Text: "Today's rates: " + strings.Join(parts, ", "), Intent: IntentRateQuery}, true, nil
}

func (a *Agent) llmFallback(ctx context.Context, text string) (*Reply, bool, error) {
	if a.summarizer == nil {
		return nil, false, nil
	}
	prompt := text
	if !webQueryRe.MatchString(text) {
		if table, err := a.store.RateTable(ctx); err == nil && len(table) > 0 {
			prompt = fmt.Sprintf("%s\n\nRates: %s", text, table.Summary())
		}
	}
	out := a.summarize(ctx, prompt, "")
	if out == "" {
		return nil, false, nil
	}
	return &Reply{Text: out, Intent: IntentLLM}, true, nil
}

// summarize asks the summarizer and falls back to local text on any failure.
func (a *Agent) summarize(ctx context.Context, prompt, local string) string {
	if a.summarizer == nil {
		return local
	}
	out, err := a.summarizer.Summarize(ctx, prompt)
	if err != nil {
		a.log.Warn().Err(err).Msg("assistant: summarizer failed, using local reply")
		return local
	}
	if out = cleanCompletion(out); out == "" {
		return local
	}
	return out
}

func parseMonth(text string, now time.Time) (int, int) {
	if m := yearMonthRe.FindStringSubmatch(text); m != nil {
		y, mo := int(parseNumber(m[1])), int(parseNumber(m[2]))
		if mo >= 1 && mo <= 12 {
			return y, mo
		}
	}
	if thisMonthRe.MatchString(text) {
		return now.Year(), int(now.Month())
	}
	lower := strings.ToLower(text)
	for i, name := range monthNames {
		if strings.Contains(lower, name) {
			return now.Year(), i + 1
		}
	}
	return now.Year(), int(now.Month())
}

func purchaseLines(rows []database.Purchase, limit int) []string {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	lines := make([]string, 0, len(rows))
	for _, p := range rows {
		line := fmt.Sprintf("#%d on %s: %s", p.InvoiceNo, p.IssuedAt.Format("02 Jan 2006"), billing.Currency(p.TotalAmount))
		if p.DataParam != "" {
			line += " (open: /invoice?data=" + url.QueryEscape(p.DataParam) + ")"
		} else if p.ID != "" {
			line += " (open: /invoice?id=" + url.QueryEscape(p.ID) + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

func pctChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return (cur - prev) / prev * 100
}

func signedInt(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func signedPct(p float64) string {
	if p >= 0 {
		return fmt.Sprintf("+%.1f", p)
	}
	return fmt.Sprintf("%.1f", p)
}
