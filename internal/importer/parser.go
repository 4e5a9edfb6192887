package importer

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ValidationErrorKind is the closed set of row-level parse failures.
type ValidationErrorKind string

const (
	ErrKindMissingColumn      ValidationErrorKind = "MISSING_COLUMN"
	ErrKindInvalidDate        ValidationErrorKind = "INVALID_DATE"
	ErrKindInvalidAmount      ValidationErrorKind = "INVALID_AMOUNT"
	ErrKindUnknownAccountType ValidationErrorKind = "UNKNOWN_ACCOUNT_TYPE"
	ErrKindInvalidFormat      ValidationErrorKind = "INVALID_FORMAT"
)

// ValidationError describes one bad row. Rows never abort the parse; errors are
// collected and returned alongside whatever parsed cleanly.
type ValidationError struct {
	RowNumber int                 `json:"rowNumber"`
	Kind      ValidationErrorKind `json:"kind"`
	Message   string              `json:"message"`
	RawValue  string              `json:"rawValue"`
}

// ParsedTransaction is the source-agnostic intermediate produced by parsing,
// before account resolution. Amount is always positive; direction is encoded by
// which side is From vs To.
type ParsedTransaction struct {
	RowNumber    int             `json:"rowNumber"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	FromRef      AccountRef      `json:"fromRef"`
	ToRef        AccountRef      `json:"toRef"`
	Description  string          `json:"description"`
	CategoryHint string          `json:"categoryHint"`
}

// ParseResult bundles the postings and row errors of one parse run.
type ParseResult struct {
	Postings     []ParsedTransaction `json:"postings"`
	Errors       []ValidationError   `json:"errors"`
	BillingYear  int                 `json:"billingYear"`
	BillingMonth int                 `json:"billingMonth"`
}

// Characters stripped from amount cells before parsing.
var amountCleaner = strings.NewReplacer(
	",", "", "，", "",
	"¥", "", "￥", "", "$", "", "€", "", "£", "",
	" ", "", " ", "",
)

// Dash-family strings that mean "no value" in an amount cell, not zero.
var noValueAmounts = map[string]struct{}{
	"-":      {},
	"−": {}, // Unicode minus sign
	"—": {}, // em dash
	"－": {}, // full-width hyphen-minus
	"--":     {},
}

// cleanAmount normalizes an amount cell. ok=false means the cell carries no
// value (empty or a bare dash) and the row contributes nothing for this column.
func cleanAmount(raw string) (decimal.Decimal, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false, nil
	}
	if _, isDash := noValueAmounts[s]; isDash {
		return decimal.Zero, false, nil
	}
	s = amountCleaner.Replace(s)
	// Normalize the Unicode minus sign so "−12.30" parses as a negative.
	s = strings.ReplaceAll(s, "−", "-")
	// Accounting-style parentheses for negatives.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	if s == "" || s == "-" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

// Parse turns raw statement bytes into canonical postings plus row-level errors
// according to the variant config. A malformed row yields one ValidationError
// and parsing continues; only an undecodable payload fails the whole parse.
func Parse(data []byte, cfg FormatConfig) (ParseResult, error) {
	var result ParseResult

	text, err := DecodeStatement(data, cfg)
	if err != nil {
		return result, err
	}

	lines := splitLines(text)
	headerIdx := locateHeader(lines, cfg)
	result.BillingYear, result.BillingMonth = parseBillingCycle(lines, headerIdx, cfg)

	sourceRef, err := ParseAccountRef(cfg.SourceRef)
	if err != nil {
		return result, err
	}

	delimiter := ','
	if cfg.Delimiter != "" {
		delimiter, _ = utf8.DecodeRuneInString(cfg.Delimiter)
	}

	// Parsed line by line so row numbers stay aligned with the file even across
	// blank lines, which a single csv.Reader would silently swallow.
	for i := min(headerIdx+1, len(lines)); i < len(lines); i++ {
		rowNumber := i + 1 // 1-based row number in the original file
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := readRecord(line, delimiter)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				RowNumber: rowNumber,
				Kind:      ErrKindInvalidFormat,
				Message:   "row is not valid CSV",
				RawValue:  err.Error(),
			})
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		parseRow(record, rowNumber, cfg, sourceRef, &result)
	}
	return result, nil
}

// readRecord parses a single statement line as one CSV record.
func readRecord(line string, delimiter rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.Comma = delimiter
	record, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	return record, err
}

// parseRow maps one CSV record onto zero, one, or (debit+credit mode) up to two
// canonical postings, appending row errors as it goes.
func parseRow(record []string, rowNumber int, cfg FormatConfig, sourceRef AccountRef, result *ParseResult) {
	cell := func(idx int) (string, bool) {
		if idx < 0 {
			return "", false
		}
		if idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	dateStr, ok := cell(cfg.Columns.Date)
	if !ok || dateStr == "" {
		result.Errors = append(result.Errors, ValidationError{
			RowNumber: rowNumber,
			Kind:      ErrKindMissingColumn,
			Message:   "date column missing",
			RawValue:  strings.Join(record, ","),
		})
		return
	}
	date, err := parseRowDate(dateStr, cfg, result.BillingYear, result.BillingMonth)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			RowNumber: rowNumber,
			Kind:      ErrKindInvalidDate,
			Message:   "unparseable date",
			RawValue:  dateStr,
		})
		return
	}

	description, _ := cell(cfg.Columns.Description)
	categoryHint, _ := cell(cfg.Columns.Category)

	counterRef, counterErr := rowCounterRef(record, cfg)
	if counterErr != nil {
		raw, _ := cell(cfg.Columns.AccountRef)
		result.Errors = append(result.Errors, ValidationError{
			RowNumber: rowNumber,
			Kind:      ErrKindUnknownAccountType,
			Message:   counterErr.Error(),
			RawValue:  raw,
		})
		return
	}

	emit := func(amount decimal.Decimal, outflow bool) {
		posting := ParsedTransaction{
			RowNumber:    rowNumber,
			Date:         date,
			Amount:       amount.Abs(),
			Description:  description,
			CategoryHint: categoryHint,
		}
		counter := counterRef
		if counter.IsZero() {
			var raw string
			if outflow {
				raw = cfg.OutflowRef
			} else {
				raw = cfg.InflowRef
			}
			if parsed, err := ParseAccountRef(raw); err == nil {
				counter = parsed
			}
		}
		if outflow {
			posting.FromRef = sourceRef
			posting.ToRef = counter
		} else {
			posting.FromRef = counter
			posting.ToRef = sourceRef
		}
		result.Postings = append(result.Postings, posting)
	}

	if cfg.Columns.Amount >= 0 {
		amountStr, ok := cell(cfg.Columns.Amount)
		if !ok {
			result.Errors = append(result.Errors, ValidationError{
				RowNumber: rowNumber,
				Kind:      ErrKindMissingColumn,
				Message:   "amount column missing",
				RawValue:  strings.Join(record, ","),
			})
			return
		}
		amount, hasValue, err := cleanAmount(amountStr)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				RowNumber: rowNumber,
				Kind:      ErrKindInvalidAmount,
				Message:   "unparseable amount",
				RawValue:  amountStr,
			})
			return
		}
		if !hasValue || amount.IsZero() {
			return // no movement on this row
		}
		if amount.IsNegative() {
			if cfg.DropNegative {
				return
			}
			emit(amount, true)
			return
		}
		emit(amount, false)
		return
	}

	// Debit/credit mode: each populated column produces its own posting; a row
	// with both empty is a balance/footer row and is skipped silently.
	debitStr, _ := cell(cfg.Columns.Debit)
	creditStr, _ := cell(cfg.Columns.Credit)
	debit, hasDebit, debitErr := cleanAmount(debitStr)
	credit, hasCredit, creditErr := cleanAmount(creditStr)
	if debitErr != nil || creditErr != nil {
		raw := debitStr
		if debitErr == nil {
			raw = creditStr
		}
		result.Errors = append(result.Errors, ValidationError{
			RowNumber: rowNumber,
			Kind:      ErrKindInvalidAmount,
			Message:   "unparseable amount",
			RawValue:  raw,
		})
		return
	}
	if hasDebit && !debit.IsZero() {
		emit(debit, true)
	}
	if hasCredit && !credit.IsZero() {
		emit(credit, false)
	}
}

// rowCounterRef reads and parses the per-row account reference column, when the
// variant has one.
func rowCounterRef(record []string, cfg FormatConfig) (AccountRef, error) {
	idx := cfg.Columns.AccountRef
	if idx < 0 || idx >= len(record) {
		return AccountRef{}, nil
	}
	raw := strings.TrimSpace(record[idx])
	if raw == "" {
		return AccountRef{}, nil
	}
	return ParseAccountRef(raw)
}

// parseRowDate parses a date cell, inferring the year from the billing cycle for
// layouts that carry only month/day: month <= billingMonth lands in billingYear,
// a later month belongs to the previous year (cross-year statement).
func parseRowDate(value string, cfg FormatConfig, billingYear, billingMonth int) (time.Time, error) {
	t, err := time.Parse(cfg.DateFormat, value)
	if err != nil {
		return time.Time{}, err
	}
	if strings.Contains(cfg.DateFormat, "2006") {
		return t, nil
	}
	year := billingYear
	if int(t.Month()) > billingMonth {
		year = billingYear - 1
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseBillingCycle extracts the billing year/month from the pre-header lines
// via the configured pattern, defaulting to the current date when absent.
func parseBillingCycle(lines []string, headerIdx int, cfg FormatConfig) (int, int) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if cfg.BillingCyclePattern == "" {
		return year, month
	}
	re, err := regexp.Compile(cfg.BillingCyclePattern)
	if err != nil {
		return year, month
	}
	limit := min(headerIdx+1, len(lines))
	for _, line := range lines[:limit] {
		m := re.FindStringSubmatch(line)
		if len(m) >= 3 {
			if y, err := strconv.Atoi(m[1]); err == nil {
				if mo, err := strconv.Atoi(m[2]); err == nil && mo >= 1 && mo <= 12 {
					return y, mo
				}
			}
		}
	}
	return year, month
}

// locateHeader returns the index of the header line: the first line containing
// the marker when one is configured, otherwise SkipRows-1 (the skipped block's
// last line). With neither, parsing starts at the first line.
func locateHeader(lines []string, cfg FormatConfig) int {
	if cfg.HeaderMarker != "" {
		for i, line := range lines {
			if strings.Contains(line, cfg.HeaderMarker) {
				return i
			}
		}
		return -1
	}
	return cfg.SkipRows - 1
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
