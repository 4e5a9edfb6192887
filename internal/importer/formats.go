package importer

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// ColumnRoles maps zero-based column indices to semantic roles. An index of -1
// means the role is absent for the variant. Exactly one of Amount or the
// Debit/Credit pair must be configured.
type ColumnRoles struct {
	Date        int `mapstructure:"date" json:"date"`
	Description int `mapstructure:"description" json:"description"`
	Amount      int `mapstructure:"amount" json:"amount"`
	Debit       int `mapstructure:"debit" json:"debit"`
	Credit      int `mapstructure:"credit" json:"credit"`
	AccountRef  int `mapstructure:"accountRef" json:"accountRef"`
	Category    int `mapstructure:"category" json:"category"`
}

// FormatConfig is the data-only description of one bank/export format. Adding a
// supported source is a new registry record, never a parser change.
type FormatConfig struct {
	ID          string `mapstructure:"id" json:"id"`
	DisplayName string `mapstructure:"displayName" json:"displayName"`

	// Encoding is an IANA charset name, or "auto" to run statistical detection.
	// FallbackEncoding is used when detection is inconclusive.
	Encoding         string `mapstructure:"encoding" json:"encoding"`
	FallbackEncoding string `mapstructure:"fallbackEncoding" json:"fallbackEncoding"`

	// Either a fixed number of rows to skip, or a marker substring that
	// identifies the header row dynamically (marker wins when set).
	SkipRows     int    `mapstructure:"skipRows" json:"skipRows"`
	HeaderMarker string `mapstructure:"headerMarker" json:"headerMarker"`

	Delimiter string `mapstructure:"delimiter" json:"delimiter"` // Default ","

	// DateFormat is a Go reference layout. Layouts without a year ("01/02")
	// trigger billing-cycle year inference.
	DateFormat string `mapstructure:"dateFormat" json:"dateFormat"`

	// BillingCyclePattern is a regexp with two capture groups (year, month)
	// applied to the lines above the header. Absent or unmatched, the current
	// date supplies the billing cycle.
	BillingCyclePattern string `mapstructure:"billingCyclePattern" json:"billingCyclePattern"`

	// DropNegative treats negative signed amounts as refunds/payments and
	// drops the row instead of recording an outflow.
	DropNegative bool `mapstructure:"dropNegative" json:"dropNegative"`

	Columns ColumnRoles `mapstructure:"columns" json:"columns"`

	// SourceRef is the statement's own account (TYPE-prefixed dotted path).
	// OutflowRef/InflowRef are the default counter accounts when the variant
	// has no AccountRef column; a populated AccountRef column overrides them.
	SourceRef  string `mapstructure:"sourceRef" json:"sourceRef"`
	OutflowRef string `mapstructure:"outflowRef" json:"outflowRef"`
	InflowRef  string `mapstructure:"inflowRef" json:"inflowRef"`
}

// Validate reports configuration mistakes that would make the variant unusable.
func (c FormatConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("format config missing id")
	}
	if c.DateFormat == "" {
		return fmt.Errorf("format %s: dateFormat is required", c.ID)
	}
	if c.Columns.Date < 0 {
		return fmt.Errorf("format %s: date column is required", c.ID)
	}
	hasSigned := c.Columns.Amount >= 0
	hasSplit := c.Columns.Debit >= 0 || c.Columns.Credit >= 0
	if hasSigned == hasSplit {
		return fmt.Errorf("format %s: exactly one of a signed amount column or debit/credit columns must be configured", c.ID)
	}
	if c.SourceRef == "" {
		return fmt.Errorf("format %s: sourceRef is required", c.ID)
	}
	return nil
}

// Registry is the lookup of supported statement formats, keyed by format id.
type Registry struct {
	formats map[string]FormatConfig
}

// NewRegistry builds a registry from explicit configs, validating each.
func NewRegistry(configs ...FormatConfig) (*Registry, error) {
	r := &Registry{formats: make(map[string]FormatConfig, len(configs))}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.formats[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate format id %q", cfg.ID)
		}
		r.formats[cfg.ID] = cfg
	}
	return r, nil
}

// LoadRegistry reads format records from a YAML file (top-level key "formats")
// and merges them over the built-in defaults. File entries with an id matching a
// built-in replace it. An empty path yields the built-ins only.
func LoadRegistry(path string) (*Registry, error) {
	configs := builtinFormats()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read statement format registry %s: %w", path, err)
		}
		var fileCfg struct {
			Formats []FormatConfig `mapstructure:"formats"`
		}
		if err := v.Unmarshal(&fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse statement format registry %s: %w", path, err)
		}
		byID := make(map[string]int, len(configs))
		for i, cfg := range configs {
			byID[cfg.ID] = i
		}
		for _, cfg := range fileCfg.Formats {
			if i, ok := byID[cfg.ID]; ok {
				configs[i] = cfg
				continue
			}
			configs = append(configs, cfg)
		}
	}
	return NewRegistry(configs...)
}

// Get returns the config for a format id.
func (r *Registry) Get(id string) (FormatConfig, bool) {
	cfg, ok := r.formats[id]
	return cfg, ok
}

// List returns all registered configs ordered by id.
func (r *Registry) List() []FormatConfig {
	out := make([]FormatConfig, 0, len(r.formats))
	for _, cfg := range r.formats {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// builtinFormats are the variants shipped with the service. They double as
// documentation of the config surface; deployments extend or override them via
// the registry file.
func builtinFormats() []FormatConfig {
	return []FormatConfig{
		{
			ID:          "generic-csv",
			DisplayName: "Generic CSV (date, description, signed amount)",
			Encoding:    "utf-8",
			SkipRows:    1,
			DateFormat:  "2006-01-02",
			Columns:     ColumnRoles{Date: 0, Description: 1, Amount: 2, Debit: -1, Credit: -1, AccountRef: 3, Category: -1},
			SourceRef:   "A-Cash",
			OutflowRef:  "E-Imported",
			InflowRef:   "I-Imported",
		},
		{
			ID:                  "cmb-credit",
			DisplayName:         "CMB credit card statement (GBK, month/day dates)",
			Encoding:            "auto",
			FallbackEncoding:    "gbk",
			HeaderMarker:        "交易日",
			DateFormat:          "01/02",
			BillingCyclePattern: `账单周期[:：]\s*(\d{4})[-/年](\d{1,2})`,
			DropNegative:        true,
			Columns:             ColumnRoles{Date: 0, Description: 2, Amount: 3, Debit: -1, Credit: -1, AccountRef: -1, Category: 4},
			SourceRef:           "L-CreditCards.CMB",
			OutflowRef:          "E-Imported",
			InflowRef:           "I-Imported",
		},
		{
			ID:          "dc-split",
			DisplayName: "Debit/credit column export",
			Encoding:    "auto",
			SkipRows:    2,
			DateFormat:  "02/01/2006",
			Columns:     ColumnRoles{Date: 0, Description: 1, Amount: -1, Debit: 2, Credit: 3, AccountRef: -1, Category: -1},
			SourceRef:   "A-Bank.Checking",
			OutflowRef:  "E-Imported",
			InflowRef:   "I-Imported",
		},
	}
}
