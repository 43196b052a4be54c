package config

// NumberingConfig locates the sheets of the category numbering pipeline.
type NumberingConfig struct {
	// Sheet holding the full 6-level classification, one row per capability.
	DetailSheet string `yaml:"detail_sheet" validate:"required"`
	// 1-based row holding the detail sheet's header; data starts on the next row.
	DetailHeaderRow int `yaml:"detail_header_row" validate:"min=1"`

	// Sheet receiving the per-level (label, ordinal) summary.
	OrdinalSheet string `yaml:"ordinal_sheet" validate:"required"`
	// First row written on the ordinal sheet; rows above it are preserved.
	OrdinalStartRow int `yaml:"ordinal_start_row" validate:"min=1"`

	// Sheets with 6 (label, identifier) column pairs to populate.
	TargetSheets []string `yaml:"target_sheets" validate:"required,min=1,dive,required"`
	// 1-based header row of the target sheets.
	TargetHeaderRow int `yaml:"target_header_row" validate:"min=1"`

	// Sheet flattened into the edge list and the sheet it is written to.
	EdgeSourceSheet string `yaml:"edge_source_sheet" validate:"required"`
	EdgeSheet       string `yaml:"edge_sheet" validate:"required"`

	// Strict turns unresolvable paths during formatting into a fatal error.
	Strict bool `yaml:"strict"`
}

// DefaultNumberingConfig returns the workbook's standard layout.
func DefaultNumberingConfig() NumberingConfig {
	return NumberingConfig{
		DetailSheet:     "生态基础表明细",
		DetailHeaderRow: 2,
		OrdinalSheet:    "各级序号",
		OrdinalStartRow: 5,
		TargetSheets:    []string{"全量_编码", "有厂家部分_编码"},
		TargetHeaderRow: 1,
		EdgeSourceSheet: "全量_编码",
		EdgeSheet:       "五级分类_编码",
	}
}
