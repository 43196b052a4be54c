package config

// SortConfig configures company block sorting.
type SortConfig struct {
	Sheet     string `yaml:"sheet" validate:"required"`
	HeaderRow int    `yaml:"header_row" validate:"min=1"`
	// Header of the first column of the (name, type, score) triples.
	AnchorHeader string `yaml:"anchor_header" validate:"required"`
	// Ecosystem type ranks, higher sorts first. Unlisted types rank -1.
	TypeRanks map[string]int `yaml:"type_ranks" validate:"required,min=1"`
}

// DefaultSortConfig returns the standard sort layout.
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Sheet:        "生态基础表明细-能力",
		HeaderRow:    1,
		AnchorHeader: "生态合作伙伴清单",
		TypeRanks: map[string]int{
			"自有公司": 2,
			"西安生态": 1,
			"数博会":  0,
		},
	}
}

// ReconcileConfig locates the two vocabularies compared by reconcile.
type ReconcileConfig struct {
	DetailSheet     string `yaml:"detail_sheet" validate:"required"`
	DetailHeaderRow int    `yaml:"detail_header_row" validate:"min=1"`
	// Detail columns, by header text: levels 1-3 then the handling column.
	DetailColumns [3]string `yaml:"detail_columns" validate:"dive,required"`
	HandlingColumn string   `yaml:"handling_column" validate:"required"`
	// Handling value marking a row as removed.
	RemovedMarker string `yaml:"removed_marker" validate:"required"`

	SummarySheet     string    `yaml:"summary_sheet" validate:"required"`
	SummaryHeaderRow int       `yaml:"summary_header_row" validate:"min=1"`
	SummaryColumns   [3]string `yaml:"summary_columns" validate:"dive,required"`
}

// DefaultReconcileConfig returns the standard reconcile layout.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		DetailSheet:      "生态基础表明细-能力",
		DetailHeaderRow:  1,
		DetailColumns:    [3]string{"一级分类（行业）", "二级分类（子行业）", "三级分类（领域）"},
		HandlingColumn:   "处理类别（保留、删减、新增）",
		RemovedMarker:    "删减",
		SummarySheet:     "生态基础表（生态能力图谱+集团行业+标包）",
		SummaryHeaderRow: 1,
		SummaryColumns:   [3]string{"一级分类", "二级分类", "三级分类"},
	}
}

// ExportConfig configures the SQLite edge export.
type ExportConfig struct {
	// Empty disables the export unless --sqlite is given.
	DatabasePath string `yaml:"database_path"`
}
