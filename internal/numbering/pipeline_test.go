package numbering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ecocap/internal/config"
	"ecocap/internal/logging"
	"ecocap/internal/taxonomy"
	"ecocap/internal/workbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var pairHeader = []interface{}{"行业", "id", "一级", "id", "二级", "id", "三级", "id", "四级", "id", "五级", "id"}

func pairs(labels ...string) []interface{} {
	out := make([]interface{}, 0, len(labels)*2)
	for _, l := range labels {
		out = append(out, l, nil)
	}
	return out
}

// fixture writes a workbook in the standard layout and returns its path.
func fixture(t *testing.T, detail [][]interface{}, full, partial [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	write := func(sheet string, start int, rows [][]interface{}) {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, start+i)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}

	write("生态基础表明细", 1, append([][]interface{}{
		{"生态基础表明细"},
		{"行业", "一级分类", "二级分类", "三级分类", "四级分类", "五级分类"},
	}, detail...))
	write("各级序号", 1, [][]interface{}{{"各级序号"}, {}, {}, {"行业", "序号"}})
	if full != nil {
		write("全量_编码", 1, append([][]interface{}{pairHeader}, full...))
	}
	if partial != nil {
		write("有厂家部分_编码", 1, append([][]interface{}{pairHeader}, partial...))
	}

	path := filepath.Join(t.TempDir(), "capability.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func open(t *testing.T, path string) *workbook.Workbook {
	t.Helper()
	wb, err := workbook.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func observeNumbering(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logging.Use(zap.New(core), nil)
	t.Cleanup(func() { logging.Use(zap.NewNop(), nil) })
	return logs
}

var detailRows = [][]interface{}{
	{"政务", "党建", "组织", "干部", "考核", "绩效"},
	{"政务", "党建", "宣传", "新闻", "发布", "直播"},
	{"教育", "基础", "校园", "安防", "监控", "视频"},
}

func TestRun_FullPipeline(t *testing.T) {
	path := fixture(t, detailRows,
		[][]interface{}{
			pairs("政务", "党建", "组织", "干部", "考核", "绩效"),
			pairs("政务", "党建", "宣传", "新闻", "发布", "直播"),
			pairs("教育", "基础", "校园", "安防", "监控", "视频"),
			pairs("政务", "党建", "宣传", "", "", ""),
		},
		[][]interface{}{
			pairs("教育", "基础", "校园", "安防", "监控", "视频"),
		},
	)
	wb := open(t, path)

	res, err := New(wb, config.DefaultNumberingConfig()).Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.Saved())
	assert.Equal(t, [taxonomy.Levels]int{2, 2, 3, 3, 3, 3}, res.Counts)
	require.Len(t, res.Targets, 2)
	assert.Equal(t, 3, res.Targets[0].Stats.Unresolved)
	assert.Equal(t, 3, res.Targets[0].Stats.Inherited)
	assert.Equal(t, 6, res.Targets[1].Stats.Resolved)
	assert.Len(t, res.Edges, 2+2+3+3+3+3)

	saved := open(t, path)
	rows, err := saved.Rows("有厂家部分_编码")
	require.NoError(t, err)
	assert.Equal(t, []string{"教育", "2", "基础", "102", "校园", "2003", "安防", "3003", "监控", "4003", "视频", "50003"}, rows[1])

	rows, err = saved.Rows("全量_编码")
	require.NoError(t, err)
	assert.Equal(t, []string{"政务", "1", "党建", "101", "宣传", "2002", "宣传", "/", "宣传", "/", "宣传", "/"}, rows[4])

	rows, err = saved.Rows("各级序号")
	require.NoError(t, err)
	assert.Equal(t, []string{"行业", "序号"}, rows[3])
	assert.Equal(t, []string{"政务", "1", "党建", "1", "组织", "1", "干部", "1", "考核", "1", "绩效", "1"}, rows[4])
	assert.Equal(t, []string{"教育", "2", "基础", "2", "宣传", "2", "新闻", "2", "发布", "2", "直播", "2"}, rows[5])

	rows, err = saved.Rows("五级分类_编码")
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "field_id", "parent_id", "level"}, rows[0])
	assert.Equal(t, []string{"政务", "1", "", "0"}, rows[1])
	assert.Equal(t, []string{"党建", "101", "1", "1"}, rows[3])

	edges, err := ReadEdges(saved, config.DefaultNumberingConfig())
	require.NoError(t, err)
	assert.Equal(t, res.Edges, edges)
}

func TestRun_InvalidDetailRowAborts(t *testing.T) {
	path := fixture(t, [][]interface{}{
		{"政务", "党建", "组织", "干部", "考核", "绩效"},
		{"政务", "/", "组织", "干部", "考核", "绩效"},
	}, [][]interface{}{pairs("政务", "党建", "组织", "干部", "考核", "绩效")}, nil)
	wb := open(t, path)

	_, err := New(wb, config.DefaultNumberingConfig()).Run(context.Background())
	var invalid *taxonomy.InvalidLabelError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 4, invalid.Row)
	assert.Equal(t, 1, invalid.Level)

	// Nothing was written before the abort.
	rows, err := open(t, path).Rows("全量_编码")
	require.NoError(t, err)
	assert.Len(t, rows[1], 11)
}

func TestRun_MissingTargetIsSkipped(t *testing.T) {
	logs := observeNumbering(t)
	path := fixture(t, detailRows,
		[][]interface{}{pairs("政务", "党建", "组织", "干部", "考核", "绩效")}, nil)
	wb := open(t, path)

	res, err := New(wb, config.DefaultNumberingConfig()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Targets, 2)
	assert.True(t, res.Targets[1].Missing)
	assert.Equal(t, 1, logs.FilterMessage("Target sheet 有厂家部分_编码 does not exist, skipping").Len())
}

func TestRun_MissingEdgeSourceIsFatal(t *testing.T) {
	path := fixture(t, detailRows, nil, nil)
	wb := open(t, path)

	_, err := New(wb, config.DefaultNumberingConfig()).Run(context.Background())
	assert.True(t, errors.Is(err, workbook.ErrSheetNotFound))
}

func TestRun_StrictFailsOnUnresolved(t *testing.T) {
	path := fixture(t, detailRows,
		[][]interface{}{pairs("政务", "党建", "未知", "干部", "考核", "绩效")}, nil)
	wb := open(t, path)

	cfg := config.DefaultNumberingConfig()
	cfg.Strict = true
	_, err := New(wb, cfg).Run(context.Background())
	var unresolved *taxonomy.UnresolvedPathError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, 2, unresolved.Row)
}

func TestRun_SaveFailureIsNotFatal(t *testing.T) {
	logs := observeNumbering(t)
	path := fixture(t, detailRows,
		[][]interface{}{pairs("政务", "党建", "组织", "干部", "考核", "绩效")}, nil)
	wb := open(t, path)

	// A directory in place of the file makes every save fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	res, err := New(wb, config.DefaultNumberingConfig()).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Saved())
	assert.Len(t, res.SaveFailures, 3)
	assert.NotEmpty(t, res.Edges)
	assert.Equal(t, 3, logs.FilterField(zap.String("cat", "numbering")).FilterMessageSnippet("not saved").Len())
}

func TestRun_CancelledContext(t *testing.T) {
	path := fixture(t, detailRows, nil, nil)
	wb := open(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(wb, config.DefaultNumberingConfig()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
