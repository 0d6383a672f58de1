package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/rushteam/moviekit/core"
)

// Loader 从外部数据源加载目录。
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// LoaderFunc 让普通函数实现 Loader。
type LoaderFunc func(ctx context.Context) (*Catalog, error)

func (f LoaderFunc) Load(ctx context.Context) (*Catalog, error) { return f(ctx) }

// FileLoader 按扩展名选择解析方式：.csv / .xlsx / .json。
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(_ context.Context) (*Catalog, error) {
	return LoadFile(l.Path)
}

// RequiredColumns 是推荐所需的文本列，缺任何一列都无法构建目录。
var RequiredColumns = []string{"Title", "Genres", "Stars", "Director", "Plot_Summary"}

// 列名别名（归一化后）-> RawMovie 字段
var columnAliases = map[string]string{
	"title":               "Title",
	"genres":              "Genres",
	"stars":               "Stars",
	"director":            "Director",
	"plot_summary":        "Plot_Summary",
	"duration":            "Duration",
	"duration_in_minutes": "Duration",
	"votes":               "Votes",
	"imdb_rating":         "Rating",
	"rating":              "Rating",
	"year":                "Year",
	"mpaa":                "MPAA",
}

// canonicalColumn 把 "Plot Summary" / "plot_summary" / " PLOT_SUMMARY " 统一成规范列名。
func canonicalColumn(name string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), "_"))
	col, ok := columnAliases[key]
	return col, ok
}

func checkRequired(present map[string]bool) error {
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return core.NewDataLoadError("catalog: missing required columns "+strings.Join(missing, ", "), nil)
	}
	return nil
}

func assign(raw *RawMovie, col string, v any) {
	switch col {
	case "Title":
		raw.Title = v
	case "Genres":
		raw.Genres = v
	case "Stars":
		raw.Stars = v
	case "Director":
		raw.Director = v
	case "Plot_Summary":
		raw.PlotSummary = v
	case "Duration":
		raw.Duration = v
	case "Votes":
		raw.Votes = v
	case "Rating":
		raw.Rating = v
	case "Year":
		raw.Year = v
	case "MPAA":
		raw.MPAA = v
	}
}

// FromRows 把表格（表头 + 数据行）转换为目录。
// 短行缺失的单元格视为缺失值；多余的单元格被忽略。
func FromRows(header []string, rows [][]string) (*Catalog, error) {
	if len(header) == 0 {
		return nil, core.NewDataLoadError("catalog: empty header", nil)
	}
	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		// 去掉 UTF-8 BOM
		h = strings.TrimPrefix(h, "\ufeff")
		if col, ok := canonicalColumn(h); ok {
			columns[i] = col
			present[col] = true
		}
	}
	if err := checkRequired(present); err != nil {
		return nil, err
	}

	raws := make([]RawMovie, 0, len(rows))
	for _, row := range rows {
		var raw RawMovie
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			if strings.TrimSpace(row[i]) == "" {
				continue
			}
			assign(&raw, col, row[i])
		}
		raws = append(raws, raw)
	}
	return FromRaw(raws), nil
}

// ReadCSV 从 CSV 流读取目录，第一行为表头。
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewDataLoadError("catalog: parse csv", err)
	}
	if len(records) == 0 {
		return nil, core.NewDataLoadError("catalog: csv has no header", nil)
	}
	return FromRows(records[0], records[1:])
}

// LoadCSV 从 CSV 文件读取目录。
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewDataLoadError("catalog: open "+path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadXLSX 读取工作簿第一个工作表，第一行为表头。
func ReadXLSX(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewDataLoadError("catalog: open xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewDataLoadError("catalog: xlsx has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewDataLoadError("catalog: read sheet "+sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, core.NewDataLoadError("catalog: xlsx has no header", nil)
	}
	return FromRows(rows[0], rows[1:])
}

// LoadXLSX 从 Excel 文件读取目录。
func LoadXLSX(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewDataLoadError("catalog: open "+path, err)
	}
	defer f.Close()
	return ReadXLSX(f)
}

// ReadJSON 读取对象数组：[{"Title": "...", "Genres": ["Crime"], ...}]。
// 列表字段既可以是字符串也可以是数组。
func ReadJSON(r io.Reader) (*Catalog, error) {
	var objects []map[string]any
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return nil, core.NewDataLoadError("catalog: parse json", err)
	}

	present := make(map[string]bool)
	raws := make([]RawMovie, 0, len(objects))
	for _, obj := range objects {
		var raw RawMovie
		for k, v := range obj {
			col, ok := canonicalColumn(k)
			if !ok {
				continue
			}
			present[col] = true
			assign(&raw, col, v)
		}
		raws = append(raws, raw)
	}
	if len(objects) > 0 {
		if err := checkRequired(present); err != nil {
			return nil, err
		}
	}
	return FromRaw(raws), nil
}

// LoadJSON 从 JSON 文件读取目录。
func LoadJSON(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewDataLoadError("catalog: open "+path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// LoadFile 按扩展名选择加载器。
func LoadFile(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, core.NewDataLoadError(fmt.Sprintf("catalog: unsupported file type %q", filepath.Ext(path)), nil)
	}
}
