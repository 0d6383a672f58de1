package core

// Field 是可被查询的电影语义字段。
type Field string

const (
	FieldTitle       Field = "Title"
	FieldGenres      Field = "Genres"
	FieldStars       Field = "Stars"
	FieldDirector    Field = "Director"
	FieldPlotSummary Field = "Plot_Summary"
)

// Fields 按固定顺序返回全部可识别字段。
func Fields() []Field {
	return []Field{FieldTitle, FieldGenres, FieldStars, FieldDirector, FieldPlotSummary}
}

// QueryCondition 是调用方提交的一个 (字段名, 查询文本) 对。
// Field 保留原始输入，归一化由 recall 包完成。
type QueryCondition struct {
	Field string `json:"field" yaml:"field"`
	Text  string `json:"text" yaml:"text"`
}

// UnrecognizedFieldWarning 表示一个字段名无法识别而被丢弃。
// 它不是 error：只用于日志与观测，不会中断查询。
type UnrecognizedFieldWarning struct {
	Field string `json:"field"`
}

func (w UnrecognizedFieldWarning) String() string {
	return "unrecognized query field: " + w.Field
}

// Recommendation 是一条推荐结果。
// Index 是该电影在目录中的位置，用于稳定排序与调试。
type Recommendation struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Index int     `json:"index"`
}
