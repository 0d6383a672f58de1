package api

import (
	"bytes"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/rushteam/moviekit/analytics"
	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/engine"
	"github.com/rushteam/moviekit/filter"
)

// 请求体上限
const maxBodyBytes = 1 << 20

var validate = validator.New()

// RecommendRequest 是 POST /v1/recommendations 的请求体。
//
// conditions 支持两种形式：
//   - 对象 {"Title": "Heat", "Genres": "Crime"}：按 key 排序处理，空文本的条件被忽略
//   - 列表 [{"field": "Title", "text": "Heat"}]：保持提交顺序，空文本照常计入
type RecommendRequest struct {
	Conditions json.RawMessage `json:"conditions" validate:"required"`
	TopN       int             `json:"top_n" validate:"gte=0,lte=100"`
	Filter     string          `json:"filter" validate:"max=1024"`
}

// parseConditions 解析对象或列表形式的条件。
func parseConditions(raw json.RawMessage) ([]core.QueryCondition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "conditions are required")
	}
	switch raw[0] {
	case '{':
		var obj map[string]string
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "conditions object must map field to text", err)
		}
		keys := make([]string, 0, len(obj))
		for k, v := range obj {
			if v == "" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		conds := make([]core.QueryCondition, 0, len(keys))
		for _, k := range keys {
			conds = append(conds, core.QueryCondition{Field: k, Text: obj[k]})
		}
		return conds, nil
	case '[':
		var list []core.QueryCondition
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "conditions list must contain {field, text} objects", err)
		}
		return list, nil
	default:
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "conditions must be an object or a list")
	}
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, "invalid JSON body: "+err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, err.Error())
		return
	}
	conds, err := parseConditions(req.Conditions)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp, err := s.engine.Recommend(r.Context(), engine.Request{
		Conditions: conds,
		TopN:       req.TopN,
		Filter:     req.Filter,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, resp)
}

// viewFromQuery 读取 ?year=1995&year=2000&mpaa=R&genre=Crime，也接受逗号分隔。
func viewFromQuery(r *http.Request) analytics.ViewFilter {
	q := r.URL.Query()
	return analytics.ViewFilter{
		Years:  selection(q["year"]),
		MPAA:   selection(q["mpaa"]),
		Genres: selection(q["genre"]),
	}
}

func selection(values []string) filter.Selection {
	var out filter.Selection
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// records 返回当前快照的目录记录。
func (s *Server) records(w http.ResponseWriter, r *http.Request) ([]catalog.MovieRecord, bool) {
	snap := s.engine.Current()
	if snap == nil {
		respondDomainError(w, r, engine.ErrNotReady)
		return nil, false
	}
	return snap.Catalog.Records(), true
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	respondOK(w, r, analytics.Overview(records, viewFromQuery(r)))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	respondOK(w, r, analytics.Insights(records, viewFromQuery(r)))
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	respondOK(w, r, analytics.Options(records))
}

// SnapshotInfo 描述当前快照。
type SnapshotInfo struct {
	ID          string `json:"id"`
	Version     uint64 `json:"version"`
	CatalogHash string `json:"catalog_hash"`
	Movies      int    `json:"movies"`
	Terms       int    `json:"terms"`
	BuiltAt     string `json:"built_at"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Current()
	if snap == nil {
		respondDomainError(w, r, engine.ErrNotReady)
		return
	}
	respondOK(w, r, newSnapshotInfo(snap))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Reload(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, newSnapshotInfo(snap))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.engine.Ready() {
		respondDomainError(w, r, engine.ErrNotReady)
		return
	}
	respondOK(w, r, map[string]string{"status": "ready"})
}
