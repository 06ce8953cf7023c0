package schema

import (
	"encoding/json"
	"sort"
)

// URLRow 是项目外链编辑器里的一行（类型 + 地址）。
// Order 由列表位置决定，保存时重算。
type URLRow struct {
	URLType string `json:"type"`
	URL     string `json:"url"`
	Label   string `json:"label,omitempty"`
	Order   int    `json:"order"`
}

// ImageRow 是项目图片编辑器里的一行。
// URL 与 Type 在表单中只读；alt/宽高/featured 可编辑。
type ImageRow struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	AltText    string `json:"alt_text,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	IsFeatured bool   `json:"is_featured"`
	Order      int    `json:"order"`
}

// Entity 是表单引擎操作的内存实体：从存储层读出后投影成这个
// 与类型无关的形状，渲染与采集都只依赖它。
type Entity struct {
	ID           *uint          `json:"id,omitempty"`
	Slug         string         `json:"slug,omitempty"`
	Category     string         `json:"category,omitempty"`
	IsFeaturedCV bool           `json:"is_featured_cv,omitempty"`
	Company      string         `json:"company,omitempty"`
	Institution  string         `json:"institution,omitempty"`
	Location     string         `json:"location,omitempty"`
	StartDate    string         `json:"startDate,omitempty"`
	EndDate      string         `json:"endDate,omitempty"`
	Current      bool           `json:"current,omitempty"`
	IconURL      string         `json:"icon_url,omitempty"`
	Proficiency  int            `json:"proficiency,omitempty"`
	Order        int            `json:"order,omitempty"`
	CategoryID   *uint          `json:"category_id,omitempty"`
	VisibleCV    *bool          `json:"is_visible_cv,omitempty"`
	VisibleSite  *bool          `json:"is_visible_portfolio,omitempty"`
	Issuer       string         `json:"issuer,omitempty"`
	IssueDate    string         `json:"issueDate,omitempty"`
	ExpiryDate   string         `json:"expiryDate,omitempty"`
	Credential   string         `json:"credential_url,omitempty"`
	LegacyURL    string         `json:"legacy_url,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Courses      []string       `json:"courses,omitempty"`
	Translations []Translation  `json:"translations,omitempty"`
	URLs         []URLRow       `json:"urls,omitempty"`
	Images       []ImageRow     `json:"images,omitempty"`
}

// EffectiveURLRows 返回编辑器应展示的外链行。
// URLs 非空时原样使用；否则尝试从旧版 url 标量回落展开。
func (e *Entity) EffectiveURLRows() []URLRow {
	if e == nil {
		return nil
	}
	if len(e.URLs) > 0 {
		return e.URLs
	}
	return ExpandLegacyURL(e.LegacyURL)
}

// ExpandLegacyURL 展开旧版 url 标量：
//   - JSON 对象 {"github": "...", "live": "..."} → 每个非空键一行，github 在前；
//   - 裸字符串 → 单行 live；
//   - 空串 → 无行。
func ExpandLegacyURL(raw string) []URLRow {
	if raw == "" {
		return nil
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed) == 0 {
		return []URLRow{{URLType: "live", URL: raw, Order: 0}}
	}

	// 固定优先级保证展开顺序稳定：github 恒在 live 之前
	// （与旧版保存逻辑 github=0 / live=1 的 order 约定一致）。
	priority := []string{"github", "live", "demo", "article"}
	rows := make([]URLRow, 0, len(parsed))
	for _, urlType := range priority {
		if value := parsed[urlType]; value != "" {
			rows = append(rows, URLRow{URLType: urlType, URL: value})
			delete(parsed, urlType)
		}
	}
	remaining := make([]string, 0, len(parsed))
	for urlType := range parsed {
		remaining = append(remaining, urlType)
	}
	sort.Strings(remaining)
	for _, urlType := range remaining {
		if value := parsed[urlType]; value != "" {
			rows = append(rows, URLRow{URLType: urlType, URL: value})
		}
	}
	for i := range rows {
		rows[i].Order = i
	}
	return rows
}
