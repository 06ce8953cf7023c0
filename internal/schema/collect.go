package schema

import (
	"strconv"
	"strings"
)

// RawSubmission 是后台提交的原始负载。Fields 的值类型不定
// （字符串/布尔/数字都有），采集时按字段定义归一化。
type RawSubmission struct {
	ID           *uint                        `json:"id,omitempty"`
	Fields       map[string]any               `json:"fields"`
	Translations map[string]map[string]string `json:"translations"`
	URLs         []URLRow                     `json:"urls"`
	Images       []ImageRow                   `json:"images"`
}

// CollectPayload 把一次表单提交归一化成 Entity：
//   - 声明过的 checkbox 一律覆写成字面布尔（缺省即 false，浏览器
//     不提交未勾选项）；
//   - tags 按逗号切分并逐项 trim，空 token 保留；
//   - courses 按逗号裸切分（不 trim，与 tags 不对称，历史行为）;
//   - urls/images 的 order 按行位置重算；
//   - id 仅在编辑时带上。
func CollectPayload(t EntityType, raw RawSubmission) (Entity, error) {
	s, err := SchemaFor(t)
	if err != nil {
		return Entity{}, err
	}

	e := Entity{ID: raw.ID}

	for _, f := range s.Fields {
		v, present := raw.Fields[f.Name]
		switch f.Kind {
		case FieldCheckbox:
			assignField(&e, f.Name, present && coerceBool(v))
		case FieldNumber:
			assignField(&e, f.Name, coerceInt(v))
		case FieldTags:
			if f.Name == "courses" {
				e.Courses = SplitCourses(coerceString(v))
			} else {
				e.Tags = SplitTags(coerceString(v))
			}
		default:
			assignField(&e, f.Name, coerceString(v))
		}
	}

	for _, lang := range Languages {
		values, ok := raw.Translations[lang]
		if !ok {
			continue
		}
		tr := Translation{Lang: lang}
		for _, f := range s.TranslatedFields {
			setTranslationField(&tr, f.Name, values[f.Name])
		}
		e.Translations = append(e.Translations, tr)
	}

	if s.SupportsURLs {
		e.URLs = normalizeURLRows(raw.URLs)
	}
	if s.SupportsImages {
		e.Images = normalizeImageRows(raw.Images)
	}

	return e, nil
}

// SplitTags 把逗号分隔的 tag 串切成列表：逐项 trim，顺序保留，
// 空 token 也保留（"a,,b" → ["a","","b"]）。整串为空返回 nil。
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// SplitCourses 按逗号裸切分，不做 trim。与 SplitTags 的不对称
// 是刻意保留的历史行为，存储层会原样写入。
func SplitCourses(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// normalizeURLRows 重算位置序并给空类型补默认值 live。
func normalizeURLRows(rows []URLRow) []URLRow {
	out := make([]URLRow, 0, len(rows))
	for i, r := range rows {
		if r.URLType == "" {
			r.URLType = "live"
		}
		r.Order = i
		out = append(out, r)
	}
	return out
}

func normalizeImageRows(rows []ImageRow) []ImageRow {
	out := make([]ImageRow, 0, len(rows))
	for i, r := range rows {
		if r.Type == "" {
			r.Type = "image"
		}
		r.Order = i
		out = append(out, r)
	}
	return out
}

// assignField 把归一化后的值写回 Entity 的对应槽位。
func assignField(e *Entity, name string, value any) {
	switch name {
	case "slug":
		e.Slug = value.(string)
	case "category":
		e.Category = value.(string)
	case "is_featured_cv":
		e.IsFeaturedCV = value.(bool)
	case "company":
		e.Company = value.(string)
	case "institution":
		e.Institution = value.(string)
	case "location":
		e.Location = value.(string)
	case "startDate":
		e.StartDate = value.(string)
	case "endDate":
		e.EndDate = value.(string)
	case "current":
		e.Current = value.(bool)
	case "icon_url":
		e.IconURL = value.(string)
	case "proficiency":
		e.Proficiency = value.(int)
	case "order":
		e.Order = value.(int)
	case "category_id":
		if id := value.(int); id > 0 {
			u := uint(id)
			e.CategoryID = &u
		}
	case "is_visible_cv":
		b := value.(bool)
		e.VisibleCV = &b
	case "is_visible_portfolio":
		b := value.(bool)
		e.VisibleSite = &b
	case "issuer":
		e.Issuer = value.(string)
	case "issueDate":
		e.IssueDate = value.(string)
	case "expiryDate":
		e.ExpiryDate = value.(string)
	case "url":
		e.Credential = value.(string)
	}
}

func setTranslationField(tr *Translation, name, value string) {
	switch name {
	case "title":
		tr.Title = value
	case "name":
		tr.Name = value
	case "subtitle":
		tr.Subtitle = value
	case "summary":
		tr.Summary = value
	case "description":
		tr.Description = value
	case "cv_description":
		tr.CVDescription = value
	}
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "on" || b == "true" || b == "1"
	}
	return false
}

func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
