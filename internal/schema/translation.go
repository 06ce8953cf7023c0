package schema

// Translation 是实体在单一语言下的文案包。
// 空值即零值：渲染层可以直接取字段而无需判空。
type Translation struct {
	Lang          string `json:"lang"`
	Title         string `json:"title,omitempty"`
	Name          string `json:"name,omitempty"`
	Subtitle      string `json:"subtitle,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Description   string `json:"description,omitempty"`
	CVDescription string `json:"cv_description,omitempty"`
}

// DisplayTitle 返回标题，技能类实体回落到 Name。
func (t Translation) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// ResolveTranslation 按语言挑选翻译子记录。
// 列表为空或语言缺失时返回零值 Translation；同语言出现多条时
// 第一条胜出（上游并不保证唯一性，这里只记录该边界行为，不做修复）。
func ResolveTranslation(translations []Translation, lang string) Translation {
	for _, t := range translations {
		if t.Lang == lang {
			return t
		}
	}
	return Translation{}
}

func (t Translation) fieldValue(name string) string {
	switch name {
	case "title":
		return t.Title
	case "name":
		return t.Name
	case "subtitle":
		return t.Subtitle
	case "summary":
		return t.Summary
	case "description":
		return t.Description
	case "cv_description":
		return t.CVDescription
	}
	return ""
}
