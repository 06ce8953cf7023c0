package schema

// FormDescriptor 是表单引擎的渲染结果：后台前端拿到它即可
// 画出完整编辑器，不需要再按类型分支。
type FormDescriptor struct {
	Type            EntityType       `json:"type"`
	Mode            string           `json:"mode"` // "create" | "edit"
	ID              *uint            `json:"id,omitempty"`
	Fields          []FormField      `json:"fields"`
	TranslationTabs []TranslationTab `json:"translation_tabs"`
	URLRows         []URLRow         `json:"url_rows,omitempty"`
	ImageRows       []ImageRow       `json:"image_rows,omitempty"`
	SupportsImages  bool             `json:"supports_images"`
	SupportsURLs    bool             `json:"supports_urls"`
}

// FormField 是一个带当前值的可编辑字段。
type FormField struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Label    string    `json:"label"`
	Value    any       `json:"value"`
	Required bool      `json:"required,omitempty"`
	ReadOnly bool      `json:"read_only,omitempty"`
	Options  []Option  `json:"options,omitempty"`
	Disables string    `json:"disables,omitempty"`
}

// TranslationTab 是一种语言下的全部文案字段。
type TranslationTab struct {
	Lang   string      `json:"lang"`
	Fields []FormField `json:"fields"`
}

// RenderOptions 携带渲染时需要外部提供的数据（目前只有技能分类下拉）。
type RenderOptions struct {
	SkillCategories []Option
}

// RenderForm 将 (类型, 实体或 nil) 组合成 FormDescriptor。
// entity 为 nil 即创建模式：所有字段空白/默认值。
func RenderForm(t EntityType, entity *Entity, opts RenderOptions) (FormDescriptor, error) {
	s, err := SchemaFor(t)
	if err != nil {
		return FormDescriptor{}, err
	}

	desc := FormDescriptor{
		Type:           t,
		Mode:           "create",
		Fields:         make([]FormField, 0, len(s.Fields)),
		SupportsImages: s.SupportsImages,
		SupportsURLs:   s.SupportsURLs,
	}
	if entity != nil && entity.ID != nil {
		desc.Mode = "edit"
		desc.ID = entity.ID
	}

	for _, f := range s.Fields {
		field := FormField{
			Name:     f.Name,
			Kind:     f.Kind,
			Label:    f.Label,
			Value:    fieldValue(f, entity),
			Required: f.Required,
			Options:  f.Options,
			Disables: f.Disables,
		}
		if f.Name == "category_id" && len(opts.SkillCategories) > 0 {
			field.Options = opts.SkillCategories
		}
		// 创建后不可变字段只在已有 id 时锁定。
		if f.ImmutableAfterCreate && desc.Mode == "edit" {
			field.ReadOnly = true
		}
		desc.Fields = append(desc.Fields, field)
	}

	for _, lang := range Languages {
		var tr Translation
		if entity != nil {
			tr = ResolveTranslation(entity.Translations, lang)
		}
		tab := TranslationTab{Lang: lang, Fields: make([]FormField, 0, len(s.TranslatedFields))}
		for _, f := range s.TranslatedFields {
			tab.Fields = append(tab.Fields, FormField{
				Name:     f.Name + "_" + lang,
				Kind:     f.Kind,
				Label:    f.Label,
				Value:    tr.fieldValue(f.Name),
				Required: f.Required,
			})
		}
		desc.TranslationTabs = append(desc.TranslationTabs, tab)
	}

	if s.SupportsURLs && entity != nil {
		desc.URLRows = entity.EffectiveURLRows()
	}
	if s.SupportsImages && entity != nil {
		desc.ImageRows = entity.Images
	}

	return desc, nil
}

// fieldValue 从实体投影出字段当前值；创建模式返回空白/默认。
func fieldValue(f Field, e *Entity) any {
	if e == nil {
		if f.Kind == FieldCheckbox {
			return f.DefaultChecked
		}
		if f.Kind == FieldNumber {
			return 0
		}
		return ""
	}

	switch f.Name {
	case "slug":
		return e.Slug
	case "category":
		return e.Category
	case "is_featured_cv":
		return e.IsFeaturedCV
	case "company":
		return e.Company
	case "institution":
		return e.Institution
	case "location":
		return e.Location
	case "startDate":
		return e.StartDate
	case "endDate":
		return e.EndDate
	case "current":
		return e.Current
	case "icon_url":
		return e.IconURL
	case "proficiency":
		return e.Proficiency
	case "order":
		return e.Order
	case "category_id":
		if e.CategoryID == nil {
			return ""
		}
		return *e.CategoryID
	case "is_visible_cv":
		return boolOrDefault(e.VisibleCV, f.DefaultChecked)
	case "is_visible_portfolio":
		return boolOrDefault(e.VisibleSite, f.DefaultChecked)
	case "issuer":
		return e.Issuer
	case "issueDate":
		return e.IssueDate
	case "expiryDate":
		return e.ExpiryDate
	case "url":
		return e.Credential
	case "tags":
		return joinComma(e.Tags)
	case "courses":
		return joinComma(e.Courses)
	}

	if f.Kind == FieldCheckbox {
		return f.DefaultChecked
	}
	return ""
}

func boolOrDefault(v *bool, dflt bool) bool {
	if v == nil {
		return dflt
	}
	return *v
}

func joinComma(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
