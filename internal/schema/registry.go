package schema

import (
	"errors"
	"fmt"
)

// EntityType 标识后台可编辑的内容类型。
type EntityType string

const (
	TypeProject       EntityType = "project"
	TypeExperience    EntityType = "experience"
	TypeEducation     EntityType = "education"
	TypeSkill         EntityType = "skill"
	TypeSkillCategory EntityType = "skill-category"
	TypeCertification EntityType = "certification"
)

// ErrUnknownType 在查询未注册的类型时返回。
// 未知类型必须显式失败，绝不能静默渲染出一张空表单。
var ErrUnknownType = errors.New("unknown entity type")

// Languages 是翻译页签的语言顺序。
var Languages = []string{"es", "en"}

// ProjectCategories 是项目分类的合法取值。
var ProjectCategories = []string{"project", "work", "study"}

// URLTypes 是外链行的合法类型，新行默认 live。
var URLTypes = []string{"live", "github", "demo", "article"}

// FieldKind 描述表单控件类型。
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldCheckbox FieldKind = "checkbox"
	FieldSelect   FieldKind = "select"
	FieldURL      FieldKind = "url"
	FieldTags     FieldKind = "tags"
)

// Option 是下拉字段的一个可选项。
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field 描述一个非翻译字段的静态定义。
type Field struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Label    string    `json:"label"`
	Required bool      `json:"required,omitempty"`
	// ImmutableAfterCreate 的字段在编辑模式下渲染为只读（如 skill-category 的 slug）。
	ImmutableAfterCreate bool     `json:"-"`
	Options              []Option `json:"options,omitempty"`
	// Disables 指定勾选后需要在交互层清空并禁用的字段（保存层不强制）。
	Disables string `json:"disables,omitempty"`
	// DefaultChecked 仅对 checkbox 生效：实体缺省时视为已勾选。
	DefaultChecked bool `json:"-"`
}

// TranslatedField 描述每种语言各渲染一份的文案字段。
type TranslatedField struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Label    string    `json:"label"`
	Required bool      `json:"required,omitempty"`
}

// Schema 是一种实体类型的完整字段清单。注册后不可变，按 typeKey 查表。
type Schema struct {
	TypeKey          EntityType
	TitleField       string // "title" 或 "name"（skill/skill-category 用 name）
	Fields           []Field
	TranslatedFields []TranslatedField
	SupportsImages   bool
	SupportsURLs     bool
	SupportsCVOption bool // 翻译页签带可选的 CV 覆盖描述
	SupportsTags     bool
	SupportsCourses  bool
}

var registry = map[EntityType]Schema{
	TypeProject: {
		TypeKey:    TypeProject,
		TitleField: "title",
		Fields: []Field{
			{Name: "slug", Kind: FieldText, Label: "Slug"},
			{Name: "category", Kind: FieldSelect, Label: "Categoría", Required: true, Options: options(ProjectCategories)},
			{Name: "is_featured_cv", Kind: FieldCheckbox, Label: "Destacado en CV"},
			{Name: "tags", Kind: FieldTags, Label: "Tags (separados por coma)"},
		},
		TranslatedFields: []TranslatedField{
			{Name: "title", Kind: FieldText, Label: "Título", Required: true},
			{Name: "subtitle", Kind: FieldText, Label: "Subtítulo"},
			{Name: "summary", Kind: FieldTextarea, Label: "Resumen"},
			{Name: "description", Kind: FieldTextarea, Label: "Descripción"},
			{Name: "cv_description", Kind: FieldTextarea, Label: "Descripción para CV (opcional)"},
		},
		SupportsImages:   true,
		SupportsURLs:     true,
		SupportsCVOption: true,
		SupportsTags:     true,
	},
	TypeExperience: {
		TypeKey:    TypeExperience,
		TitleField: "title",
		Fields: []Field{
			{Name: "slug", Kind: FieldText, Label: "Slug"},
			{Name: "company", Kind: FieldText, Label: "Empresa"},
			{Name: "location", Kind: FieldText, Label: "Ubicación"},
			{Name: "startDate", Kind: FieldDate, Label: "Fecha inicio"},
			{Name: "endDate", Kind: FieldDate, Label: "Fecha fin"},
			{Name: "current", Kind: FieldCheckbox, Label: "Puesto actual", Disables: "endDate"},
			{Name: "tags", Kind: FieldTags, Label: "Tags (separados por coma)"},
		},
		TranslatedFields: []TranslatedField{
			{Name: "title", Kind: FieldText, Label: "Puesto", Required: true},
			{Name: "subtitle", Kind: FieldText, Label: "Subtítulo"},
			{Name: "description", Kind: FieldTextarea, Label: "Descripción"},
		},
		SupportsTags: true,
	},
	TypeEducation: {
		TypeKey:    TypeEducation,
		TitleField: "title",
		Fields: []Field{
			{Name: "slug", Kind: FieldText, Label: "Slug"},
			{Name: "institution", Kind: FieldText, Label: "Institución"},
			{Name: "location", Kind: FieldText, Label: "Ubicación"},
			{Name: "startDate", Kind: FieldDate, Label: "Fecha inicio"},
			{Name: "endDate", Kind: FieldDate, Label: "Fecha fin"},
			{Name: "courses", Kind: FieldTags, Label: "Cursos (separados por coma)"},
		},
		TranslatedFields: []TranslatedField{
			{Name: "title", Kind: FieldText, Label: "Título/Grado", Required: true},
			{Name: "subtitle", Kind: FieldText, Label: "Área de estudio"},
			{Name: "description", Kind: FieldTextarea, Label: "Descripción"},
		},
		SupportsCourses: true,
	},
	TypeSkill: {
		TypeKey:    TypeSkill,
		TitleField: "name",
		Fields: []Field{
			{Name: "slug", Kind: FieldText, Label: "Slug"},
			{Name: "category_id", Kind: FieldSelect, Label: "Categoría"},
			{Name: "proficiency", Kind: FieldNumber, Label: "Nivel (0-100)"},
			{Name: "order", Kind: FieldNumber, Label: "Orden"},
			{Name: "icon_url", Kind: FieldURL, Label: "Icono (URL)"},
			{Name: "is_visible_cv", Kind: FieldCheckbox, Label: "Visible en CV", DefaultChecked: true},
			{Name: "is_visible_portfolio", Kind: FieldCheckbox, Label: "Visible en portfolio", DefaultChecked: true},
		},
		TranslatedFields: []TranslatedField{
			{Name: "name", Kind: FieldText, Label: "Nombre", Required: true},
			{Name: "description", Kind: FieldTextarea, Label: "Descripción"},
		},
	},
	TypeSkillCategory: {
		TypeKey:    TypeSkillCategory,
		TitleField: "name",
		Fields: []Field{
			{Name: "slug", Kind: FieldText, Label: "Slug", Required: true, ImmutableAfterCreate: true},
			{Name: "order", Kind: FieldNumber, Label: "Orden"},
		},
		TranslatedFields: []TranslatedField{
			{Name: "name", Kind: FieldText, Label: "Nombre", Required: true},
		},
	},
	TypeCertification: {
		TypeKey:    TypeCertification,
		TitleField: "title",
		Fields: []Field{
			{Name: "slug", Kind: FieldText, Label: "Slug"},
			{Name: "issuer", Kind: FieldText, Label: "Emisor"},
			{Name: "issueDate", Kind: FieldDate, Label: "Fecha de emisión"},
			{Name: "expiryDate", Kind: FieldDate, Label: "Fecha de expiración"},
			{Name: "url", Kind: FieldURL, Label: "URL de credencial"},
		},
		TranslatedFields: []TranslatedField{
			{Name: "title", Kind: FieldText, Label: "Título", Required: true},
			{Name: "description", Kind: FieldTextarea, Label: "Descripción"},
		},
	},
}

// SchemaFor 按类型查表。未知类型返回 ErrUnknownType。
func SchemaFor(t EntityType) (Schema, error) {
	s, ok := registry[t]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	return s, nil
}

// Types 返回全部已注册类型（顺序固定，供路由与测试遍历）。
func Types() []EntityType {
	return []EntityType{
		TypeProject,
		TypeExperience,
		TypeEducation,
		TypeSkill,
		TypeSkillCategory,
		TypeCertification,
	}
}

// CheckboxFields 返回该类型声明的全部 checkbox 字段名。
// 序列化时这些字段一律覆写为字面布尔值（缺省即 false）。
func (s Schema) CheckboxFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == FieldCheckbox {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldByName 返回命名字段（含翻译字段不在内）。
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func options(values []string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}
	return opts
}
