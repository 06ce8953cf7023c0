package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestSchemaFor_UnknownType(t *testing.T) {
	_, err := SchemaFor(EntityType("banana"))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSchemaFor_AllRegisteredTypes(t *testing.T) {
	for _, typ := range Types() {
		s, err := SchemaFor(typ)
		if err != nil {
			t.Fatalf("SchemaFor(%s): %v", typ, err)
		}
		if s.TypeKey != typ {
			t.Fatalf("TypeKey mismatch: got %s want %s", s.TypeKey, typ)
		}
		if len(s.TranslatedFields) == 0 {
			t.Fatalf("%s: no translated fields", typ)
		}
	}
}

func TestRenderForm_CreateMode(t *testing.T) {
	desc, err := RenderForm(TypeProject, nil, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	if desc.Mode != "create" {
		t.Fatalf("mode = %q, want create", desc.Mode)
	}
	if desc.ID != nil {
		t.Fatalf("create mode should carry no id")
	}
	if !desc.SupportsImages || !desc.SupportsURLs {
		t.Fatalf("project must support images and urls")
	}
	if len(desc.TranslationTabs) != 2 || desc.TranslationTabs[0].Lang != "es" || desc.TranslationTabs[1].Lang != "en" {
		t.Fatalf("translation tabs wrong: %+v", desc.TranslationTabs)
	}
}

func TestRenderForm_SkillCheckboxDefaultsTrue(t *testing.T) {
	desc, err := RenderForm(TypeSkill, nil, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	for _, f := range desc.Fields {
		if f.Name == "is_visible_cv" || f.Name == "is_visible_portfolio" {
			if f.Value != true {
				t.Fatalf("%s default = %v, want true", f.Name, f.Value)
			}
		}
	}
}

func TestRenderForm_SkillCategoryOptionsInjected(t *testing.T) {
	opts := []Option{{Value: "3", Label: "Backend"}}
	desc, err := RenderForm(TypeSkill, nil, RenderOptions{SkillCategories: opts})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	for _, f := range desc.Fields {
		if f.Name == "category_id" {
			if !reflect.DeepEqual(f.Options, opts) {
				t.Fatalf("category options = %+v, want %+v", f.Options, opts)
			}
			return
		}
	}
	t.Fatal("category_id field missing")
}

func TestRenderForm_SlugImmutableAfterCreate(t *testing.T) {
	id := uint(7)
	desc, err := RenderForm(TypeSkillCategory, &Entity{ID: &id, Slug: "backend"}, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	if desc.Mode != "edit" {
		t.Fatalf("mode = %q, want edit", desc.Mode)
	}
	for _, f := range desc.Fields {
		if f.Name == "slug" {
			if !f.ReadOnly {
				t.Fatal("slug must be read-only when editing a skill-category")
			}
			if f.Value != "backend" {
				t.Fatalf("slug value = %v", f.Value)
			}
			return
		}
	}
	t.Fatal("slug field missing")
}

func TestRenderForm_SlugEditableOnCreate(t *testing.T) {
	desc, err := RenderForm(TypeSkillCategory, nil, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	for _, f := range desc.Fields {
		if f.Name == "slug" && f.ReadOnly {
			t.Fatal("slug must stay editable before the category exists")
		}
	}
}

func TestRenderForm_CurrentDisablesEndDate(t *testing.T) {
	desc, err := RenderForm(TypeExperience, nil, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	for _, f := range desc.Fields {
		if f.Name == "current" {
			if f.Disables != "endDate" {
				t.Fatalf("current.disables = %q, want endDate", f.Disables)
			}
			return
		}
	}
	t.Fatal("current field missing")
}

func TestRenderForm_LegacyURLFallback(t *testing.T) {
	id := uint(1)
	e := &Entity{
		ID:        &id,
		LegacyURL: `{"live":"https://demo.example","github":"https://github.com/x/y"}`,
	}
	desc, err := RenderForm(TypeProject, e, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	if len(desc.URLRows) != 2 {
		t.Fatalf("url rows = %d, want 2", len(desc.URLRows))
	}
	if desc.URLRows[0].URLType != "github" || desc.URLRows[0].Order != 0 {
		t.Fatalf("first row = %+v, want github/0", desc.URLRows[0])
	}
	if desc.URLRows[1].URLType != "live" || desc.URLRows[1].Order != 1 {
		t.Fatalf("second row = %+v, want live/1", desc.URLRows[1])
	}
}

func TestExpandLegacyURL_BareString(t *testing.T) {
	rows := ExpandLegacyURL("https://demo.example")
	if len(rows) != 1 || rows[0].URLType != "live" || rows[0].URL != "https://demo.example" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestExpandLegacyURL_Empty(t *testing.T) {
	if rows := ExpandLegacyURL(""); rows != nil {
		t.Fatalf("rows = %+v, want nil", rows)
	}
}

func TestEffectiveURLRows_PreferStoredRows(t *testing.T) {
	e := &Entity{
		LegacyURL: `{"live":"https://old.example"}`,
		URLs:      []URLRow{{URLType: "demo", URL: "https://new.example", Order: 0}},
	}
	rows := e.EffectiveURLRows()
	if len(rows) != 1 || rows[0].URL != "https://new.example" {
		t.Fatalf("stored rows must shadow the legacy scalar, got %+v", rows)
	}
}

func TestSplitTags_PreservesEmptyTokens(t *testing.T) {
	got := SplitTags("go, redis ,,docker")
	want := []string{"go", "redis", "", "docker"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitTags = %v, want %v", got, want)
	}
}

func TestSplitCourses_NoTrim(t *testing.T) {
	got := SplitCourses("Algo I, Algo II")
	want := []string{"Algo I", " Algo II"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitCourses = %v, want %v", got, want)
	}
}

func TestCollectPayload_CheckboxMissingIsFalse(t *testing.T) {
	e, err := CollectPayload(TypeSkill, RawSubmission{
		Fields: map[string]any{"slug": "docker"},
	})
	if err != nil {
		t.Fatalf("CollectPayload: %v", err)
	}
	if e.VisibleCV == nil || *e.VisibleCV {
		t.Fatal("missing is_visible_cv must collect as false")
	}
	if e.VisibleSite == nil || *e.VisibleSite {
		t.Fatal("missing is_visible_portfolio must collect as false")
	}
}

func TestCollectPayload_CheckboxCoercion(t *testing.T) {
	e, err := CollectPayload(TypeExperience, RawSubmission{
		Fields: map[string]any{"current": "on"},
	})
	if err != nil {
		t.Fatalf("CollectPayload: %v", err)
	}
	if !e.Current {
		t.Fatal(`"on" must coerce to true`)
	}
}

func TestCollectPayload_RecomputesRowOrder(t *testing.T) {
	e, err := CollectPayload(TypeProject, RawSubmission{
		Fields: map[string]any{"category": "project"},
		URLs: []URLRow{
			{URL: "https://a.example", Order: 9},
			{URLType: "github", URL: "https://b.example", Order: 0},
		},
		Images: []ImageRow{
			{URL: "https://img.example/1.png", Order: 4, IsFeatured: true},
			{URL: "https://img.example/2.gif", Type: "gif", Order: 4, IsFeatured: true},
		},
	})
	if err != nil {
		t.Fatalf("CollectPayload: %v", err)
	}
	if e.URLs[0].Order != 0 || e.URLs[1].Order != 1 {
		t.Fatalf("url order not positional: %+v", e.URLs)
	}
	if e.URLs[0].URLType != "live" {
		t.Fatalf("empty url_type must default to live, got %q", e.URLs[0].URLType)
	}
	if e.Images[0].Order != 0 || e.Images[1].Order != 1 {
		t.Fatalf("image order not positional: %+v", e.Images)
	}
	// 多个 featured 行是允许的，采集层不做排他。
	if !e.Images[0].IsFeatured || !e.Images[1].IsFeatured {
		t.Fatalf("featured flags must pass through: %+v", e.Images)
	}
}

func TestCollectPayload_TranslationsInLanguageOrder(t *testing.T) {
	e, err := CollectPayload(TypeProject, RawSubmission{
		Translations: map[string]map[string]string{
			"en": {"title": "My project"},
			"es": {"title": "Mi proyecto", "cv_description": "corto"},
		},
	})
	if err != nil {
		t.Fatalf("CollectPayload: %v", err)
	}
	if len(e.Translations) != 2 {
		t.Fatalf("translations = %d, want 2", len(e.Translations))
	}
	if e.Translations[0].Lang != "es" || e.Translations[0].Title != "Mi proyecto" {
		t.Fatalf("first translation = %+v", e.Translations[0])
	}
	if e.Translations[0].CVDescription != "corto" {
		t.Fatalf("cv_description lost: %+v", e.Translations[0])
	}
}

func TestCollectPayload_UnknownType(t *testing.T) {
	_, err := CollectPayload(EntityType("widget"), RawSubmission{})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestCollectPayload_SkillOrder(t *testing.T) {
	e, err := CollectPayload(TypeSkill, RawSubmission{
		Fields: map[string]any{"order": float64(5)},
	})
	if err != nil {
		t.Fatalf("CollectPayload: %v", err)
	}
	if e.Order != 5 {
		t.Fatalf("order = %d, want 5", e.Order)
	}

	desc, err := RenderForm(TypeSkill, &e, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	for _, f := range desc.Fields {
		if f.Name == "order" {
			if f.Value != 5 {
				t.Fatalf("rendered order = %v", f.Value)
			}
			return
		}
	}
	t.Fatal("skill form missing order field")
}

func TestCollectPayload_ProficiencyNotRangeChecked(t *testing.T) {
	e, err := CollectPayload(TypeSkill, RawSubmission{
		Fields: map[string]any{"proficiency": float64(250)},
	})
	if err != nil {
		t.Fatalf("CollectPayload: %v", err)
	}
	if e.Proficiency != 250 {
		t.Fatalf("proficiency = %d, want 250 passed through", e.Proficiency)
	}
}

func TestResolveTranslation(t *testing.T) {
	trs := []Translation{
		{Lang: "es", Title: "Hola"},
		{Lang: "en", Title: "Hello"},
		{Lang: "en", Title: "duplicate"},
	}
	if got := ResolveTranslation(trs, "en").Title; got != "Hello" {
		t.Fatalf("first match must win, got %q", got)
	}
	if got := ResolveTranslation(trs, "fr"); got != (Translation{}) {
		t.Fatalf("missing lang must yield zero value, got %+v", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Mi Proyecto Genial":  "mi-proyecto-genial",
		"Canción / Señal":     "cancion-senal",
		"  --  ":              "item",
		"API v2.0 (beta)":     "api-v2-0-beta",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollectPayload_EveryDeclaredCheckboxRoundTrips(t *testing.T) {
	for _, typ := range Types() {
		s, err := SchemaFor(typ)
		if err != nil {
			t.Fatalf("SchemaFor(%s): %v", typ, err)
		}
		for _, f := range s.Fields {
			if f.Kind != FieldCheckbox {
				continue
			}

			checked, err := CollectPayload(typ, RawSubmission{
				Fields: map[string]any{f.Name: true},
			})
			if err != nil {
				t.Fatalf("collect %s.%s: %v", typ, f.Name, err)
			}
			desc, err := RenderForm(typ, &checked, RenderOptions{})
			if err != nil {
				t.Fatalf("render %s: %v", typ, err)
			}
			if v := checkboxValue(t, desc, f.Name); v != true {
				t.Fatalf("%s.%s checked round-trip = %v", typ, f.Name, v)
			}

			missing, err := CollectPayload(typ, RawSubmission{Fields: map[string]any{}})
			if err != nil {
				t.Fatalf("collect %s (empty): %v", typ, err)
			}
			desc, err = RenderForm(typ, &missing, RenderOptions{})
			if err != nil {
				t.Fatalf("render %s: %v", typ, err)
			}
			if v := checkboxValue(t, desc, f.Name); v != false {
				t.Fatalf("%s.%s missing round-trip = %v, want false", typ, f.Name, v)
			}
		}
	}
}

func checkboxValue(t *testing.T, desc FormDescriptor, name string) any {
	t.Helper()
	for _, f := range desc.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("field %q not rendered", name)
	return nil
}
