package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"phPortfolio/internal/github"
	"phPortfolio/internal/schema"
)

// ProjectDraft 是模型返回的严格 JSON 结构。
type ProjectDraft struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	URLs     []struct {
		Type  string `json:"type"`
		URL   string `json:"url"`
		Label string `json:"label"`
	} `json:"urls"`
	Media struct {
		GifURL   string `json:"gif_url"`
		ImageURL string `json:"image_url"`
	} `json:"media"`
	Translations map[string]struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
	} `json:"translations"`
	Diagram string `json:"diagram"`
}

// Generator 把仓库上下文交给模型，产出可直接进表单的项目草稿。
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// AnalyzeRepo 生成项目草稿。modelName 可覆盖默认模型。
func (g *Generator) AnalyzeRepo(ctx context.Context, rc *github.RepoContext, modelName string) (*ProjectDraft, error) {
	prompt := buildPrompt(rc)
	text, err := g.client.GenerateJSON(ctx, modelName, prompt)
	if err != nil {
		return nil, err
	}

	var draft ProjectDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("parse project draft: %w", err)
	}
	return &draft, nil
}

// ToEntity 把草稿映射成表单实体：无 id，保存即创建。
// gif 行不设精选，代表图设精选；外链按模型给出的顺序重编号。
func (d *ProjectDraft) ToEntity() schema.Entity {
	e := schema.Entity{
		Category: d.Category,
		Tags:     d.Tags,
	}
	if e.Category == "" {
		e.Category = "project"
	}

	for _, lang := range schema.Languages {
		tr, ok := d.Translations[lang]
		if !ok {
			continue
		}
		e.Translations = append(e.Translations, schema.Translation{
			Lang:        lang,
			Title:       d.Title,
			Subtitle:    d.Subtitle,
			Summary:     tr.Summary,
			Description: tr.Description,
		})
	}

	for _, u := range d.URLs {
		if u.URL == "" || strings.EqualFold(u.URL, "null") {
			continue
		}
		urlType := u.Type
		if urlType == "" {
			urlType = "live"
		}
		e.URLs = append(e.URLs, schema.URLRow{URLType: urlType, URL: u.URL, Label: u.Label, Order: len(e.URLs)})
	}

	if gif := cleanMediaURL(d.Media.GifURL); gif != "" {
		e.Images = append(e.Images, schema.ImageRow{URL: gif, Type: "gif", Order: len(e.Images)})
	}
	if img := cleanMediaURL(d.Media.ImageURL); img != "" {
		e.Images = append(e.Images, schema.ImageRow{URL: img, Type: "image", IsFeatured: true, Order: len(e.Images)})
	}

	return e
}

func cleanMediaURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return ""
	}
	return raw
}

func buildPrompt(rc *github.RepoContext) string {
	var b strings.Builder
	b.WriteString("You are an expert technical portfolio curator specializing in Data Engineering and Backend Development.\n")
	b.WriteString("Analyze this GitHub repository content.\n")
	fmt.Fprintf(&b, "Base Repository URL: %s (Use this to construct absolute URLs for media if needed).\n\n", rc.HTMLURL)

	fmt.Fprintf(&b, "Repository: %s/%s\n", rc.Owner, rc.Repo)
	if rc.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rc.Description)
	}
	if rc.Language != "" {
		fmt.Fprintf(&b, "Primary language: %s\n", rc.Language)
	}
	if len(rc.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(rc.Topics, ", "))
	}
	if len(rc.RootFiles) > 0 {
		fmt.Fprintf(&b, "Root files: %s\n", strings.Join(rc.RootFiles, ", "))
	}
	for name, body := range rc.Manifests {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", name, body)
	}
	if rc.Readme != "" {
		fmt.Fprintf(&b, "\n--- README ---\n%s\n", rc.Readme)
	}

	b.WriteString(`
Generate a strict JSON object with the following structure:

{
  "title": "Project Name (Professional and descriptive, NOT generic)",
  "subtitle": "A catchy, impressive tagline (max 60 chars)",
  "category": "project",
  "tags": ["Tech1", "Tech2", "Tech3", "Tech4", "Tech5"],
  "urls": [
    {"type": "github", "url": "` + rc.HTMLURL + `", "label": "Source Code"},
    {"type": "demo", "url": "URL_FOUND_IN_README_OR_NULL", "label": "Live Demo"}
  ],
  "media": {
    "gif_url": "Absolute URL of the first animated GIF found. If relative, prepend raw.githubusercontent path. If none, null.",
    "image_url": "Absolute URL of the most representative image. If relative, prepend raw.githubusercontent path. If none, null."
  },
  "translations": {
    "en": {
      "summary": "A concise, punchy 2-sentence summary (max 200 chars). Focus on the 'what' and 'why'.",
      "description": "HTML content. Focus on the problem solved, the architecture, and the impact. Use <h3> for section headers and <ul>/<li> for lists. Do NOT list the tech stack here (use the 'tags' field for that). Do NOT use markdown."
    },
    "es": {
      "summary": "Un resumen conciso y contundente de 2 oraciones (máx. 200 caracteres). Enfócate en el 'qué' y el 'por qué'.",
      "description": "Contenido HTML. Enfócate en el problema resuelto, la arquitectura y el impacto. Usa <h3> para encabezados y <ul>/<li> para listas. NO listes el stack tecnológico aquí (usa el campo 'tags' para eso). NO uses markdown."
    }
  },
  "diagram": "mermaid code for a sequence or architecture diagram. Start with 'graph TD' or 'sequenceDiagram'. Keep it simple."
}
`)
	return b.String()
}
