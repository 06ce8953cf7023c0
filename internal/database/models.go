package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示后台管理账号。
type User struct {
	gorm.Model
	Username           string `gorm:"uniqueIndex;size:64"`
	PasswordHash       string `gorm:"size:255"`
	MustChangePassword bool   `gorm:"default:false"`
}

// Tag 是跨项目/经历复用的技术标签。
type Tag struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;size:64"`
	Slug     string `gorm:"uniqueIndex;size:64"`
	Category string `gorm:"size:32"`
}

// Project 表示作品集中的一个项目条目。
// URL 是旧版遗留字段（JSON 编码的 {github, live} 或裸字符串），
// 仅在 URLs 为空时用于回落展示，新数据一律写入 ProjectURL。
type Project struct {
	gorm.Model
	Slug         string `gorm:"uniqueIndex;size:64"`
	Category     string `gorm:"size:64"`
	URL          string `gorm:"size:256"`
	IsFeaturedCV bool   `gorm:"default:false"`

	Translations []ProjectTranslation `gorm:"constraint:OnDelete:CASCADE"`
	Images       []ProjectImage       `gorm:"constraint:OnDelete:CASCADE"`
	URLs         []ProjectURL         `gorm:"constraint:OnDelete:CASCADE"`
	Tags         []Tag                `gorm:"many2many:project_tags"`
}

// ProjectTranslation 保存项目的单语言文案。
type ProjectTranslation struct {
	gorm.Model
	ProjectID     uint   `gorm:"uniqueIndex:uq_project_lang"`
	Lang          string `gorm:"uniqueIndex:uq_project_lang;size:5"`
	Title         string `gorm:"size:128"`
	Subtitle      string `gorm:"size:256"`
	Summary       string `gorm:"type:text"`
	Description   string `gorm:"type:text"`
	CVDescription string `gorm:"type:text"`
}

// ProjectImage 表示项目图集中的一张图/动图。
// Order 永远由保存时的列表位置重算，不接受独立写入。
type ProjectImage struct {
	gorm.Model
	ProjectID  uint   `gorm:"index"`
	URL        string `gorm:"size:512;not null"`
	Type       string `gorm:"size:32;default:image"`
	Caption    string `gorm:"size:256"`
	AltText    string `gorm:"size:256"`
	Width      int
	Height     int
	IsFeatured bool `gorm:"default:false"`
	Order      int  `gorm:"default:0"`
}

// ProjectURL 保存项目的多个外链（github/live/demo/article）。
type ProjectURL struct {
	gorm.Model
	ProjectID uint   `gorm:"index"`
	URLType   string `gorm:"size:32;not null"`
	URL       string `gorm:"size:512;not null"`
	Label     string `gorm:"size:128"`
	Order     int    `gorm:"default:0"`
}

// Experience 表示一段工作经历。
type Experience struct {
	gorm.Model
	Slug      string `gorm:"uniqueIndex;size:64"`
	Company   string `gorm:"size:128"`
	Location  string `gorm:"size:128"`
	StartDate string `gorm:"size:32"`
	EndDate   string `gorm:"size:32"`
	Current   bool   `gorm:"default:false"`

	Translations []ExperienceTranslation `gorm:"constraint:OnDelete:CASCADE"`
	Tags         []Tag                   `gorm:"many2many:experience_tags"`
}

// ExperienceTranslation 保存经历的单语言文案（Title 即职位）。
type ExperienceTranslation struct {
	gorm.Model
	ExperienceID uint   `gorm:"uniqueIndex:uq_experience_lang"`
	Lang         string `gorm:"uniqueIndex:uq_experience_lang;size:5"`
	Title        string `gorm:"size:128"`
	Subtitle     string `gorm:"size:256"`
	Description  string `gorm:"type:text"`
}

// Education 表示一段教育经历。
type Education struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;size:64"`
	Institution string `gorm:"size:128"`
	Location    string `gorm:"size:128"`
	StartDate   string `gorm:"size:32"`
	EndDate     string `gorm:"size:32"`
	Current     bool   `gorm:"default:false"`

	Translations []EducationTranslation `gorm:"constraint:OnDelete:CASCADE"`
	Courses      []Course               `gorm:"constraint:OnDelete:CASCADE"`
}

// EducationTranslation 保存教育经历的单语言文案（Title 即学位）。
type EducationTranslation struct {
	gorm.Model
	EducationID uint   `gorm:"uniqueIndex:uq_education_lang"`
	Lang        string `gorm:"uniqueIndex:uq_education_lang;size:5"`
	Title       string `gorm:"size:128"`
	Subtitle    string `gorm:"size:256"`
	Description string `gorm:"type:text"`
}

// Course 是教育经历下的课程名，按 Order 排序。
// 注意：课程以裸字符串存储，不像 Tag 那样规范化成独立实体。
type Course struct {
	gorm.Model
	EducationID uint   `gorm:"index"`
	Name        string `gorm:"size:128;not null"`
	Order       int    `gorm:"default:0"`
}

// SkillCategory 表示技能分组。Slug 创建后不可变更。
type SkillCategory struct {
	gorm.Model
	Slug  string `gorm:"uniqueIndex;size:64"`
	Order int    `gorm:"default:0"`

	Translations []SkillCategoryTranslation `gorm:"constraint:OnDelete:CASCADE"`
}

// SkillCategoryTranslation 只有一个 Name 字段（无副标题/描述）。
type SkillCategoryTranslation struct {
	gorm.Model
	SkillCategoryID uint   `gorm:"uniqueIndex:uq_skill_category_lang"`
	Lang            string `gorm:"uniqueIndex:uq_skill_category_lang;size:5"`
	Name            string `gorm:"size:128"`
}

// Skill 表示一项技能。熟练度取值 0-100，后端不做范围校验。
type Skill struct {
	gorm.Model
	Slug               string `gorm:"uniqueIndex;size:64"`
	IconURL            string `gorm:"size:256"`
	Proficiency        int    `gorm:"default:50"`
	Order              int    `gorm:"default:0"`
	CategoryID         *uint  `gorm:"index"`
	Category           *SkillCategory
	IsVisibleCV        bool `gorm:"default:true"`
	IsVisiblePortfolio bool `gorm:"default:true"`

	Translations []SkillTranslation `gorm:"constraint:OnDelete:CASCADE"`
}

// SkillTranslation 使用 Name（而非 Title）作为展示名。
type SkillTranslation struct {
	gorm.Model
	SkillID     uint   `gorm:"uniqueIndex:uq_skill_lang"`
	Lang        string `gorm:"uniqueIndex:uq_skill_lang;size:5"`
	Name        string `gorm:"size:128"`
	Description string `gorm:"type:text"`
}

// Certification 表示一项认证。
type Certification struct {
	gorm.Model
	Slug          string `gorm:"uniqueIndex;size:64"`
	Issuer        string `gorm:"size:128"`
	IssueDate     string `gorm:"size:32"`
	ExpiryDate    string `gorm:"size:32"`
	CredentialURL string `gorm:"size:256"`

	Translations []CertificationTranslation `gorm:"constraint:OnDelete:CASCADE"`
}

// CertificationTranslation 保存认证的单语言文案。
type CertificationTranslation struct {
	gorm.Model
	CertificationID uint   `gorm:"uniqueIndex:uq_certification_lang"`
	Lang            string `gorm:"uniqueIndex:uq_certification_lang;size:5"`
	Title           string `gorm:"size:128"`
	Description     string `gorm:"type:text"`
}

// Profile 表示站点唯一的个人资料。
type Profile struct {
	gorm.Model
	Slug        string         `gorm:"uniqueIndex;size:64"`
	Name        string         `gorm:"size:128;not null"`
	Email       string         `gorm:"size:128"`
	AvatarURL   string         `gorm:"size:256"`
	Location    datatypes.JSON `gorm:"type:jsonb"`
	SocialLinks datatypes.JSON `gorm:"type:jsonb"`

	Translations []ProfileTranslation `gorm:"constraint:OnDelete:CASCADE"`
}

// ProfileTranslation 保存个人资料的单语言文案。
type ProfileTranslation struct {
	gorm.Model
	ProfileID uint   `gorm:"uniqueIndex:uq_profile_lang"`
	Lang      string `gorm:"uniqueIndex:uq_profile_lang;size:5"`
	Role      string `gorm:"size:128"`
	Tagline   string `gorm:"size:256"`
	Bio       string `gorm:"type:text"`
}

// CVDocument 记录某语言下最近一次生成的 CV PDF。
type CVDocument struct {
	gorm.Model
	Lang   string `gorm:"uniqueIndex;size:5"`
	PdfURL string `gorm:"size:512"`
	Status string `gorm:"size:32"`
}
