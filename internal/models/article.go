package models

// ArticleModel is the content item enhancements are generated against.
// The host platform owns authoring; this service keeps a synced copy of
// the fields it needs (text for prompts, title/slug for link candidates).
type ArticleModel struct {
	Base
	Title     string `json:"title"     gorm:"not null"`
	Slug      string `json:"slug"      gorm:"uniqueIndex;not null"`
	Text      string `json:"text"      gorm:"type:longtext"`
	Published bool   `json:"published" gorm:"index;default:false"`
}

func (ArticleModel) TableName() string { return "articles" }
