package model

// Translation is a cache row for the translate endpoint. Keys are the exact
// (text, sourceLang, targetLang) triple with no normalization: casing and
// whitespace variants are distinct entries. MySQL cannot put a unique index
// on a TEXT column, so the indexed key is the SHA-256 of the source text.
type Translation struct {
	UUIDBase
	TextHash       string `gorm:"size:64;uniqueIndex:uq_translation;not null" json:"-"`
	SourceLang     string `gorm:"size:10;uniqueIndex:uq_translation;not null" json:"sourceLanguage"`
	TargetLang     string `gorm:"size:10;uniqueIndex:uq_translation;not null" json:"targetLanguage"`
	SourceText     string `gorm:"type:text;not null" json:"sourceText"`
	TranslatedText string `gorm:"type:text;not null" json:"translatedText"`
	// Bookkeeping tags supplied by the caller, not part of the key.
	ContentType string `gorm:"size:50" json:"contentType,omitempty"`
	ContentID   string `gorm:"size:100" json:"contentId,omitempty"`
}

func (Translation) TableName() string {
	return "translations"
}
