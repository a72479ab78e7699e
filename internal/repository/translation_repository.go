package repository

import (
	"flowlearn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TranslationRepository struct {
	DB *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) *TranslationRepository {
	return &TranslationRepository{DB: db}
}

func (r *TranslationRepository) Find(textHash, sourceLang, targetLang string) (*model.Translation, error) {
	var t model.Translation
	err := r.DB.Where("text_hash = ? AND source_lang = ? AND target_lang = ?",
		textHash, sourceLang, targetLang).First(&t).Error
	return &t, err
}

// Upsert keeps the at-most-one-row-per-triple invariant: concurrent misses
// for the same triple collapse onto the unique index instead of erroring.
func (r *TranslationRepository) Upsert(t *model.Translation) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "text_hash"}, {Name: "source_lang"}, {Name: "target_lang"}},
		DoUpdates: clause.AssignmentColumns([]string{"translated_text", "content_type", "content_id"}),
	}).Create(t).Error
}
