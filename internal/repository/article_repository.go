package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsrag/internal/model"
)

// ArticleRepository is the durable archive of ingested articles. Article ids
// are content-derived, so Upsert makes repeated ingestion of the same URL a
// row overwrite rather than a duplicate.
type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Upsert(article *model.Article) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(article).Error; err != nil {
		return fmt.Errorf("upsert article failed: %w", err)
	}
	return nil
}

func (r *ArticleRepository) UpsertBatch(articles []model.Article) error {
	if len(articles) == 0 {
		return nil
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&articles).Error; err != nil {
		return fmt.Errorf("upsert articles batch failed: %w", err)
	}
	return nil
}

func (r *ArticleRepository) ListAll() ([]model.Article, error) {
	var articles []model.Article
	if err := r.db.Order("published_date DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles failed: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Article{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count articles failed: %w", err)
	}
	return count, nil
}
