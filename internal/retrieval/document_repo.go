package retrieval

import (
	"context"

	"github.com/mo7ami/backend-go/internal/models"
	"gorm.io/gorm"
)

// DocumentRepo 法律文献只读仓库
type DocumentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// FetchByIDs 按ID批量加载文献摘要，返回id→文献映射
func (r *DocumentRepo) FetchByIDs(ctx context.Context, ids []string) (map[string]*models.LegalDocument, error) {
	result := make(map[string]*models.LegalDocument, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var docs []models.LegalDocument
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&docs).Error; err != nil {
		return nil, err
	}

	for i := range docs {
		result[docs[i].ID] = &docs[i]
	}
	return result, nil
}

// GetByOfficialRef 按官方引用号查找文献
func (r *DocumentRepo) GetByOfficialRef(ctx context.Context, officialRef string) (*models.LegalDocument, error) {
	var doc models.LegalDocument
	err := r.db.WithContext(ctx).
		Where("official_ref = ?", officialRef).
		First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// ListByDomain 按法律领域列出文献
func (r *DocumentRepo) ListByDomain(ctx context.Context, domain, language string) ([]models.LegalDocument, error) {
	var docs []models.LegalDocument
	query := r.db.WithContext(ctx).Where("domain = ?", domain)
	if language != "" {
		query = query.Where("language = ?", language)
	}
	if err := query.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
