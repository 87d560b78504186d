package repository

import (
	"context"

	"newslive/internal/domain"
)

// ArticleRepository 定义了文章文档及其三个读索引 (按时间、按分类、按标题) 的存取操作。
//
// 分页参数: offset < 0 视为 0，limit <= 0 表示不限制条数。
type ArticleRepository interface {
	// Create 写入文档并加入按时间索引和分类集合。
	// 不检查 ID 重复，调用方负责生成唯一 ID。
	Create(ctx context.Context, article *domain.Article) error

	// FindByID 返回文章，不存在时返回 ErrArticleNotFound。
	FindByID(ctx context.Context, id string) (*domain.Article, error)

	// ListAll 按创建时间倒序返回 [offset, offset+limit) 区间的文章。
	// 索引中存在但文档缺失的 ID 会被静默丢弃。
	ListAll(ctx context.Context, offset, limit int) ([]domain.Article, error)

	// ListByCategory 返回指定分类的文章，内存中按创建时间倒序排序后分页。
	// 未知分类返回空结果。
	ListByCategory(ctx context.Context, category domain.Category, offset, limit int) ([]domain.Article, error)

	// SearchByTitle 对全部文章做标题的大小写不敏感子串匹配后分页。
	SearchByTitle(ctx context.Context, query string, offset, limit int) ([]domain.Article, error)

	// Update 合并部分字段并刷新 UpdatedAt，分类变更时同步移动分类集合。
	// 文章不存在时返回 ErrArticleNotFound。
	Update(ctx context.Context, id string, update domain.ArticleUpdate) (*domain.Article, error)

	// Delete 删除文档及其索引项，返回删除前文章是否存在。
	Delete(ctx context.Context, id string) (bool, error)

	// AuditIndexes 扫描索引，报告指向不存在文档的索引项。只读。
	AuditIndexes(ctx context.Context) (*domain.IndexAuditReport, error)
}

// ArticleEventPublisher 将文章事件发布到广播频道。
type ArticleEventPublisher interface {
	// PublishNewArticle 发布 new_article 消息，至多投递一次，无重放。
	PublishNewArticle(ctx context.Context, article domain.Article) error
}
