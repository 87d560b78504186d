package domain

import (
	"strings"
	"time"
)

// Category 表示文章所属的固定分类。
type Category string

const (
	CategoryPolitics Category = "Politics"
	CategorySport    Category = "Sport"
	CategoryTech     Category = "Tech"
)

// Categories 列出所有合法分类，顺序即对外展示顺序。
var Categories = []Category{CategoryPolitics, CategorySport, CategoryTech}

// IsValid 判断分类是否属于固定枚举。
func (c Category) IsValid() bool {
	for _, valid := range Categories {
		if c == valid {
			return true
		}
	}
	return false
}

// CategoryNames 返回分类名称列表，用于错误提示。
func CategoryNames() string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// Article 表示一篇新闻文章。
// ID、AuthorID、AuthorName、CreatedAt 创建后不可变。
// AuthorName 是创建时作者用户名的快照，之后不会刷新。
type Article struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   Category  `json:"category"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ArticleUpdate 描述一次部分更新，nil 字段保持原值。
type ArticleUpdate struct {
	Title    *string
	Content  *string
	Category *Category
}

// Apply 将部分更新合并到文章上并刷新 UpdatedAt。
// 返回合并前的分类，调用方据此维护分类索引。
func (a *Article) Apply(update ArticleUpdate, now time.Time) Category {
	previous := a.Category
	if update.Title != nil {
		a.Title = *update.Title
	}
	if update.Content != nil {
		a.Content = *update.Content
	}
	if update.Category != nil {
		a.Category = *update.Category
	}
	a.UpdatedAt = now
	return previous
}

// Timestamp 返回统一精度 (毫秒, UTC) 的时间，文档与索引分数都使用它。
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// IndexAuditReport 汇总一次索引巡检的结果。
// 只报告悬空的索引项，不做修复。
type IndexAuditReport struct {
	IndexedByDate      int                   `json:"indexedByDate"`
	DanglingByDate     []string              `json:"danglingByDate"`
	DanglingByCategory map[Category][]string `json:"danglingByCategory"`
}

// DanglingCount 返回所有悬空索引项的数量。
func (r *IndexAuditReport) DanglingCount() int {
	total := len(r.DanglingByDate)
	for _, ids := range r.DanglingByCategory {
		total += len(ids)
	}
	return total
}

// Paginate 返回 articles[offset : offset+limit]。offset < 0 视为 0，limit <= 0 表示不限制。
// 只和剩余长度比较，不计算 offset+limit，避免大 limit 溢出。
func Paginate(articles []Article, offset, limit int) []Article {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(articles) {
		return []Article{}
	}
	end := len(articles)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return articles[offset:end]
}
