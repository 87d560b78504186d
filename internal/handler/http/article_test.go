package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newslive/internal/domain"
	redisstate "newslive/internal/infra/state/redis"
)

func (s *testServer) createArticle(t *testing.T, token, title string, category domain.Category) domain.Article {
	t.Helper()
	w := s.do(t, http.MethodPost, "/articles", token, gin.H{
		"title": title, "content": "content of " + title, "category": category,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var article domain.Article
	decode(t, w, &article)
	// 保证创建时间的毫秒值不同，排序结果确定
	time.Sleep(2 * time.Millisecond)
	return article
}

func (s *testServer) listArticles(t *testing.T, query string) []domain.Article {
	t.Helper()
	w := s.do(t, http.MethodGet, "/articles"+query, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var articles []domain.Article
	decode(t, w, &articles)
	return articles
}

func articleIDs(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestArticlesAPI_CategoryFilter(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	tech := s.createArticle(t, alice.Token, "New chip", domain.CategoryTech)
	sport := s.createArticle(t, alice.Token, "Cup final", domain.CategorySport)

	assert.Equal(t, []string{tech.ID}, articleIDs(s.listArticles(t, "?category=Tech")))
	assert.Equal(t, []string{sport.ID}, articleIDs(s.listArticles(t, "?category=Sport")))
	assert.Empty(t, s.listArticles(t, "?category=Politics"))
	assert.Equal(t, []string{sport.ID, tech.ID}, articleIDs(s.listArticles(t, "")), "最新的排在最前")

	w := s.do(t, http.MethodGet, "/articles?category=Weather", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid category. Must be one of: Politics, Sport, Tech", errorMessage(t, w))
}

func TestArticlesAPI_TitleSearch(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	market := s.createArticle(t, alice.Token, "Market Update", domain.CategoryPolitics)
	s.createArticle(t, alice.Token, "Cup final", domain.CategorySport)

	assert.Equal(t, []string{market.ID}, articleIDs(s.listArticles(t, "?search=market")))
	assert.Equal(t, []string{market.ID}, articleIDs(s.listArticles(t, "?search=MARKET&category=Politics")))
	assert.Empty(t, s.listArticles(t, "?search=market&category=Sport"))
	assert.Empty(t, s.listArticles(t, "?search=xyz"))
}

func TestArticlesAPI_Pagination(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	var created []domain.Article
	for _, title := range []string{"one", "two", "three"} {
		created = append(created, s.createArticle(t, alice.Token, title, domain.CategoryTech))
	}

	assert.Equal(t, []string{created[2].ID, created[1].ID}, articleIDs(s.listArticles(t, "?limit=2")))
	assert.Equal(t, []string{created[0].ID}, articleIDs(s.listArticles(t, "?offset=2&limit=2")))
	assert.Equal(t, []string{created[1].ID}, articleIDs(s.listArticles(t, "?category=Tech&offset=1&limit=1")))

	// 超大 limit 不能溢出
	huge := "&limit=9223372036854775807"
	assert.Equal(t, []string{created[1].ID, created[0].ID}, articleIDs(s.listArticles(t, "?offset=1"+huge)))
	assert.Equal(t, []string{created[1].ID, created[0].ID}, articleIDs(s.listArticles(t, "?category=Tech&offset=1"+huge)))
	assert.Equal(t, []string{created[0].ID}, articleIDs(s.listArticles(t, "?category=Tech&search=one&offset=0"+huge)))

	for _, query := range []string{"?limit=-1", "?offset=abc"} {
		w := s.do(t, http.MethodGet, "/articles"+query, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestArticlesAPI_CreateRequiresAuthAndValidInput(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	w := s.do(t, http.MethodPost, "/articles", "", gin.H{"title": "t", "content": "c", "category": "Tech"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/articles", alice.Token, gin.H{"title": "t", "category": "Tech"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: title, content, category", errorMessage(t, w))

	w = s.do(t, http.MethodPost, "/articles", alice.Token, gin.H{"title": "t", "content": "c", "category": "Weather"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	article := s.createArticle(t, alice.Token, "Hello", domain.CategoryTech)
	assert.Equal(t, alice.User.ID, article.AuthorID)
	assert.Equal(t, "alice", article.AuthorName)

	w = s.do(t, http.MethodGet, "/articles/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched domain.Article
	decode(t, w, &fetched)
	assert.Equal(t, article, fetched)
}

func TestArticlesAPI_CreatePublishesNewArticle(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub := s.client.Subscribe(ctx, redisstate.DefaultNewsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	article := s.createArticle(t, alice.Token, "Breaking", domain.CategoryPolitics)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var message domain.NewArticleMessage
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &message))
	assert.Equal(t, domain.EventNewArticle, message.Type)
	assert.Equal(t, article, message.Article)
}

func TestArticlesAPI_OwnershipRules(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")
	bob := s.register(t, "bob@example.com", "bob")
	article := s.createArticle(t, alice.Token, "Alice's story", domain.CategoryTech)
	path := "/articles/" + article.ID

	// 未登录
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPut, path, "", gin.H{"title": "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, path, "", nil).Code)

	// 不是作者
	w := s.do(t, http.MethodPut, path, bob.Token, gin.H{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You can only modify your own articles", errorMessage(t, w))
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, bob.Token, nil).Code)

	// 分类校验先于存在性和归属检查
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/articles/missing", bob.Token, gin.H{"category": "Weather"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/articles/missing", bob.Token, gin.H{"title": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, path, alice.Token, gin.H{"title": "  "}).Code)

	// 作者本人
	w = s.do(t, http.MethodPut, path, alice.Token, gin.H{"category": "Sport"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.Article
	decode(t, w, &updated)
	assert.Equal(t, domain.CategorySport, updated.Category)
	assert.Equal(t, article.Title, updated.Title)
	assert.Equal(t, article.CreatedAt, updated.CreatedAt)
	assert.Empty(t, s.listArticles(t, "?category=Tech"))
	assert.Equal(t, []string{article.ID}, articleIDs(s.listArticles(t, "?category=Sport")))

	w = s.do(t, http.MethodDelete, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Article deleted successfully"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, alice.Token, nil).Code)
	assert.Empty(t, s.listArticles(t, ""))
	assert.Empty(t, s.listArticles(t, "?category=Sport"))
}

func TestArticlesAPI_OptionalAuthIgnoresBadTokens(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/articles", "never-issued-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
