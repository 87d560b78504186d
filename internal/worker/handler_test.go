package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"newslive/internal/domain"
	"newslive/internal/metrics"
	"newslive/internal/repository/mocks"
	"newslive/internal/tasks"
	"newslive/internal/worker"
)

func newAuditTask(t *testing.T) *asynq.Task {
	t.Helper()
	payload, err := tasks.NewIndexAuditTask(time.Now())
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeIndexAudit, payload)
}

func TestIndexAuditHandler_RecordsDanglingEntries(t *testing.T) {
	repo := new(mocks.ArticleRepository)
	repo.On("AuditIndexes", mock.Anything).Return(&domain.IndexAuditReport{
		IndexedByDate:  5,
		DanglingByDate: []string{"gone-1", "gone-2"},
		DanglingByCategory: map[domain.Category][]string{
			domain.CategoryTech:  {"gone-1"},
			domain.CategorySport: nil,
		},
	}, nil)
	successBefore := testutil.ToFloat64(metrics.IndexAuditsTotal.WithLabelValues("success"))

	err := worker.NewIndexAuditHandler(repo).ProcessTask(context.Background(), newAuditTask(t))

	require.NoError(t, err, "发现悬空索引项不算任务失败")
	assert.Equal(t, successBefore+1, testutil.ToFloat64(metrics.IndexAuditsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.IndexDanglingEntries.WithLabelValues("by_date")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.IndexDanglingEntries.WithLabelValues("category:Tech")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.IndexDanglingEntries.WithLabelValues("category:Sport")))
	repo.AssertExpectations(t)
}

func TestIndexAuditHandler_RepositoryErrorIsRetried(t *testing.T) {
	repo := new(mocks.ArticleRepository)
	repoErr := errors.New("redis down")
	repo.On("AuditIndexes", mock.Anything).Return(nil, repoErr)
	failureBefore := testutil.ToFloat64(metrics.IndexAuditsTotal.WithLabelValues("failure"))

	err := worker.NewIndexAuditHandler(repo).ProcessTask(context.Background(), newAuditTask(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, failureBefore+1, testutil.ToFloat64(metrics.IndexAuditsTotal.WithLabelValues("failure")))
}

func TestIndexAuditHandler_MalformedPayloadSkipsRetry(t *testing.T) {
	repo := new(mocks.ArticleRepository)

	err := worker.NewIndexAuditHandler(repo).ProcessTask(context.Background(), asynq.NewTask(tasks.TypeIndexAudit, []byte("{not json")))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	repo.AssertNotCalled(t, "AuditIndexes", mock.Anything)
}

func TestNewIndexAuditHandler_PanicsOnNilRepository(t *testing.T) {
	assert.Panics(t, func() { worker.NewIndexAuditHandler(nil) })
}

func TestNewServeMux_RoutesIndexAudit(t *testing.T) {
	repo := new(mocks.ArticleRepository)
	repo.On("AuditIndexes", mock.Anything).Return(&domain.IndexAuditReport{}, nil)

	err := worker.NewServeMux(repo).ProcessTask(context.Background(), newAuditTask(t))

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
