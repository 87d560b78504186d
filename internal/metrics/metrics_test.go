package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveBroadcast(t *testing.T) {
	initialDelivered := testutil.ToFloat64(RealtimeEventsTotal.WithLabelValues("new_article", "delivered"))
	initialDropped := testutil.ToFloat64(RealtimeEventsTotal.WithLabelValues("new_article", "dropped"))

	ObserveBroadcast("new_article", 3, 1)

	assert.Equal(t, initialDelivered+3, testutil.ToFloat64(RealtimeEventsTotal.WithLabelValues("new_article", "delivered")))
	assert.Equal(t, initialDropped+1, testutil.ToFloat64(RealtimeEventsTotal.WithLabelValues("new_article", "dropped")))
}

func TestObservePublish(t *testing.T) {
	initialSuccess := testutil.ToFloat64(ArticlesPublishedTotal.WithLabelValues("success"))
	initialFailure := testutil.ToFloat64(ArticlesPublishedTotal.WithLabelValues("failure"))

	ObservePublish(nil)
	ObservePublish(errors.New("redis down"))

	assert.Equal(t, initialSuccess+1, testutil.ToFloat64(ArticlesPublishedTotal.WithLabelValues("success")))
	assert.Equal(t, initialFailure+1, testutil.ToFloat64(ArticlesPublishedTotal.WithLabelValues("failure")))
}

func TestObserveIndexAudit(t *testing.T) {
	initialFailures := testutil.ToFloat64(IndexAuditsTotal.WithLabelValues("failure"))

	ObserveIndexAudit(map[string]int{"by_date": 2, "category:Tech": 1}, nil)
	assert.Equal(t, float64(2), testutil.ToFloat64(IndexDanglingEntries.WithLabelValues("by_date")))
	assert.Equal(t, float64(1), testutil.ToFloat64(IndexDanglingEntries.WithLabelValues("category:Tech")))

	// 失败的巡检不覆盖上一次的结果
	ObserveIndexAudit(nil, errors.New("redis down"))
	assert.Equal(t, initialFailures+1, testutil.ToFloat64(IndexAuditsTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(2), testutil.ToFloat64(IndexDanglingEntries.WithLabelValues("by_date")))
}
