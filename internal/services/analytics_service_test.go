package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnalyticsService_RecordSwallowsFailures(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewAnalyticsService(db, zap.NewNop())

	// 未设置任何期望，写入必然失败，但Record不向上传播
	svc.Record(context.Background(), &QueryRecord{
		Question:       "ما هي عقوبة السرقة؟",
		Language:       "ar",
		Domain:         "penal_law",
		ResponseTimeMs: 1200,
		Successful:     true,
	})
}

func TestAnalyticsService_TopDomains(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAnalyticsService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM "query_analytics"`).
		WillReturnRows(sqlmock.NewRows([]string{"domain", "count"}).
			AddRow("family_law", 42).
			AddRow("penal_law", 17))

	stats, err := svc.TopDomains(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "family_law", stats[0].Domain)
	assert.Equal(t, int64(42), stats[0].Count)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 500))

	long := strings.Repeat("ض", 600)
	assert.Equal(t, 500, len([]rune(truncateRunes(long, 500))))
}

func TestAnalyticsService_DetectDomain(t *testing.T) {
	svc := NewAnalyticsService(nil, zap.NewNop())
	assert.Equal(t, "family_law", svc.DetectDomain("مسطرة الطلاق في المغرب"))
	assert.Equal(t, "", svc.DetectDomain("bonjour"))
}
