package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/crmdex/internal/crm"
	"github.com/Aman-CERP/crmdex/internal/embed"
	"github.com/Aman-CERP/crmdex/internal/errors"
	"github.com/Aman-CERP/crmdex/internal/reindex"
)

func newTestService() *Service {
	source := crm.NewStaticSource(map[crm.EntityType][]crm.RawRecord{
		crm.TypeContact: {
			{"id": "c1", "firstname": "Ada", "lastname": "Lovelace", "jobtitle": "Engineer"},
			{"id": "c2", "firstname": "Grace", "lastname": "Hopper", "jobtitle": "Admiral"},
		},
		crm.TypeCompany: {
			{"id": "co1", "name": "Acme Corp", "domain": "acme.com", "industry": "Manufacturing"},
		},
		crm.TypeDeal: {
			{"id": "d1", "dealname": "Acme enterprise renewal", "dealstage": "negotiation"},
		},
	}, 0)
	return New(source, embed.NewStaticEmbedder(), reindex.DefaultConfig())
}

// ============================================================================
// TS01: Readiness Lifecycle
// ============================================================================

func TestService_BeforeFirstReindex_NotReady(t *testing.T) {
	// Given: a freshly wired service
	svc := newTestService()
	defer func() { _ = svc.Close() }()

	// Then: alive but not ready, no stats, no history
	assert.True(t, svc.Health())
	assert.False(t, svc.Ready())
	assert.Nil(t, svc.Stats())
	assert.Nil(t, svc.LastJob())
}

func TestService_AfterReindex_ReadyWithStats(t *testing.T) {
	svc := newTestService()
	defer func() { _ = svc.Close() }()

	summary, err := svc.TriggerReindex(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Succeeded)

	assert.True(t, svc.Ready())
	stats := svc.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, 4, stats.TotalEntities)
	assert.Equal(t, embed.StaticDimensions, stats.Dimension)
	assert.Equal(t, "flat", stats.IndexKind)

	require.NotNil(t, svc.LastJob())
	assert.Equal(t, summary.TotalEntities, svc.LastJob().TotalEntities)
}

// ============================================================================
// TS02: Search
// ============================================================================

func TestService_Search_BeforePublish_EmptyIndexError(t *testing.T) {
	svc := newTestService()
	defer func() { _ = svc.Close() }()

	_, err := svc.Search(context.Background(), "acme", 5)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmptyIndex, errors.GetCode(err))
}

func TestService_Search_EmptyQuery_InvalidQueryError(t *testing.T) {
	svc := newTestService()
	defer func() { _ = svc.Close() }()

	for _, q := range []string{"", "   "} {
		_, err := svc.Search(context.Background(), q, 5)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidQuery, errors.GetCode(err))
	}
}

func TestService_Search_RanksMatchingEntityFirst(t *testing.T) {
	// Given: an indexed fixture
	svc := newTestService()
	defer func() { _ = svc.Close() }()
	_, err := svc.TriggerReindex(context.Background())
	require.NoError(t, err)

	// When: I search for text overlapping one contact
	results, err := svc.Search(context.Background(), "Ada Lovelace Engineer", 2)
	require.NoError(t, err)

	// Then: that contact ranks first
	require.NotEmpty(t, results)
	assert.Equal(t, "c1", results[0].Entity.ID)
	assert.Equal(t, crm.TypeContact, results[0].Entity.Type)
}

func TestService_Search_DefaultK(t *testing.T) {
	svc := newTestService()
	defer func() { _ = svc.Close() }()
	_, err := svc.TriggerReindex(context.Background())
	require.NoError(t, err)

	// k=0 falls back to DefaultK, truncated to index size
	results, err := svc.Search(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func TestService_QueryMetrics_RecordsSearches(t *testing.T) {
	svc := newTestService()
	defer func() { _ = svc.Close() }()
	_, err := svc.TriggerReindex(context.Background())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "Ada Lovelace", 3)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "acme renewal", 3)
	require.NoError(t, err)

	snap := svc.QueryMetrics()
	assert.Equal(t, int64(2), snap.TotalQueries)
	require.Len(t, snap.RecentQueries, 2)
	assert.Equal(t, "Ada Lovelace", snap.RecentQueries[0].Query)
	assert.Greater(t, snap.RecentQueries[0].TopScore, float32(0))
}

// ============================================================================
// TS03: Reindex Admission
// ============================================================================

func TestService_TriggerReindex_SecondRunAfterFirst(t *testing.T) {
	svc := newTestService()
	defer func() { _ = svc.Close() }()

	first, err := svc.TriggerReindex(context.Background())
	require.NoError(t, err)
	second, err := svc.TriggerReindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.TotalEntities, second.TotalEntities)
}
