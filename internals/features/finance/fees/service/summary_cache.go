// file: internals/features/finance/fees/service/summary_cache.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"schoolku_backend/internals/features/finance/fees/model"
)

// StructureSummary = ringkasan nominal struktur untuk dashboard / self view siswa.
type StructureSummary struct {
	StructureID       uuid.UUID                `json:"fee_structure_id"`
	BranchID          uuid.UUID                `json:"branch_id"`
	StudentID         uuid.UUID                `json:"student_id"`
	SessionID         uuid.UUID                `json:"session_id"`
	Source            model.FeeStructureSource `json:"source"`
	GrossAmount       int64                    `json:"gross_amount"`
	ScholarshipAmount int64                    `json:"scholarship_amount"`
	CustomAmount      int64                    `json:"custom_discount_amount"`
	NetAmount         int64                    `json:"net_amount"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func SummaryOf(st *model.StudentFeeStructure) StructureSummary {
	return StructureSummary{
		StructureID:       st.FeeStructureID,
		BranchID:          st.FeeStructureBranchID,
		StudentID:         st.FeeStructureStudentID,
		SessionID:         st.FeeStructureSessionID,
		Source:            st.FeeStructureSource,
		GrossAmount:       st.FeeStructureGrossAmount,
		ScholarshipAmount: st.FeeStructureScholarshipAmount,
		CustomAmount:      st.FeeStructureCustomDiscountAmount,
		NetAmount:         st.FeeStructureNetAmount,
		UpdatedAt:         st.FeeStructureUpdatedAt,
	}
}

// SummaryKey mengidentifikasi satu entry cache.
type SummaryKey struct {
	OrgID     uuid.UUID
	StudentID uuid.UUID
	SessionID uuid.UUID
}

func (k SummaryKey) String() string {
	return fmt.Sprintf("fees:summary:%s:%s:%s", k.OrgID, k.StudentID, k.SessionID)
}

// ErrCacheMiss: entry tidak ada (bukan kegagalan).
var ErrCacheMiss = errors.New("summary cache miss")

// SummaryCache = read-side cache. Error dari cache tidak pernah menggagalkan operasi.
type SummaryCache interface {
	Get(ctx context.Context, key SummaryKey) (*StructureSummary, error)
	Set(ctx context.Context, key SummaryKey, v StructureSummary) error
	Delete(ctx context.Context, key SummaryKey) error
}

/* =========================================================
   Redis
========================================================= */

type redisSummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSummaryCache(rdb *redis.Client, ttl time.Duration) SummaryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisSummaryCache{rdb: rdb, ttl: ttl}
}

func (c *redisSummaryCache) Get(ctx context.Context, key SummaryKey) (*StructureSummary, error) {
	raw, err := c.rdb.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var out StructureSummary
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &out, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, key SummaryKey, v StructureSummary) error {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return c.rdb.Set(ctx, key.String(), raw, c.ttl).Err()
}

func (c *redisSummaryCache) Delete(ctx context.Context, key SummaryKey) error {
	return c.rdb.Del(ctx, key.String()).Err()
}

/* =========================================================
   No-op (REDIS_ADDR kosong)
========================================================= */

type noopSummaryCache struct{}

func NewNoopSummaryCache() SummaryCache { return noopSummaryCache{} }

func (noopSummaryCache) Get(context.Context, SummaryKey) (*StructureSummary, error) {
	return nil, ErrCacheMiss
}
func (noopSummaryCache) Set(context.Context, SummaryKey, StructureSummary) error { return nil }
func (noopSummaryCache) Delete(context.Context, SummaryKey) error               { return nil }
