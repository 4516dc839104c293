package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"recusto/internal/domain/movement"
	"recusto/pkg/logger"
)

// FeedFilter scopes the movement feed query.
type FeedFilter struct {
	From time.Time
	To   time.Time

	// IncludeOrders lists production orders pulled in even when their
	// movements fall outside the date window: an order opened before the
	// window must be revalued whole.
	IncludeOrders []int64

	// ScopeID is the ERP company scope (SY01_ID).
	ScopeID int64

	// ExcludedItemUses filters out item-use categories that never enter the
	// cost base (CD05_USO_EMPRESA).
	ExcludedItemUses []int64
}

// DefaultFeedFilter returns the production scope and item-use exclusions.
func DefaultFeedFilter(from, to time.Time) FeedFilter {
	return FeedFilter{
		From:             from,
		To:               to,
		ScopeID:          3,
		ExcludedItemUses: []int64{7, 10, 11},
	}
}

// FeedRepo fetches raw stock movements from the source ERP schema.
type FeedRepo struct {
	pool    *Pool
	builder squirrel.StatementBuilderType
}

// NewFeedRepo creates a new movement feed repository.
func NewFeedRepo(pool *Pool) *FeedRepo {
	return &FeedRepo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListMovements returns the raw movement rows for the given filter, joined
// with the procurement entry date where one exists. Warehouse transfers and
// bare "T" history rows never carry cost information and are excluded at the
// source.
func (r *FeedRepo) ListMovements(ctx context.Context, f FeedFilter) ([]movement.Record, error) {
	sql, args, err := r.buildQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build feed query: %w", err)
	}

	var records []movement.Record
	if err := pgxscan.Select(ctx, r.pool, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("query movement feed: %w", err)
	}

	logger.Info(ctx, "fetched movement feed",
		"rows", len(records),
		"from", f.From.Format("2006-01-02"),
		"to", f.To.Format("2006-01-02"),
	)
	return records, nil
}

func (r *FeedRepo) buildQuery(f FeedFilter) (string, []any, error) {
	window := squirrel.Expr("stock_movement.ES02_DATA BETWEEN ? AND ?", f.From, f.To)
	var dateCond squirrel.Sqlizer = window
	if len(f.IncludeOrders) > 0 {
		dateCond = squirrel.Or{
			window,
			squirrel.Eq{"stock_movement.OR01_ID": f.IncludeOrders},
		}
	}

	q := r.builder.Select(
		"stock_movement.ES02_ID AS movement_id",
		"stock_movement.ES02_DATA AS movement_date",
		"stock_movement.OR01_ID AS production_order_id",
		"purchase.RM01_DATA_ENTRADA AS entry_date",
		"stock_movement.ES02_DOCUMENTO AS document_number",
		"stock_movement.ES02_HISTORICO AS movement_history",
		"item.CD04_ID AS item_id",
		"item.CD04_DESCRICAO AS item_description",
		"stock_movement.ES02_QTDE AS quantity",
		"stock_movement.ES02_CMV_MEDIO AS average_cost",
		"stock_movement.ES02_CMV_TOTAL AS total_cost",
	).
		From("TB_ES_02 AS stock_movement").
		Join("TB_ES_01 AS stock ON stock_movement.ES01_ID = stock.ES01_ID").
		Join("TB_CD_04 AS item ON item.CD04_ID = stock.CD04_ID").
		Join("TB_CD_05 AS item_use ON item_use.CD04_ID = item.CD04_ID").
		Join("TB_CD_28 AS unit_measure ON item.CD28_ID = unit_measure.CD28_ID").
		Join("TB_CD_02 AS ncm ON item.CD02_ID = ncm.CD02_ID").
		LeftJoin("TB_RM_01 AS purchase ON purchase.RM01_ID = stock_movement.RM01_ID").
		Where(dateCond).
		Where(squirrel.Eq{
			"stock.SY01_ID":    f.ScopeID,
			"item_use.SY01_ID": f.ScopeID,
		}).
		Where("NOT (stock_movement.ES02_HISTORICO LIKE '%TRANSF%ALMOX%' OR stock_movement.ES02_HISTORICO = 'T')").
		OrderBy("stock_movement.ES02_ID")

	if len(f.ExcludedItemUses) > 0 {
		q = q.Where(squirrel.NotEq{"item_use.CD05_USO_EMPRESA": f.ExcludedItemUses})
	}

	return q.ToSql()
}
