package postgres

import (
	"strings"
	"testing"
	"time"
)

func TestFeedRepo_BuildQuery(t *testing.T) {
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)

	repo := NewFeedRepo(nil)

	t.Run("window only", func(t *testing.T) {
		f := DefaultFeedFilter(from, to)

		sql, args, err := repo.buildQuery(f)
		if err != nil {
			t.Fatalf("buildQuery failed: %v", err)
		}

		for _, fragment := range []string{
			"FROM TB_ES_02 AS stock_movement",
			"LEFT JOIN TB_RM_01 AS purchase",
			"stock_movement.ES02_DATA BETWEEN $1 AND $2",
			"item_use.CD05_USO_EMPRESA NOT IN ($5,$6,$7)",
			"NOT (stock_movement.ES02_HISTORICO LIKE '%TRANSF%ALMOX%' OR stock_movement.ES02_HISTORICO = 'T')",
			"ORDER BY stock_movement.ES02_ID",
		} {
			if !strings.Contains(sql, fragment) {
				t.Errorf("query missing %q\nsql: %s", fragment, sql)
			}
		}

		// from, to, two scope ids, three excluded uses
		if len(args) != 7 {
			t.Errorf("got %d args, want 7: %v", len(args), args)
		}
	})

	t.Run("include orders widens the window", func(t *testing.T) {
		f := DefaultFeedFilter(from, to)
		f.IncludeOrders = []int64{89710}

		sql, args, err := repo.buildQuery(f)
		if err != nil {
			t.Fatalf("buildQuery failed: %v", err)
		}

		if !strings.Contains(sql, "stock_movement.OR01_ID IN ($3)") {
			t.Errorf("query missing order include clause\nsql: %s", sql)
		}
		if len(args) != 8 {
			t.Errorf("got %d args, want 8: %v", len(args), args)
		}
	})
}
