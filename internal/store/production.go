package store

import (
	"context"
	"fmt"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/jmoiron/sqlx"
)

type ProductionStore struct {
	db *sqlx.DB
}

const insertProduction = `INSERT INTO production_records (
	report_date, company, operation, field, gov, gsv, nsv
) VALUES (
	:report_date, :company, :operation, :field, :gov, :gsv, :nsv
)`

func (ps *ProductionStore) Replace(ctx context.Context, period types.Period, records []types.ProductionRecord) (int, error) {
	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	removed, err := deletePeriod(ctx, tx, "production_records", period)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, insertProduction, toProductionRow(r)); err != nil {
			return 0, fmt.Errorf("failed to insert production record %s/%s/%s: %w", r.Company, r.Operation, r.Field, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

func (ps *ProductionStore) Query(ctx context.Context, filter ProductionFilter) ([]types.ProductionRecord, error) {
	query := `SELECT report_date, company, operation, field, gov, gsv, nsv
	FROM production_records WHERE 1 = 1`
	query, args := periodClause(query, filter.Period)
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	if filter.Operation != "" {
		query += ` AND operation = ?`
		args = append(args, filter.Operation)
	}
	query += ` ORDER BY report_date, company, operation, field`

	var rows []productionRow
	if err := ps.db.SelectContext(ctx, &rows, ps.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query production records: %w", err)
	}
	out := make([]types.ProductionRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func periodClause(query string, p types.Period) (string, []any) {
	var args []any
	if !p.Start.IsZero() {
		query += ` AND report_date >= ?`
		args = append(args, p.Start.Format(types.DateLayout))
	}
	if !p.End.IsZero() {
		query += ` AND report_date < ?`
		args = append(args, p.End.Format(types.DateLayout))
	}
	return query, args
}

func deletePeriod(ctx context.Context, tx *sqlx.Tx, table string, p types.Period) (int, error) {
	query, args := periodClause(`DELETE FROM `+table+` WHERE 1 = 1`, p)
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s for %s: %w", table, p, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
