package store

import (
	"context"
	"fmt"

	"github.com/farxc/odca-monitor/internal/odca/types"
	"github.com/jmoiron/sqlx"
)

type NominationStore struct {
	db *sqlx.DB
}

const insertNomination = `INSERT INTO nominations (
	report_date, company, oil_type, nominated
) VALUES (
	:report_date, :company, :oil_type, :nominated
)`

func (ns *NominationStore) Replace(ctx context.Context, period types.Period, records []types.NominationRecord) (int, error) {
	tx, err := ns.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	removed, err := deletePeriod(ctx, tx, "nominations", period)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, insertNomination, toNominationRow(r)); err != nil {
			return 0, fmt.Errorf("failed to insert nomination %s/%s: %w", r.Company, r.OilType, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

func (ns *NominationStore) Query(ctx context.Context, filter NominationFilter) ([]types.NominationRecord, error) {
	query, args := periodClause(`SELECT report_date, company, oil_type, nominated
	FROM nominations WHERE 1 = 1`, filter.Period)
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY report_date, company, oil_type`

	var rows []nominationRow
	if err := ns.db.SelectContext(ctx, &rows, ns.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query nominations: %w", err)
	}
	out := make([]types.NominationRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
