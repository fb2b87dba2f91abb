package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	pkgch "Edelweiss/pkg/clickhouse"
	applogger "Edelweiss/pkg/logger"
)

const ProviderClickHouse = "clickhouse"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CHPriceStore implements PriceProvider over a ClickHouse table of daily bars
// with at least (symbol String, day Date, close Float64). Duplicate days collapse to one row.
type CHPriceStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

func NewCHPriceStore(ch *pkgch.Client, database, table string) (*CHPriceStore, error) {
	qualified, err := qualifiedTable(database, table)
	if err != nil {
		return nil, err
	}
	return &CHPriceStore{db: ch.DB(), table: qualified, now: time.Now}, nil
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceStore) Name() string { return ProviderClickHouse }

func (s *CHPriceStore) FetchSeries(ctx context.Context, symbol string, period domrepo.Period) (*models.PriceSeries, error) {
	start := time.Now()
	from := period.Start(s.now())
	q := fmt.Sprintf(`
        SELECT day, anyLast(close) AS close
        FROM %s
        WHERE symbol = ? AND day >= ?
        GROUP BY day
        ORDER BY day ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		s.logError("clickhouse fetch_series query error", symbol, err)
		return nil, fmt.Errorf("query daily bars: %w", err)
	}
	defer rows.Close()

	series := &models.PriceSeries{Symbol: symbol, Source: ProviderClickHouse}
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Time, &p.Close); err != nil {
			s.logError("clickhouse fetch_series scan error", symbol, err)
			return nil, fmt.Errorf("scan daily bar: %w", err)
		}
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse fetch_series rows error", symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(series.Points) == 0 {
		return nil, models.ErrNoData
	}
	if s.l != nil {
		s.l.Debug("clickhouse fetch_series ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(series.Points)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}

func (s *CHPriceStore) logError(msg, symbol string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Error(err),
	)
}

func qualifiedTable(database, table string) (string, error) {
	if !identRe.MatchString(table) {
		return "", fmt.Errorf("invalid clickhouse table name %q", table)
	}
	if database == "" {
		return table, nil
	}
	if !identRe.MatchString(database) {
		return "", fmt.Errorf("invalid clickhouse database name %q", database)
	}
	return database + "." + table, nil
}
