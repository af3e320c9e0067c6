package interview

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"anemo-backend/internal/platform/web"

	"github.com/google/uuid"
)

var ErrReportNotFound = fmt.Errorf("recommendation report %w", web.ErrNotFound)

// Repository stores generated reports. Reports are immutable: saving a
// second report for the same session keeps the first one.
type Repository interface {
	Save(ctx context.Context, r *RecommendationReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecommendationReport, error)
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*RecommendationReport, error)
	ListByUser(ctx context.Context, userID string) ([]RecommendationReport, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const reportColumns = `id, session_id, user_id, risk_score, risk_level, recommendations, transcript, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*RecommendationReport, error) {
	var r RecommendationReport
	var transcriptJSON []byte

	err := row.Scan(
		&r.ID,
		&r.SessionID,
		&r.UserID,
		&r.RiskScore,
		&r.RiskLevel,
		&r.Recommendations,
		&transcriptJSON,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(transcriptJSON) > 0 {
		if err := json.Unmarshal(transcriptJSON, &r.Transcript); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
		}
	}
	return &r, nil
}

func (r *postgresRepo) getOne(ctx context.Context, query string, arg any) (*RecommendationReport, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*RecommendationReport, error) {
	return r.getOne(ctx, `SELECT `+reportColumns+` FROM recommendation_reports WHERE id = $1`, id)
}

func (r *postgresRepo) GetBySession(ctx context.Context, sessionID uuid.UUID) (*RecommendationReport, error) {
	return r.getOne(ctx, `SELECT `+reportColumns+` FROM recommendation_reports WHERE session_id = $1`, sessionID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]RecommendationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM recommendation_reports WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []RecommendationReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (r *postgresRepo) Save(ctx context.Context, rep *RecommendationReport) error {
	transcriptJSON, err := json.Marshal(rep.Transcript)
	if err != nil {
		return err
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO recommendation_reports (id, session_id, user_id, risk_score, risk_level, recommendations, transcript, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		rep.ID, rep.SessionID, rep.UserID, rep.RiskScore, rep.RiskLevel, rep.Recommendations, transcriptJSON, rep.CreatedAt)
	return err
}

type memoryRepo struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]RecommendationReport
}

// NewMemoryRepository keeps reports for the lifetime of the process.
func NewMemoryRepository() Repository {
	return &memoryRepo{reports: make(map[uuid.UUID]RecommendationReport)}
}

func (m *memoryRepo) Save(_ context.Context, r *RecommendationReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reports {
		if existing.SessionID == r.SessionID {
			return nil
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	stored := *r
	stored.Transcript = append([]QA(nil), r.Transcript...)
	m.reports[r.ID] = stored
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*RecommendationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return &r, nil
}

func (m *memoryRepo) GetBySession(_ context.Context, sessionID uuid.UUID) (*RecommendationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.reports {
		if r.SessionID == sessionID {
			return &r, nil
		}
	}
	return nil, ErrReportNotFound
}

func (m *memoryRepo) ListByUser(_ context.Context, userID string) ([]RecommendationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []RecommendationReport{}
	for _, r := range m.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
