package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintrackhq/fintrack-backend/internal/apperrors"
	"github.com/fintrackhq/fintrack-backend/internal/core/domain"
	portsrepo "github.com/fintrackhq/fintrack-backend/internal/core/ports/repositories"
	"github.com/fintrackhq/fintrack-backend/internal/models"
	"github.com/fintrackhq/fintrack-backend/internal/utils/pagination"
)

const entryColumns = `entry_id, account_id, owner_id, amount, is_income, category_id, name, merchant_name, currency_code, note, location, latitude, longitude, repeat, external_id, can_delete, is_active, transaction_date, created_at, created_by, last_updated_at, last_updated_by`

const entryInsertQuery = `
	INSERT INTO ledger_entries (` + entryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
`

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepository
}

// newPgxEntryRepository creates a new repository for ledger entry data. The
// account repository is injected so every entry mutation can lock and adjust
// account balances inside the same transaction.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepository) portsrepo.EntryRepository {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.EntryRepository = (*PgxEntryRepository)(nil)

func toModelEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:         d.EntryID,
		AccountID:       d.AccountID,
		OwnerID:         d.OwnerID,
		Amount:          d.Amount,
		IsIncome:        d.IsIncome,
		CategoryID:      d.CategoryID,
		Name:            d.Name,
		MerchantName:    d.MerchantName,
		CurrencyCode:    d.CurrencyCode,
		Note:            d.Note,
		Location:        d.Location,
		Latitude:        d.Latitude,
		Longitude:       d.Longitude,
		Repeat:          d.Repeat,
		ExternalID:      d.ExternalID,
		CanDelete:       d.CanDelete,
		IsActive:        d.IsActive,
		TransactionDate: d.TransactionDate,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:         m.EntryID,
		AccountID:       m.AccountID,
		OwnerID:         m.OwnerID,
		Amount:          m.Amount,
		IsIncome:        m.IsIncome,
		CategoryID:      m.CategoryID,
		Name:            m.Name,
		MerchantName:    m.MerchantName,
		CurrencyCode:    m.CurrencyCode,
		Note:            m.Note,
		Location:        m.Location,
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		Repeat:          m.Repeat,
		ExternalID:      m.ExternalID,
		CanDelete:       m.CanDelete,
		IsActive:        m.IsActive,
		TransactionDate: m.TransactionDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanEntry(row pgx.Row) (models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.AccountID,
		&m.OwnerID,
		&m.Amount,
		&m.IsIncome,
		&m.CategoryID,
		&m.Name,
		&m.MerchantName,
		&m.CurrencyCode,
		&m.Note,
		&m.Location,
		&m.Latitude,
		&m.Longitude,
		&m.Repeat,
		&m.ExternalID,
		&m.CanDelete,
		&m.IsActive,
		&m.TransactionDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func entryInsertArgs(m models.LedgerEntry) []interface{} {
	return []interface{}{
		m.EntryID,
		m.AccountID,
		m.OwnerID,
		m.Amount,
		m.IsIncome,
		m.CategoryID,
		m.Name,
		m.MerchantName,
		m.CurrencyCode,
		m.Note,
		m.Location,
		m.Latitude,
		m.Longitude,
		m.Repeat,
		m.ExternalID,
		m.CanDelete,
		m.IsActive,
		m.TransactionDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// applyBalances locks the affected account rows and applies the deltas.
// Shared by every mutation path so the lock-then-update order is uniform and
// deadlock-free across concurrent writers.
func (r *PgxEntryRepository) applyBalances(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(changes))
	for accID := range changes {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	if err := r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, changes, userID, now); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}

// SaveEntry inserts a new entry and applies delta to its account balance
// within a single database transaction.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry, delta decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelEntry(entry)
	if _, err := tx.Exec(ctx, entryInsertQuery, entryInsertArgs(m)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: entry %s already exists", apperrors.ErrDuplicate, m.EntryID)
		}
		return fmt.Errorf("failed to insert entry %s: %w", m.EntryID, err)
	}

	changes := map[string]decimal.Decimal{entry.AccountID: delta}
	if err := r.applyBalances(ctx, tx, changes, entry.CreatedBy, entry.CreatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry by its ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	d := toDomainEntry(m)
	return &d, nil
}

// ListEntriesByAccount retrieves a page of active entries for an account using
// keyset pagination on (transaction_date, created_at), newest first.
func (r *PgxEntryRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE account_id = $1 AND is_active = TRUE
	`
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		txnDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (transaction_date, created_at) < ($2, $3)`
		args = append(args, txnDate, createdAt)
	}

	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY transaction_date DESC, created_at DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for account %s: %w", accountID, err)
		}
		entries = append(entries, toDomainEntry(m))
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for account %s: %w", accountID, rows.Err())
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		token = &t
	}
	return entries, token, nil
}

// UpdateEntry rewrites an entry and applies the given per-account balance
// adjustments in the same transaction.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelEntry(entry)
	query := `
		UPDATE ledger_entries
		SET account_id = $2, amount = $3, is_income = $4, category_id = $5, name = $6,
		    merchant_name = $7, note = $8, repeat = $9, transaction_date = $10,
		    last_updated_at = $11, last_updated_by = $12
		WHERE entry_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.EntryID,
		m.AccountID,
		m.Amount,
		m.IsIncome,
		m.CategoryID,
		m.Name,
		m.MerchantName,
		m.Note,
		m.Repeat,
		m.TransactionDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.applyBalances(ctx, tx, balanceChanges, entry.LastUpdatedBy, entry.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeactivateEntry soft-deletes an entry and applies the reversal delta to its
// account in the same transaction.
func (r *PgxEntryRepository) DeactivateEntry(ctx context.Context, entry domain.LedgerEntry, reversal decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE ledger_entries
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := tx.Exec(ctx, query, entry.EntryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate entry %s: %w", entry.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Already inactive deletes must not reverse the balance twice.
		return apperrors.ErrNotFound
	}

	changes := map[string]decimal.Decimal{entry.AccountID: reversal}
	if err := r.applyBalances(ctx, tx, changes, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindEntriesByExternalIDs retrieves entries keyed by their external IDs.
// Inactive entries are included so feed replays can recognize records that
// were already removed.
func (r *PgxEntryRepository) FindEntriesByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.LedgerEntry, error) {
	if len(externalIDs) == 0 {
		return map[string]domain.LedgerEntry{}, nil
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE external_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by external IDs: %w", err)
	}
	defer rows.Close()

	entriesMap := make(map[string]domain.LedgerEntry)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row during external ID fetch: %w", err)
		}
		if m.ExternalID != nil {
			entriesMap[*m.ExternalID] = toDomainEntry(m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows during external ID fetch: %w", err)
	}
	return entriesMap, nil
}

// CommitSyncPage applies one feed page's inserts, updates, deactivations and
// balance changes atomically. Either the whole page lands or none of it does,
// and the caller only advances the feed cursor after this returns nil.
func (r *PgxEntryRepository) CommitSyncPage(ctx context.Context, plan portsrepo.SyncPagePlan) error {
	if plan.Empty() {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, entry := range plan.Inserts {
		batch.Queue(entryInsertQuery, entryInsertArgs(toModelEntry(entry))...)
	}

	updateQuery := `
		UPDATE ledger_entries
		SET amount = $2, is_income = $3, category_id = $4, name = $5, merchant_name = $6,
		    currency_code = $7, location = $8, latitude = $9, longitude = $10,
		    transaction_date = $11, last_updated_at = $12, last_updated_by = $13
		WHERE entry_id = $1;
	`
	for _, entry := range plan.Updates {
		m := toModelEntry(entry)
		batch.Queue(updateQuery,
			m.EntryID,
			m.Amount,
			m.IsIncome,
			m.CategoryID,
			m.Name,
			m.MerchantName,
			m.CurrencyCode,
			m.Location,
			m.Latitude,
			m.Longitude,
			m.TransactionDate,
			plan.Now,
			plan.ActorID,
		)
	}

	deactivateQuery := `
		UPDATE ledger_entries
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND is_active = TRUE;
	`
	for _, entryID := range plan.DeactivateIDs {
		batch.Queue(deactivateQuery, entryID, plan.Now, plan.ActorID)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to execute sync page batch: %w", err)
		}
	}

	if len(plan.BalanceChanges) > 0 {
		if err := r.applyBalances(ctx, tx, plan.BalanceChanges, plan.ActorID, plan.Now); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}
