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
	"github.com/fintrackhq/fintrack-backend/internal/middleware"
	"github.com/fintrackhq/fintrack-backend/internal/models"
)

const accountColumns = `account_id, owner_id, name, official_name, kind, account_number, currency_code, current_balance, available_balance, is_active, is_internal, external_account_id, external_item_id, access_token, sync_cursor, last_synced_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		OwnerID:           d.OwnerID,
		Name:              d.Name,
		OfficialName:      d.OfficialName,
		Kind:              models.AccountKind(d.Kind),
		AccountNumber:     d.AccountNumber,
		CurrencyCode:      d.CurrencyCode,
		CurrentBalance:    d.CurrentBalance,
		AvailableBalance:  d.AvailableBalance,
		IsActive:          d.IsActive,
		IsInternal:        d.IsInternal,
		ExternalAccountID: d.ExternalAccountID,
		ExternalItemID:    d.ExternalItemID,
		AccessToken:       d.AccessToken,
		SyncCursor:        d.SyncCursor,
		LastSyncedAt:      d.LastSyncedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:         m.AccountID,
		OwnerID:           m.OwnerID,
		Name:              m.Name,
		OfficialName:      m.OfficialName,
		Kind:              domain.AccountKind(m.Kind),
		AccountNumber:     m.AccountNumber,
		CurrencyCode:      m.CurrencyCode,
		CurrentBalance:    m.CurrentBalance,
		AvailableBalance:  m.AvailableBalance,
		IsActive:          m.IsActive,
		IsInternal:        m.IsInternal,
		ExternalAccountID: m.ExternalAccountID,
		ExternalItemID:    m.ExternalItemID,
		AccessToken:       m.AccessToken,
		SyncCursor:        m.SyncCursor,
		LastSyncedAt:      m.LastSyncedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.OwnerID,
		&m.Name,
		&m.OfficialName,
		&m.Kind,
		&m.AccountNumber,
		&m.CurrencyCode,
		&m.CurrentBalance,
		&m.AvailableBalance,
		&m.IsActive,
		&m.IsInternal,
		&m.ExternalAccountID,
		&m.ExternalItemID,
		&m.AccessToken,
		&m.SyncCursor,
		&m.LastSyncedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.OwnerID,
		m.Name,
		m.OfficialName,
		m.Kind,
		m.AccountNumber,
		m.CurrencyCode,
		m.CurrentBalance,
		m.AvailableBalance,
		m.IsActive,
		m.IsInternal,
		m.ExternalAccountID,
		m.ExternalItemID,
		m.AccessToken,
		m.SyncCursor,
		m.LastSyncedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// UpsertLinkedAccount inserts or refreshes an externally linked account keyed
// by (owner_id, external_account_id). On conflict only the provider-sourced
// descriptive fields and credentials are refreshed; current_balance is left
// untouched so the balance gateway stays its only writer.
func (r *PgxAccountRepository) UpsertLinkedAccount(ctx context.Context, account domain.Account) (*domain.Account, bool, error) {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (owner_id, external_account_id) WHERE external_account_id <> '' DO UPDATE SET
			name = EXCLUDED.name,
			official_name = EXCLUDED.official_name,
			account_number = EXCLUDED.account_number,
			available_balance = EXCLUDED.available_balance,
			access_token = EXCLUDED.access_token,
			is_active = TRUE,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + accountColumns + `, (xmax = 0) AS inserted;
	`
	var stored models.Account
	var inserted bool
	err := r.Pool.QueryRow(ctx, query,
		m.AccountID,
		m.OwnerID,
		m.Name,
		m.OfficialName,
		m.Kind,
		m.AccountNumber,
		m.CurrencyCode,
		m.CurrentBalance,
		m.AvailableBalance,
		m.IsActive,
		m.IsInternal,
		m.ExternalAccountID,
		m.ExternalItemID,
		m.AccessToken,
		m.SyncCursor,
		m.LastSyncedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(
		&stored.AccountID,
		&stored.OwnerID,
		&stored.Name,
		&stored.OfficialName,
		&stored.Kind,
		&stored.AccountNumber,
		&stored.CurrencyCode,
		&stored.CurrentBalance,
		&stored.AvailableBalance,
		&stored.IsActive,
		&stored.IsInternal,
		&stored.ExternalAccountID,
		&stored.ExternalItemID,
		&stored.AccessToken,
		&stored.SyncCursor,
		&stored.LastSyncedAt,
		&stored.CreatedAt,
		&stored.CreatedBy,
		&stored.LastUpdatedAt,
		&stored.LastUpdatedBy,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert linked account %s: %w", m.ExternalAccountID, err)
	}

	d := toDomainAccount(stored)
	return &d, inserted, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	d := toDomainAccount(m)
	return &d, nil
}

// ListAccountsByOwner retrieves a paginated list of the owner's active accounts.
func (r *PgxAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_active = TRUE AND owner_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for owner %s: %w", ownerID, err)
		}
		accounts = append(accounts, toDomainAccount(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for owner %s: %w", ownerID, rows.Err())
	}
	return accounts, nil
}

// UpdateAccount updates an existing account's descriptive fields. The balance
// is deliberately excluded; only ApplyBalanceChangesInTx may touch it.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, account_number = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.AccountNumber,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindAccountByID(ctx, accountID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check account status after deactivation attempt for %s: %w", accountID, findErr)
		}
		// Exists but was already inactive.
		return apperrors.ErrValidation
	}
	return nil
}

// FindAccountsByItemID retrieves all accounts linked to an external item.
func (r *PgxAccountRepository) FindAccountsByItemID(ctx context.Context, itemID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE external_item_id = $1 ORDER BY account_id;`

	rows, err := r.Pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for item %s: %w", itemID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for item %s: %w", itemID, err)
		}
		accounts = append(accounts, toDomainAccount(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for item %s: %w", itemID, rows.Err())
	}
	return accounts, nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the
// rows for update. Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) FOR UPDATE;`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.AccountID] = toDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		middleware.GetLoggerFromCtx(ctx).Warn("some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyBalanceChangesInTx adds each signed delta to the matching account's
// current balance within the caller's transaction. Rows must already be
// locked via FindAccountsByIDsForUpdate.
func (r *PgxAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(changes) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET current_balance = COALESCE(current_balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(changes))
	for accountID, delta := range changes {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now, userID)
			accountIDs = append(accountIDs, accountID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}

// GetSyncCursor loads the stored feed cursor for an external item. All
// accounts of an item share one cursor; any row works.
func (r *PgxAccountRepository) GetSyncCursor(ctx context.Context, itemID string) (*string, error) {
	query := `
		SELECT sync_cursor
		FROM accounts
		WHERE external_item_id = $1
		ORDER BY account_id
		LIMIT 1;
	`
	var cursor *string
	err := r.Pool.QueryRow(ctx, query, itemID).Scan(&cursor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no accounts linked to item %s", apperrors.ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to load sync cursor for item %s: %w", itemID, err)
	}
	return cursor, nil
}

// SaveSyncCursor persists the advanced cursor for all accounts of an item.
func (r *PgxAccountRepository) SaveSyncCursor(ctx context.Context, itemID, cursor string, syncedAt time.Time) error {
	query := `
		UPDATE accounts
		SET sync_cursor = $2, last_synced_at = $3
		WHERE external_item_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, itemID, cursor, syncedAt)
	if err != nil {
		return fmt.Errorf("failed to save sync cursor for item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no accounts linked to item %s", apperrors.ErrNotFound, itemID)
	}
	return nil
}
