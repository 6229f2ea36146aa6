package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/sankhyagw/internal/model"
	"github.com/iurnickita/sankhyagw/internal/store/config"
)

// Store reads tenant contracts and cached product prices. The tables are owned by the
// administrative application; the gateway never creates or migrates them.
type Store interface {
	ContractGetActive(ctx context.Context, tenantID int64) (model.Contract, error)
	ContractMarkSynced(ctx context.Context, tenantID int64, at time.Time) (model.Contract, error)
	PriceGet(ctx context.Context, tenantID int64, productCode string) (decimal.Decimal, error)
	Close() error
}

var (
	ErrNoRows = errors.New("no rows")
)

const contractColumns = "id_empresa, empresa, cnpj," +
	" sankhya_token, sankhya_appkey, sankhya_username, sankhya_password," +
	" ativo, is_sandbox, sync_ativo, sync_intervalo_minutos," +
	" ultima_sincronizacao, proxima_sincronizacao"

type store struct {
	database *sql.DB
}

func NewStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return newStore(db), nil
}

func newStore(db *sql.DB) *store {
	return &store{database: db}
}

func (store *store) Close() error {
	return store.database.Close()
}

// ContractGetActive reads the contract row on every call; edits made by the
// administrative application take effect on the next operation.
func (store *store) ContractGetActive(ctx context.Context, tenantID int64) (model.Contract, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT "+contractColumns+
			" FROM ad_contratos"+
			" WHERE id_empresa = $1"+
			"   AND ativo = 'S'",
		tenantID)
	return scanContract(row)
}

// ContractMarkSynced stamps the last synchronization and schedules the next one
// SYNC_INTERVALO_MINUTOS later.
func (store *store) ContractMarkSynced(ctx context.Context, tenantID int64, at time.Time) (model.Contract, error) {
	row := store.database.QueryRowContext(ctx,
		"UPDATE ad_contratos"+
			" SET ultima_sincronizacao = $2,"+
			"     proxima_sincronizacao = $2 + make_interval(mins => sync_intervalo_minutos)"+
			" WHERE id_empresa = $1"+
			" RETURNING "+contractColumns,
		tenantID,
		at)
	return scanContract(row)
}

func (store *store) PriceGet(ctx context.Context, tenantID int64, productCode string) (decimal.Decimal, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT vlrvenda FROM ad_precos"+
			" WHERE id_empresa = $1"+
			"   AND codprod = $2",
		tenantID,
		productCode)
	var price decimal.Decimal
	err := row.Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrNoRows
		}
		return decimal.Zero, err
	}
	return price, nil
}

func scanContract(row *sql.Row) (model.Contract, error) {
	var contract model.Contract
	var name, taxID, token, appKey, username, password sql.NullString
	var active, sandbox, syncActive sql.NullString
	var syncInterval sql.NullInt64
	var lastSync, nextSync sql.NullTime
	err := row.Scan(&contract.TenantID,
		&name,
		&taxID,
		&token,
		&appKey,
		&username,
		&password,
		&active,
		&sandbox,
		&syncActive,
		&syncInterval,
		&lastSync,
		&nextSync)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contract{}, ErrNoRows
		}
		return model.Contract{}, err
	}

	contract.Data = model.ContractData{
		Name:                name.String,
		TaxID:               taxID.String,
		Token:               token.String,
		AppKey:              appKey.String,
		Username:            username.String,
		Password:            password.String,
		Active:              active.String == "S",
		Sandbox:             sandbox.String == "S",
		SyncActive:          syncActive.String == "S",
		SyncIntervalMinutes: int(syncInterval.Int64),
		LastSync:            lastSync.Time,
		NextSync:            nextSync.Time,
	}
	return contract, nil
}
