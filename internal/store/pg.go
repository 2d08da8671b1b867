package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"trailstop/internal/model"
	"trailstop/internal/model/enum"
	"trailstop/pkg/exception"

	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
	defaultWriteBuffer     = 256
)

// Option defines connection options for the postgres-backed store.
type Option struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	Params      map[string]string
	ConnString  string
	WriteBuffer int
	Config      *gorm.Config
}

var _ Store = (*Postgres)(nil)

// Postgres is the durable execution store. Writes land whole-row, applied
// out-of-band by a single writer goroutine so the event-handling thread never
// waits on the database. Reads go through a transient cache that Flush drops.
type Postgres struct {
	Unimplemented

	opt    Option
	db     *gorm.DB
	writes chan func(*gorm.DB) error
	done   chan struct{}
	start  sync.Once
	stop   sync.Once

	mu         sync.Mutex
	accounts   map[recordKey]model.Account
	orders     map[recordKey]model.Order
	positions  map[recordKey]model.Position
	strategies map[recordKey]map[string]string
}

type recordKey struct {
	trader string
	entity string
}

// NewPostgres opens the connection pool and migrates the record tables.
func NewPostgres(option Option) (*Postgres, error) {
	connString, err := option.dsn()
	if err != nil {
		return nil, err
	}

	config := option.Config
	if config == nil {
		config = &gorm.Config{}
	}

	db, err := gorm.Open(postgres.Open(connString), config)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&accountRow{}, &orderRow{}, &positionRow{}, &strategyRow{}); err != nil {
		return nil, fmt.Errorf("migrate execution tables: %w", err)
	}

	buffer := option.WriteBuffer
	if buffer <= 0 {
		buffer = defaultWriteBuffer
	}

	p := &Postgres{
		opt:    option,
		db:     db,
		writes: make(chan func(*gorm.DB) error, buffer),
		done:   make(chan struct{}),
	}
	p.resetCaches()
	return p, nil
}

// Start launches the out-of-band writer.
func (p *Postgres) Start(ctx context.Context) {
	p.start.Do(func() {
		go p.runWriter(ctx)
	})
}

// Close stops the writer after draining pending writes and closes the pool.
func (p *Postgres) Close() error {
	p.stop.Do(func() {
		close(p.writes)
	})
	<-p.done
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Postgres) runWriter(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case op, ok := <-p.writes:
			if !ok {
				return
			}
			if err := op(p.db); err != nil {
				logs.Errorf("store: apply buffered write: %+v", err)
			}
		}
	}
}

func (p *Postgres) drain() {
	for {
		select {
		case op, ok := <-p.writes:
			if !ok {
				return
			}
			if err := op(p.db); err != nil {
				logs.Errorf("store: apply buffered write: %+v", err)
			}
		default:
			return
		}
	}
}

func (p *Postgres) enqueue(op func(*gorm.DB) error) error {
	select {
	case p.writes <- op:
		return nil
	default:
		// buffer full: apply inline so the snapshot is not lost
		logs.Errorf("store: write buffer full, applying inline")
		return op(p.db)
	}
}

func (p *Postgres) LoadAccounts(traderID model.TraderID) ([]model.Account, error) {
	var rows []accountRow
	if err := p.db.Where("trader_id = ?", string(traderID)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAccount())
	}
	return out, nil
}

func (p *Postgres) LoadOrders(traderID model.TraderID) ([]model.Order, error) {
	var rows []orderRow
	if err := p.db.Where("trader_id = ?", string(traderID)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toOrder())
	}
	return out, nil
}

func (p *Postgres) LoadPositions(traderID model.TraderID) ([]model.Position, error) {
	var rows []positionRow
	if err := p.db.Where("trader_id = ?", string(traderID)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Position, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toPosition())
	}
	return out, nil
}

func (p *Postgres) LoadAccount(traderID model.TraderID, accountID model.AccountID) (model.Account, error) {
	key := recordKey{string(traderID), string(accountID)}
	p.mu.Lock()
	cached, ok := p.accounts[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	var row accountRow
	err := p.db.Where("trader_id = ? AND account_id = ?", key.trader, key.entity).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Account{}, exception.ErrStoreNotFound
	}
	if err != nil {
		return model.Account{}, err
	}

	account := row.toAccount()
	p.cacheAccount(key, account)
	return account, nil
}

func (p *Postgres) LoadOrder(traderID model.TraderID, clientOrderID model.ClientOrderID) (model.Order, error) {
	key := recordKey{string(traderID), string(clientOrderID)}
	p.mu.Lock()
	cached, ok := p.orders[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	var row orderRow
	err := p.db.Where("trader_id = ? AND client_order_id = ?", key.trader, key.entity).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, exception.ErrStoreNotFound
	}
	if err != nil {
		return model.Order{}, err
	}

	order := row.toOrder()
	p.cacheOrder(key, order)
	return order, nil
}

func (p *Postgres) LoadPosition(traderID model.TraderID, instrumentID model.InstrumentID) (model.Position, error) {
	key := recordKey{string(traderID), string(instrumentID)}
	p.mu.Lock()
	cached, ok := p.positions[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	var row positionRow
	err := p.db.Where("trader_id = ? AND instrument_id = ?", key.trader, key.entity).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Position{}, exception.ErrStoreNotFound
	}
	if err != nil {
		return model.Position{}, err
	}

	position := row.toPosition()
	p.cachePosition(key, position)
	return position, nil
}

func (p *Postgres) LoadStrategy(traderID model.TraderID, strategyID model.StrategyID) (map[string]string, error) {
	key := recordKey{string(traderID), string(strategyID)}
	p.mu.Lock()
	cached, ok := p.strategies[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	var row strategyRow
	err := p.db.Where("trader_id = ? AND strategy_id = ?", key.trader, key.entity).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	state := map[string]string{}
	if row.State != "" {
		if err := json.Unmarshal([]byte(row.State), &state); err != nil {
			return nil, fmt.Errorf("decode strategy state: %w", err)
		}
	}
	p.cacheStrategy(key, state)
	return state, nil
}

func (p *Postgres) AddAccount(traderID model.TraderID, account model.Account) error {
	return p.upsertAccount(traderID, account)
}

func (p *Postgres) AddOrder(traderID model.TraderID, order model.Order) error {
	return p.upsertOrder(traderID, order)
}

func (p *Postgres) AddPosition(traderID model.TraderID, position model.Position) error {
	return p.upsertPosition(traderID, position)
}

func (p *Postgres) UpdateAccount(traderID model.TraderID, account model.Account) error {
	return p.upsertAccount(traderID, account)
}

func (p *Postgres) UpdateOrder(traderID model.TraderID, order model.Order) error {
	return p.upsertOrder(traderID, order)
}

func (p *Postgres) UpdatePosition(traderID model.TraderID, position model.Position) error {
	return p.upsertPosition(traderID, position)
}

func (p *Postgres) UpdateStrategy(traderID model.TraderID, strategyID model.StrategyID, state map[string]string) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode strategy state: %w", err)
	}
	key := recordKey{string(traderID), string(strategyID)}
	p.cacheStrategy(key, state)
	row := strategyRow{
		TraderID:   key.trader,
		StrategyID: key.entity,
		State:      string(encoded),
	}
	return p.enqueue(func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
}

func (p *Postgres) DeleteStrategy(traderID model.TraderID, strategyID model.StrategyID) error {
	key := recordKey{string(traderID), string(strategyID)}
	p.mu.Lock()
	delete(p.strategies, key)
	p.mu.Unlock()
	return p.enqueue(func(db *gorm.DB) error {
		return db.Where("trader_id = ? AND strategy_id = ?", key.trader, key.entity).
			Delete(&strategyRow{}).Error
	})
}

// Flush drops the transient read caches. Durable rows are untouched.
func (p *Postgres) Flush() error {
	p.resetCaches()
	return nil
}

func (p *Postgres) upsertAccount(traderID model.TraderID, account model.Account) error {
	key := recordKey{string(traderID), string(account.ID)}
	p.cacheAccount(key, account)
	row := accountRow{
		TraderID:      key.trader,
		AccountID:     key.entity,
		Currency:      account.Currency,
		Balance:       account.Balance,
		UpdatedTsNano: account.UpdatedTsNano,
	}
	return p.enqueue(func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
}

func (p *Postgres) upsertOrder(traderID model.TraderID, order model.Order) error {
	key := recordKey{string(traderID), string(order.ClientOrderID)}
	p.cacheOrder(key, order)
	row := newOrderRow(key.trader, order)
	return p.enqueue(func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
}

func (p *Postgres) upsertPosition(traderID model.TraderID, position model.Position) error {
	key := recordKey{string(traderID), string(position.InstrumentID)}
	p.cachePosition(key, position)
	row := positionRow{
		TraderID:     key.trader,
		InstrumentID: key.entity,
		Side:         uint16(position.Side),
		Quantity:     int64(position.Quantity),
	}
	return p.enqueue(func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
}

func (p *Postgres) resetCaches() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts = make(map[recordKey]model.Account)
	p.orders = make(map[recordKey]model.Order)
	p.positions = make(map[recordKey]model.Position)
	p.strategies = make(map[recordKey]map[string]string)
}

func (p *Postgres) cacheAccount(key recordKey, account model.Account) {
	p.mu.Lock()
	p.accounts[key] = account
	p.mu.Unlock()
}

func (p *Postgres) cacheOrder(key recordKey, order model.Order) {
	p.mu.Lock()
	p.orders[key] = order
	p.mu.Unlock()
}

func (p *Postgres) cachePosition(key recordKey, position model.Position) {
	p.mu.Lock()
	p.positions[key] = position
	p.mu.Unlock()
}

func (p *Postgres) cacheStrategy(key recordKey, state map[string]string) {
	p.mu.Lock()
	p.strategies[key] = state
	p.mu.Unlock()
}

func (opt Option) dsn() (string, error) {
	if opt.ConnString != "" {
		return opt.ConnString, nil
	}

	host := opt.Host
	if host == "" {
		host = defaultPostgresHost
	}

	port := opt.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultPostgresSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}

	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}

	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	for key, value := range opt.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

type accountRow struct {
	TraderID      string `gorm:"primaryKey;size:64"`
	AccountID     string `gorm:"primaryKey;size:64"`
	Currency      string `gorm:"size:16"`
	Balance       float64
	UpdatedTsNano int64
}

func (accountRow) TableName() string { return "exec_accounts" }

func (r accountRow) toAccount() model.Account {
	return model.Account{
		ID:            model.AccountID(r.AccountID),
		Currency:      r.Currency,
		Balance:       r.Balance,
		UpdatedTsNano: r.UpdatedTsNano,
	}
}

type orderRow struct {
	TraderID      string `gorm:"primaryKey;size:64"`
	ClientOrderID string `gorm:"primaryKey;size:96"`
	InstrumentID  string `gorm:"size:64;index"`
	Side          uint16
	Type          uint16
	Role          uint16
	Status        uint16
	Price         int64
	Quantity      int64
	FilledQty     int64
	ReduceOnly    bool
	InitTsNano    int64
	UpdatedTsNano int64
}

func (orderRow) TableName() string { return "exec_orders" }

func newOrderRow(traderID string, o model.Order) orderRow {
	return orderRow{
		TraderID:      traderID,
		ClientOrderID: string(o.ClientOrderID),
		InstrumentID:  string(o.InstrumentID),
		Side:          uint16(o.Side),
		Type:          uint16(o.Type),
		Role:          uint16(o.Role),
		Status:        uint16(o.Status),
		Price:         int64(o.Price),
		Quantity:      int64(o.Quantity),
		FilledQty:     int64(o.FilledQty),
		ReduceOnly:    o.ReduceOnly,
		InitTsNano:    o.InitTsNano,
		UpdatedTsNano: o.UpdatedTsNano,
	}
}

func (r orderRow) toOrder() model.Order {
	return model.Order{
		ClientOrderID: model.ClientOrderID(r.ClientOrderID),
		InstrumentID:  model.InstrumentID(r.InstrumentID),
		Side:          enum.OrderSide(r.Side),
		Type:          enum.OrderType(r.Type),
		Role:          enum.OrderRole(r.Role),
		Status:        enum.OrderStatus(r.Status),
		Price:         model.Price(r.Price),
		Quantity:      model.Quantity(r.Quantity),
		FilledQty:     model.Quantity(r.FilledQty),
		ReduceOnly:    r.ReduceOnly,
		InitTsNano:    r.InitTsNano,
		UpdatedTsNano: r.UpdatedTsNano,
	}
}

type positionRow struct {
	TraderID     string `gorm:"primaryKey;size:64"`
	InstrumentID string `gorm:"primaryKey;size:64"`
	Side         uint16
	Quantity     int64
}

func (positionRow) TableName() string { return "exec_positions" }

func (r positionRow) toPosition() model.Position {
	return model.Position{
		InstrumentID: model.InstrumentID(r.InstrumentID),
		Side:         enum.PositionSide(r.Side),
		Quantity:     model.Quantity(r.Quantity),
	}
}

type strategyRow struct {
	TraderID   string `gorm:"primaryKey;size:64"`
	StrategyID string `gorm:"primaryKey;size:64"`
	State      string
}

func (strategyRow) TableName() string { return "exec_strategies" }
