// Package postgres implements the persistence gateway on PostgreSQL. Every
// commit rewrites the full snapshot inside one transaction, so the tables
// always mirror the in-memory state exactly.
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"medicart/internal/domain/cart"
	"medicart/internal/domain/catalog"
	"medicart/internal/domain/order"
	"medicart/internal/domain/user"
	"medicart/internal/store"
)

// deliveryTimeLayout matches the textual form delivery timestamps are stored
// in: YYYY-MM-DD HH:MM:SS, local time.
const deliveryTimeLayout = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS medicines (
	name  TEXT PRIMARY KEY,
	price DOUBLE PRECISION NOT NULL,
	stock INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	address       TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS orders (
	order_id      TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	items         TEXT NOT NULL,
	prescription  TEXT NOT NULL,
	status        TEXT NOT NULL,
	delivery_time TEXT NOT NULL,
	total         DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS cart_lines (
	username TEXT NOT NULL,
	medicine TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	PRIMARY KEY (username, medicine)
);`

type Gateway struct {
	db *sqlx.DB
}

// Open connects to the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Gateway, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &Gateway{db: db}, nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

// Commit rewrites all four collections wholesale, so a removed medicine or
// cancelled order stays gone across restarts.
func (g *Gateway) Commit(ctx context.Context, snap *store.Snapshot) (err error) {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = commitMedicines(ctx, tx, snap.Catalog); err != nil {
		return err
	}
	if err = commitUsers(ctx, tx, snap.Users); err != nil {
		return err
	}
	if err = commitOrders(ctx, tx, snap.Orders); err != nil {
		return err
	}
	if err = commitCarts(ctx, tx, snap.Carts); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func commitMedicines(ctx context.Context, tx *sqlx.Tx, cat catalog.Catalog) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM medicines`); err != nil {
		return errors.Wrap(err, "clear medicines")
	}
	for _, m := range cat {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO medicines (name, price, stock) VALUES ($1, $2, $3)`,
			m.Name, m.UnitPrice, m.Stock,
		); err != nil {
			return errors.Wrapf(err, "insert medicine %q", m.Name)
		}
	}
	return nil
}

func commitUsers(ctx context.Context, tx *sqlx.Tx, users user.Directory) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return errors.Wrap(err, "clear users")
	}
	for _, u := range users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, address, is_admin) VALUES ($1, $2, $3, $4)`,
			u.Username, u.PasswordHash, u.Address, u.Admin,
		); err != nil {
			return errors.Wrapf(err, "insert user %q", u.Username)
		}
	}
	return nil
}

func commitOrders(ctx context.Context, tx *sqlx.Tx, orders map[string]*order.Order) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return errors.Wrap(err, "clear orders")
	}
	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return errors.Wrapf(err, "encode items of order %s", o.ID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (order_id, username, items, prescription, status, delivery_time, total, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.ID, o.Owner, string(items), o.Prescription, string(o.Status),
			o.DeliveryAt.Format(deliveryTimeLayout), o.Total, o.CreatedAt,
		); err != nil {
			return errors.Wrapf(err, "insert order %s", o.ID)
		}
	}
	return nil
}

func commitCarts(ctx context.Context, tx *sqlx.Tx, carts map[string]cart.Cart) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	for username, c := range carts {
		for medicine, qty := range c {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cart_lines (username, medicine, quantity) VALUES ($1, $2, $3)`,
				username, medicine, qty,
			); err != nil {
				return errors.Wrapf(err, "insert cart line %q for %q", medicine, username)
			}
		}
	}
	return nil
}

type medicineRow struct {
	Name  string  `db:"name"`
	Price float64 `db:"price"`
	Stock int     `db:"stock"`
}

type userRow struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Address      string `db:"address"`
	IsAdmin      bool   `db:"is_admin"`
}

type orderRow struct {
	OrderID      string    `db:"order_id"`
	Username     string    `db:"username"`
	Items        string    `db:"items"`
	Prescription string    `db:"prescription"`
	Status       string    `db:"status"`
	DeliveryTime string    `db:"delivery_time"`
	Total        float64   `db:"total"`
	CreatedAt    time.Time `db:"created_at"`
}

type cartRow struct {
	Username string `db:"username"`
	Medicine string `db:"medicine"`
	Quantity int    `db:"quantity"`
}

// Load reads the last committed snapshot.
func (g *Gateway) Load(ctx context.Context) (*store.Snapshot, error) {
	snap := store.NewSnapshot()

	var medicines []medicineRow
	if err := g.db.SelectContext(ctx, &medicines, `SELECT name, price, stock FROM medicines`); err != nil {
		return nil, errors.Wrap(err, "load medicines")
	}
	for _, row := range medicines {
		snap.Catalog[row.Name] = &catalog.Medicine{Name: row.Name, UnitPrice: row.Price, Stock: row.Stock}
	}

	var users []userRow
	if err := g.db.SelectContext(ctx, &users, `SELECT username, password_hash, address, is_admin FROM users`); err != nil {
		return nil, errors.Wrap(err, "load users")
	}
	for _, row := range users {
		snap.Users[row.Username] = &user.User{
			Username:     row.Username,
			PasswordHash: row.PasswordHash,
			Address:      row.Address,
			Admin:        row.IsAdmin,
		}
	}

	var orders []orderRow
	if err := g.db.SelectContext(ctx, &orders, `SELECT order_id, username, items, prescription, status, delivery_time, total, created_at FROM orders`); err != nil {
		return nil, errors.Wrap(err, "load orders")
	}
	for _, row := range orders {
		o, err := decodeOrder(row)
		if err != nil {
			return nil, err
		}
		snap.Orders[o.ID] = o
	}

	var lines []cartRow
	if err := g.db.SelectContext(ctx, &lines, `SELECT username, medicine, quantity FROM cart_lines`); err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	for _, row := range lines {
		snap.Cart(row.Username)[row.Medicine] = row.Quantity
	}

	return snap, nil
}

func decodeOrder(row orderRow) (*order.Order, error) {
	items := make(map[string]int)
	if err := json.Unmarshal([]byte(row.Items), &items); err != nil {
		return nil, errors.Wrapf(err, "decode items of order %s", row.OrderID)
	}
	status, err := order.ParseStatus(row.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "order %s", row.OrderID)
	}
	deliveryAt, err := time.ParseInLocation(deliveryTimeLayout, row.DeliveryTime, time.Local)
	if err != nil {
		return nil, errors.Wrapf(err, "decode delivery time of order %s", row.OrderID)
	}
	return &order.Order{
		ID:           row.OrderID,
		Owner:        row.Username,
		Items:        items,
		Prescription: row.Prescription,
		Status:       status,
		DeliveryAt:   deliveryAt,
		Total:        row.Total,
		CreatedAt:    row.CreatedAt,
	}, nil
}
