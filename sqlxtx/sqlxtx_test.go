package sqlxtx_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dcshock/dbchain/chain"
	"github.com/dcshock/dbchain/sqlxtx"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type account struct {
	ID      int64  `db:"id"`
	Owner   string `db:"owner"`
	Balance int64  `db:"balance"`
}

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
CREATE TABLE accounts (id INTEGER PRIMARY KEY AUTOINCREMENT, owner TEXT NOT NULL, balance INTEGER NOT NULL);
INSERT INTO accounts (owner, balance) VALUES ('alice', 100), ('bob', 50);
`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func balanceOf(owner string) chain.Step[sqlx.ExtContext] {
	return func(ctx context.Context, h sqlx.ExtContext) (any, error) {
		var a account
		if err := sqlx.GetContext(ctx, h, &a, h.Rebind("SELECT * FROM accounts WHERE owner = ?"), owner); err != nil {
			return nil, err
		}
		return a, nil
	}
}

func adjust(owner string, delta int64) chain.Step[sqlx.ExtContext] {
	return func(ctx context.Context, h sqlx.ExtContext) (any, error) {
		_, err := h.ExecContext(ctx, h.Rebind("UPDATE accounts SET balance = balance + ? WHERE owner = ?"), delta, owner)
		return delta, err
	}
}

func TestTransfer_Commits(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	_, err := chain.Transaction[sqlx.ExtContext](db, sqlxtx.Adapter{}).
		Chain(adjust("alice", -30), nil).
		Chain(adjust("bob", 30), nil).
		ChainResults(func(r *chain.Results) chain.Step[sqlx.ExtContext] {
			return balanceOf("bob")
		}, nil).
		Invoke(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var a account
	if err := db.GetContext(ctx, &a, "SELECT * FROM accounts WHERE owner = 'bob'"); err != nil {
		t.Fatal(err)
	}
	if a.Balance != 80 {
		t.Errorf("bob balance = %d, want 80", a.Balance)
	}
}

func TestTransfer_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	boom := errors.New("insufficient funds")

	_, err := chain.Transaction[sqlx.ExtContext](db, sqlxtx.Adapter{}).
		Chain(adjust("alice", -30), nil).
		Chain(func(ctx context.Context, h sqlx.ExtContext) (any, error) {
			return nil, boom
		}, nil).
		Invoke(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var a account
	if err := db.GetContext(ctx, &a, "SELECT * FROM accounts WHERE owner = 'alice'"); err != nil {
		t.Fatal(err)
	}
	if a.Balance != 100 {
		t.Errorf("alice balance = %d, want 100 after rollback", a.Balance)
	}
}

func TestTransaction_RejectsNonDBHandle(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	err = sqlxtx.Adapter{}.Transaction(ctx, tx, func(ctx context.Context, h sqlx.ExtContext) error {
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "must be *sqlx.DB") {
		t.Fatalf("expected handle type error, got %v", err)
	}
}
