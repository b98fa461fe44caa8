package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	constant "github.com/cosealhq/coseal/internal/constant"
	"github.com/cosealhq/coseal/pkg/coseal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// sqlRecorder captures what gorm builds in dry run mode so query construction
// can be asserted without a database. Struct-based Where conditions silently
// drop zero-valued fields, which these tests guard against.
type sqlRecorder struct {
	queries  []string
	vars     [][]interface{}
	preloads [][]string
	// When set, every query fails with ErrRecordNotFound so fallthrough
	// lookups can be observed.
	notFound bool
}

func newDryRunRepository(t *testing.T) (*Repository, *sqlRecorder) {
	t.Helper()

	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{
		DryRun: true,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open dry run db: %v", err)
	}

	rec := &sqlRecorder{}
	err = db.Callback().Query().Register("record_sql", func(tx *gorm.DB) {
		rec.queries = append(rec.queries, tx.Statement.SQL.String())
		rec.vars = append(rec.vars, tx.Statement.Vars)

		var preloads []string
		for name := range tx.Statement.Preloads {
			preloads = append(preloads, name)
		}
		rec.preloads = append(rec.preloads, preloads)

		if rec.notFound {
			tx.AddError(gorm.ErrRecordNotFound)
		}
	})
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}

	return NewRepository(db, zap.NewNop().Sugar(), nil, nil), rec
}

func TestGetActiveByDocumentIdFiltersOnStatus(t *testing.T) {
	repo, rec := newDryRunRepository(t)

	if _, err := repo.SigningRequest.GetActiveByDocumentId(context.Background(), nil, "doc-1"); err != nil {
		t.Fatalf("GetActiveByDocumentId() error = %v", err)
	}
	if len(rec.queries) == 0 {
		t.Fatal("Expected a query to be built")
	}

	// RequestStatusActive is the enum zero value. A struct condition drops
	// it, matching terminal requests too and blocking any later request for
	// the document.
	sql := rec.queries[0]
	if !strings.Contains(sql, "document_id = ? AND status = ?") {
		t.Errorf("Query does not filter on status: %s", sql)
	}

	bound := false
	for _, v := range rec.vars[0] {
		if v == constant.RequestStatusActive {
			bound = true
		}
	}
	if !bound {
		t.Errorf("Active status not bound as a query value, vars: %v", rec.vars[0])
	}
}

func TestGetByEitherHashOriginalHashHit(t *testing.T) {
	repo, rec := newDryRunRepository(t)

	if _, err := repo.Document.GetByEitherHash(context.Background(), nil, coseal.Digest("ab12")); err != nil {
		t.Fatalf("GetByEitherHash() error = %v", err)
	}

	if len(rec.queries) != 1 {
		t.Fatalf("Expected a single query on an original hash hit, got %d", len(rec.queries))
	}
	if !strings.Contains(rec.queries[0], "original_hash") {
		t.Errorf("First lookup must target original_hash: %s", rec.queries[0])
	}
}

func TestGetByEitherHashFinalHashFallthrough(t *testing.T) {
	repo, rec := newDryRunRepository(t)
	rec.notFound = true

	_, err := repo.Document.GetByEitherHash(context.Background(), nil, coseal.Digest("ab12"))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound when neither hash matches, got %v", err)
	}

	if len(rec.queries) != 2 {
		t.Fatalf("Expected a final_hash fallthrough query, got %d queries", len(rec.queries))
	}
	if !strings.Contains(rec.queries[0], "original_hash") {
		t.Errorf("First lookup must target original_hash: %s", rec.queries[0])
	}
	if !strings.Contains(rec.queries[1], "final_hash = ?") {
		t.Errorf("Second lookup must target final_hash: %s", rec.queries[1])
	}
}

func TestGetByIdPreloadsDocumentAndSlots(t *testing.T) {
	repo, rec := newDryRunRepository(t)

	if _, err := repo.SigningRequest.GetById(context.Background(), nil, "req-1"); err != nil {
		t.Fatalf("GetById() error = %v", err)
	}
	if len(rec.preloads) == 0 {
		t.Fatal("Expected a query to be built")
	}

	// Mail rendering reads req.Document off the loaded request.
	got := map[string]bool{}
	for _, name := range rec.preloads[0] {
		got[name] = true
	}
	for _, want := range []string{"Document", "Slots"} {
		if !got[want] {
			t.Errorf("Expected %q to be preloaded, got %v", want, rec.preloads[0])
		}
	}
}
