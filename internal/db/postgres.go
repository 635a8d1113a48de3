package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultTopK = 5

// * PostgresDB is the document index: a documents table searched with Postgres full-text ranking
type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(url string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.New(
			"DB_CONNECTION_ERROR",
			"Failed to open database connection",
			"Could not initialize database connection",
			err,
			errors.LevelError,
		)
	}

	// * Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.New(
			"DB_CONNECTION_ERROR",
			"Failed to verify database connection",
			"Database ping failed",
			err,
			errors.LevelError,
		)
	}

	logger.Info("connected to document index database")
	return &PostgresDB{db: db}, nil
}

// Migrate applies the embedded schema migrations.
func (p *PostgresDB) Migrate() error {
	driver, err := postgres.WithInstance(p.db, &postgres.Config{})
	if err != nil {
		return errors.New(
			"DB_MIGRATION_ERROR",
			"Failed to create migration driver",
			"Could not initialize migration driver instance",
			err,
			errors.LevelError,
		)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.New(
			"DB_MIGRATION_ERROR",
			"Failed to load migrations",
			"Could not read embedded migration files",
			err,
			errors.LevelError,
		)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return errors.New(
			"DB_MIGRATION_ERROR",
			"Failed to create migration instance",
			"Could not create migration instance with database",
			err,
			errors.LevelError,
		)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.New(
			"DB_MIGRATION_ERROR",
			"Failed to run migrations",
			"Migration up operation failed",
			err,
			errors.LevelError,
		)
	}

	return nil
}

func (p *PostgresDB) Close() error {
	if err := p.db.Close(); err != nil {
		return errors.New(
			"DB_CONNECTION_ERROR",
			"Failed to close database connection",
			"Error while closing database connection",
			err,
			errors.LevelWarning,
		)
	}
	return nil
}

func (p *PostgresDB) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New(
			"DB_TRANSACTION_ERROR",
			"Failed to begin transaction",
			"Could not start database transaction",
			err,
			errors.LevelError,
		)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.New(
				"DB_TRANSACTION_ERROR",
				"Transaction failed and rollback encountered error",
				"Transaction error with additional rollback failure",
				fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr),
				errors.LevelError,
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.New(
			"DB_TRANSACTION_ERROR",
			"Failed to commit transaction",
			"Error while committing transaction",
			err,
			errors.LevelError,
		)
	}

	return nil
}

const insertDocumentQuery = `
	INSERT INTO documents (content, metadata, doc_type, username, source, content_hash)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (content_hash) DO NOTHING
`

const (
	deleteByTypeQuery = `DELETE FROM documents WHERE doc_type = ANY($1)`

	deleteByTypeAndUserQuery = `DELETE FROM documents WHERE doc_type = ANY($1) AND username = ANY($2)`
)

// Replace swaps the documents selected by scope for docs in one transaction, so a reload
// never leaves the previous run's documents searchable next to the new ones.
func (p *PostgresDB) Replace(ctx context.Context, scope models.DocumentScope, docs []models.Document) error {
	if len(scope.Types) == 0 {
		return errors.Parse("Invalid replace scope", "A replace must name at least one document type", nil)
	}

	var removed int64
	inserted := 0
	err := p.WithTransaction(ctx, func(tx *sql.Tx) error {
		n, err := p.deleteScopeTx(ctx, tx, scope)
		if err != nil {
			return err
		}
		removed = n

		for _, doc := range docs {
			n, err := p.insertDocumentTx(ctx, tx, doc)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Indexed %d documents (%d submitted), removed %d previous %s documents", inserted, len(docs), removed, strings.Join(scope.Types, "/"))
	return nil
}

func (p *PostgresDB) deleteScopeTx(ctx context.Context, tx *sql.Tx, scope models.DocumentScope) (int64, error) {
	var res sql.Result
	var err error
	if len(scope.Usernames) == 0 {
		res, err = tx.ExecContext(ctx, deleteByTypeQuery, pq.Array(scope.Types))
	} else {
		res, err = tx.ExecContext(ctx, deleteByTypeAndUserQuery, pq.Array(scope.Types), pq.Array(scope.Usernames))
	}
	if err != nil {
		return 0, errors.New(
			"DB_DOCUMENT_ERROR",
			"Failed to remove previous documents",
			fmt.Sprintf("Could not delete %s documents", strings.Join(scope.Types, "/")),
			err,
			errors.LevelError,
		)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

func (p *PostgresDB) insertDocumentTx(ctx context.Context, tx *sql.Tx, doc models.Document) (int, error) {
	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, insertDocumentQuery,
		doc.Content, metadata, doc.Type(), doc.Username(), doc.Source(), ContentHash(doc),
	)
	if err != nil {
		return 0, errors.New(
			"DB_DOCUMENT_ERROR",
			"Failed to insert document in transaction",
			fmt.Sprintf("Could not insert %s document from '%s'", doc.Type(), doc.Source()),
			err,
			errors.LevelError,
		)
	}

	// * Zero rows affected means the content hash was already indexed
	n, _ := res.RowsAffected()
	return int(n), nil
}

const searchQuery = `
	SELECT d.content, d.metadata
	FROM documents d, plainto_tsquery('english', $1) q
	WHERE d.search_vector @@ q
	ORDER BY ts_rank(d.search_vector, q) DESC, d.id ASC
	LIMIT $2
`

// Search returns up to topK documents ranked by full-text relevance to query.
func (p *PostgresDB) Search(ctx context.Context, query string, topK int) ([]models.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Document{}, nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	rows, err := p.db.QueryContext(ctx, searchQuery, query, topK)
	if err != nil {
		return nil, errors.New(
			"DB_SEARCH_ERROR",
			"Failed to search documents",
			fmt.Sprintf("Could not run full-text search for '%s'", query),
			err,
			errors.LevelError,
		)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var content string
		var raw []byte
		if err := rows.Scan(&content, &raw); err != nil {
			return nil, errors.New(
				"DB_SEARCH_ERROR",
				"Failed to scan document",
				"Error while scanning document row",
				err,
				errors.LevelError,
			)
		}

		metadata := map[string]string{}
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, errors.Parse("Failed to decode document metadata", "Stored metadata is not a JSON object", err)
		}
		docs = append(docs, models.NewDocument(content, metadata))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.New(
			"DB_SEARCH_ERROR",
			"Failed to process search results",
			"Error while processing document rows",
			err,
			errors.LevelError,
		)
	}

	return docs, nil
}

// Stats summarises what is currently indexed.
func (p *PostgresDB) Stats(ctx context.Context) (models.CorpusStats, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT NULLIF(username, '')), MAX(created_at)
		FROM documents
	`)

	var stats models.CorpusStats
	var last sql.NullTime
	if err := row.Scan(&stats.TotalDocuments, &stats.TeamMembers, &last); err != nil {
		return models.CorpusStats{}, errors.New(
			"DB_STATS_ERROR",
			"Failed to read corpus statistics",
			"Could not aggregate the documents table",
			err,
			errors.LevelError,
		)
	}

	if last.Valid {
		stats.LastUpdated = &last.Time
	}
	return stats, nil
}

// ContentHash identifies a document by its content and metadata.
func ContentHash(doc models.Document) string {
	metadata, _ := json.Marshal(doc.Metadata)

	h := sha256.New()
	h.Write([]byte(doc.Content))
	h.Write([]byte{0})
	h.Write(metadata)
	return hex.EncodeToString(h.Sum(nil))
}

func encodeMetadata(metadata map[string]string) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", errors.Parse("Failed to encode document metadata", "", err)
	}
	return string(raw), nil
}
