// Package store materializes entity collections from SQL tables through gorm.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/etag"
	"github.com/nlstn/go-odata-engine/internal/observability"
)

// Store loads entity sets from a gorm database.
type Store struct {
	db      *gorm.DB
	obs     *observability.Config
	logger  *slog.Logger
	baseURI string
}

// Option configures a Store.
type Option func(*Store)

// WithObservability traces loads and, when enabled on cfg, individual queries.
func WithObservability(cfg *observability.Config) Option {
	return func(s *Store) {
		s.obs = cfg
	}
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseURI sets the service root used to build entity ids.
func WithBaseURI(uri string) Option {
	return func(s *Store) {
		s.baseURI = strings.TrimRight(uri, "/")
	}
}

// Open connects to a sqlite or postgres database.
func Open(dialect, dsn string, opts ...Option) (*Store, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database dialect: %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	// every connection to an in-memory sqlite database sees its own database
	if dialect == "sqlite" && strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db, opts...)
}

// New wraps an existing gorm database and registers the observability callbacks.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := observability.RegisterGORMCallbacks(db, s.obs); err != nil {
		return nil, fmt.Errorf("failed to register tracing callbacks: %w", err)
	}
	if s.obs.ServerTimingEnabled() {
		if err := observability.RegisterServerTimingCallbacks(db); err != nil {
			return nil, fmt.Errorf("failed to register server timing callbacks: %w", err)
		}
	}
	return s, nil
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Source describes how an entity set is stored.
type Source struct {
	EntitySet string
	Table     string
	Type      *edm.EntityType
	// Columns maps property names to column names; unmapped properties use
	// their own name.
	Columns map[string]string
}

func (src Source) column(property string) string {
	if c, ok := src.Columns[property]; ok && c != "" {
		return c
	}
	return property
}

// Load reads every row of the source table, ordered by key, as entities of the
// source type. Only primitive properties are loaded.
func (s *Store) Load(ctx context.Context, src Source) (*data.EntityCollection, error) {
	if src.Type == nil {
		return nil, fmt.Errorf("entity set %q has no entity type", src.EntitySet)
	}
	table := src.Table
	if table == "" {
		table = strings.ToLower(src.EntitySet)
	}

	ctx, span := s.obs.Tracer().StartLoad(ctx, src.EntitySet, table)
	defer span.End()

	props := make([]edm.PropertyDef, 0, len(src.Type.Properties))
	columns := make([]string, 0, len(src.Type.Properties))
	for _, p := range src.Type.Properties {
		if p.Type == edm.Unknown || p.Collection {
			continue
		}
		props = append(props, p)
		columns = append(columns, src.column(p.Name))
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("entity set %q declares no primitive properties", src.EntitySet)
	}

	tx := s.db.WithContext(ctx).Table(table).Select(columns)
	for _, key := range src.Type.Key {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: src.column(key)}})
	}

	start := time.Now()
	rows, err := tx.Rows()
	if err != nil {
		s.obs.Tracer().RecordError(span, err)
		return nil, fmt.Errorf("failed to query table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	coll, err := s.scan(rows, src, props)
	if err != nil {
		s.obs.Tracer().RecordError(span, err)
		return nil, err
	}

	s.obs.Metrics().RecordResultCount(ctx, src.EntitySet, coll.Len())
	s.obs.Tracer().EndStage(span, coll.Len(), false)
	observability.LoggerWithTrace(ctx, s.logger).Debug("loaded entity set",
		slog.String(observability.LogFieldEntitySet, src.EntitySet),
		slog.String("table", table),
		slog.Int(observability.LogFieldResultCount, coll.Len()),
		slog.Int64(observability.LogFieldDuration, time.Since(start).Milliseconds()),
	)
	return coll, nil
}

func (s *Store) scan(rows *sql.Rows, src Source, props []edm.PropertyDef) (*data.EntityCollection, error) {
	coll := data.NewEntityCollection()
	typeName := src.Type.FullName()

	for rows.Next() {
		raw := make([]interface{}, len(props))
		dest := make([]interface{}, len(props))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %q: %w", src.EntitySet, err)
		}

		entity := data.NewEntity(typeName)
		for i, p := range props {
			value, err := primitive(p.Type, raw[i])
			if err != nil {
				return nil, fmt.Errorf("entity set %q property %q: %w", src.EntitySet, p.Name, err)
			}
			entity.AddProperty(data.NewProperty(p.Name, value))
		}

		id, err := s.entityID(src, entity)
		if err != nil {
			return nil, err
		}
		entity.ID = id
		entity.ETag = etag.Generate(entity)
		coll.Add(entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", src.EntitySet, err)
	}
	return coll, nil
}

func primitive(kind edm.PrimitiveKind, raw interface{}) (*data.PrimitiveValue, error) {
	if raw == nil {
		return data.NewNullPrimitive(kind), nil
	}
	// drivers hand back text columns as bytes
	if b, ok := raw.([]byte); ok && kind != edm.Binary {
		raw = string(b)
	}
	return data.NewPrimitive(kind, raw)
}

// entityID builds "<base>/<set>(<key>)" using OData key literal syntax. It
// returns nil when the type has no key or no base URI is configured.
func (s *Store) entityID(src Source, entity *data.Entity) (*url.URL, error) {
	if s.baseURI == "" || len(src.Type.Key) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, len(src.Type.Key))
	for _, key := range src.Type.Key {
		prop, ok := entity.Property(key)
		if !ok || prop.IsNull() {
			return nil, fmt.Errorf("entity set %q: key property %q is null", src.EntitySet, key)
		}
		literal := keyLiteral(prop.PrimitiveValue())
		if len(src.Type.Key) == 1 {
			parts = append(parts, literal)
		} else {
			parts = append(parts, key+"="+literal)
		}
	}

	raw := fmt.Sprintf("%s/%s(%s)", s.baseURI, src.EntitySet, strings.Join(parts, ","))
	id, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid entity id %q: %w", raw, err)
	}
	return id, nil
}

func keyLiteral(v *data.PrimitiveValue) string {
	text := edm.FormatValue(v.Type, v.Raw())
	if v.Type == edm.String {
		return "'" + strings.ReplaceAll(text, "'", "''") + "'"
	}
	return text
}
