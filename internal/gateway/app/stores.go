package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	docscache "codeassist/internal/cache/docs"
	"codeassist/internal/gateway/config"
	"codeassist/internal/gateway/repository/analysis"
	"codeassist/internal/gateway/repository/docs"
	"codeassist/internal/gateway/repository/usage"
)

type gatewayStores struct {
	analyses analysis.Store
	usage    usage.Store
	docs     docs.Store
	db       *sql.DB
}

func (s *gatewayStores) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		return initPostgresStores(dsn, cfg)
	}
	return initInMemoryStores(cfg)
}

func initPostgresStores(dsn string, cfg *config.Config) (*gatewayStores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach db: %w", err)
	}

	analyses, err := analysis.NewPostgresStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init analysis store: %w", err)
	}
	docStore, err := chooseDocsStore(cfg, docs.NewPostgresStore(db), "postgres")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("stores: postgres")
	return &gatewayStores{
		analyses: analyses,
		usage:    usage.NewPostgresStore(db),
		docs:     docStore,
		db:       db,
	}, nil
}

func initInMemoryStores(cfg *config.Config) (*gatewayStores, error) {
	docStore, err := chooseDocsStore(cfg, docs.NewMemoryStore(), "in-memory")
	if err != nil {
		return nil, err
	}
	log.Printf("stores: in-memory (DATABASE_URL not set)")
	return &gatewayStores{
		analyses: analysis.NewMemoryStore(),
		usage:    usage.NewMemoryStore(),
		docs:     docStore,
	}, nil
}

// chooseDocsStore prefers S3 when fully configured. Remote origins get a
// read-through cache; the in-memory fallback is used as is.
func chooseDocsStore(cfg *config.Config, fallback docs.Store, fallbackLabel string) (docs.Store, error) {
	s3Cfg := docs.S3Config{
		Endpoint:  cfg.Docs.Endpoint,
		Region:    cfg.Docs.Region,
		AccessKey: cfg.Docs.AccessKey,
		SecretKey: cfg.Docs.SecretKey,
		Bucket:    cfg.Docs.Bucket,
		UseSSL:    cfg.Docs.UseSSL,
	}
	if s3Cfg.Complete() {
		s3Store, err := docs.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize docs s3 store: %w", err)
		}
		log.Printf("docs store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
		return docscache.NewCachedStore(s3Store, docscache.DefaultCacheConfig()), nil
	}
	if strings.TrimSpace(s3Cfg.Endpoint) != "" {
		log.Printf("docs store: using %s fallback (s3 config incomplete)", fallbackLabel)
	}
	if _, inMemory := fallback.(*docs.MemoryStore); inMemory {
		return fallback, nil
	}
	return docscache.NewCachedStore(fallback, docscache.DefaultCacheConfig()), nil
}
