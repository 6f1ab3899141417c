package store

import (
	"fmt"

	"fat-go/internal/config"
	"fat-go/internal/fat"
)

// NewRecordStoreFromConfig creates a RecordStore based on the store config type.
func NewRecordStoreFromConfig(cfg config.StoreConfig) (fat.RecordStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem store requires root to be set")
		}
		return NewFileSystemStore(cfg.Root)
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite store requires sqlite_path to be set")
		}
		return NewSQLiteStore(cfg.SQLitePath)
	case "badger":
		if cfg.BadgerDir == "" {
			return nil, fmt.Errorf("badger store requires badger_dir to be set")
		}
		return NewBadgerStore(cfg.BadgerDir)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		return NewS3StoreFromOptions(S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
