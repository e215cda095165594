package storage

import (
	"habitlog/config"
	"habitlog/storage/database"
	"habitlog/storage/redis"
)

// Init brings up the storage layer. Redis is always needed for rate
// limiting; the database only when it is the configured log store backend.
func Init() error {
	if config.Cfg.LogStoreBackend == config.BackendPostgres {
		if err := database.Init(); err != nil {
			return err
		}
	}

	if err := redis.Init(); err != nil {
		return err
	}

	return nil
}
