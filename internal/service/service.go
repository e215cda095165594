package service

import (
	"sync"

	"habitlog/internal/cache"
	"habitlog/internal/logstore"
	"habitlog/internal/model"
)

var (
	logService    *LogService
	seriesService *SeriesService
	fieldService  *FieldService
	initOnce      sync.Once
)

// Init wires the service layer once at startup. The store and cache are
// constructed and owned by main; services only borrow them, so the cache
// keeps an explicit lifecycle instead of living as package state.
func Init(store logstore.LogStore, qc *cache.QueryCache, mapping *model.FieldMapping) {
	initOnce.Do(func() {
		logService = &LogService{store: store, cache: qc, mapping: mapping}
		seriesService = &SeriesService{logs: logService, mapping: mapping}
		fieldService = &FieldService{mapping: mapping}
	})
}

func Log() *LogService {
	if logService == nil {
		panic("service layer not initialized, call service.Init() first")
	}
	return logService
}

func Series() *SeriesService {
	if seriesService == nil {
		panic("service layer not initialized, call service.Init() first")
	}
	return seriesService
}

func Field() *FieldService {
	if fieldService == nil {
		panic("service layer not initialized, call service.Init() first")
	}
	return fieldService
}
