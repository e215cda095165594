package logstore

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"habitlog/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}
