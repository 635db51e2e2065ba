package services

import (
	"os"
	"testing"

	"github.com/shgbook/shgbook-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}
