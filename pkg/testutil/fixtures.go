package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed values for deterministic testing
var (
	TestApplicationID = uuid.MustParse("00000000-0000-0000-0000-000000000001").String()
	TestCaseID        = uuid.MustParse("00000000-0000-0000-0000-000000000002").String()
	TestNow           = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
)
