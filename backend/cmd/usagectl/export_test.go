package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usagereport/backend/config"
	"usagereport/backend/testutil"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "usage.db")
	testutil.Seed(t, testutil.OpenFile(t, dbPath))

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SITE_URL", "https://lms.example.org")
	t.Setenv("LOG_LEVEL", "error")

	run := func(args ...string) string {
		t.Helper()
		out := filepath.Join(dir, "report.out")
		rootCmd.SetArgs(append([]string{"export", "--course", "1",
			"--start", "2024-03-01", "--end", "2024-03-03", "--out", out}, args...))
		require.NoError(t, rootCmd.Execute())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, "Activity,01.03,02.03,03.03\nSlides,0,6,0\nQuiz 1,5,0,5\n", run("--format", "csv"))

	perUser := run("--format", "csv", "--deanonymize", "--sections", "10")
	assert.Equal(t, "Activity,Person,01.03,02.03,03.03\nSlides,Tina Teach,0,5,0\nSlides,Alice Smith,0,1,0\n", perUser)

	js := run("--format", "json", "--deanonymize=false", "--sections", "", "--gradecats", "1")
	assert.True(t, strings.HasPrefix(js, "{\n"))
	assert.Contains(t, js, `"course_id": 1`)
	assert.NotContains(t, js, `"context_id": 21`)
}

func TestExportFilter_RejectsBadIDs(t *testing.T) {
	saved := exportOpts
	t.Cleanup(func() { exportOpts = saved })

	cfg = &config.Config{Timezone: "UTC", ReportDefaultDays: 7, ReportMaxDays: 31}
	exportOpts.course = 1
	exportOpts.start, exportOpts.end = "", ""
	exportOpts.roles = "x"

	_, err := exportFilter(time.Now())
	assert.ErrorContains(t, err, "--roles")

	exportOpts.course = 0
	_, err = exportFilter(time.Now())
	assert.ErrorContains(t, err, "--course")
}
