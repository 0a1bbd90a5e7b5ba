package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestJSON_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    string
		wantErr bool
	}{
		{"text", `{"a":1}`, `{"a":1}`, false},
		{"bytes", []byte(`"hola"`), `"hola"`, false},
		{"integer affinity", int64(20), `20`, false},
		{"real affinity", 1.5, `1.5`, false},
		{"bool", true, `true`, false},
		{"unsupported", time.Now(), ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j JSON
			err := j.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(j))
		})
	}

	var j JSON = MustJSON(1)
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestJSON_NumericSettingRoundTrip(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&SystemSetting{}))

	for key, value := range map[string]JSON{
		SettingJobsPerPage:     MustJSON(30),
		SettingMaintenanceMode: MustJSON(false),
		SettingPlatformName:    MustJSON("Empleos"),
	} {
		require.NoError(t, db.Create(&SystemSetting{Key: key, Value: value}).Error)

		var got SystemSetting
		require.NoError(t, db.Where("key = ?", key).First(&got).Error)
		assert.True(t, got.Value.Equal(value), "%s: got %s", key, got.Value)
	}

	var perPage int
	var got SystemSetting
	require.NoError(t, db.Where("key = ?", SettingJobsPerPage).First(&got).Error)
	require.NoError(t, got.Value.Decode(&perPage))
	assert.Equal(t, 30, perPage)
}

func TestJSON_ScansLegacyJSONBColumn(t *testing.T) {
	db := openSQLite(t)
	// NUMERIC affinity: the text '20' is stored as an integer.
	require.NoError(t, db.Exec(`CREATE TABLE legacy (id INTEGER PRIMARY KEY, value jsonb)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO legacy (value) VALUES (?), (?)`, "20", `"texto"`).Error)

	var rows []struct{ Value JSON }
	require.NoError(t, db.Raw(`SELECT value FROM legacy ORDER BY id`).Scan(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, `20`, string(rows[0].Value))
	assert.Equal(t, `"texto"`, string(rows[1].Value))
}
