// Package testutil provides shared fixtures for package tests: an isolated
// in-memory SQLite schema, a miniredis-backed cache and entity factories.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"empleos/internal/cache"
	"empleos/internal/database"
	"empleos/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every user created by CreateUser.
const Password = "Secreto123"

var (
	dbSeq        atomic.Int64
	passwordHash []byte
)

func init() {
	var err error
	passwordHash, err = bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
}

// NewDB returns a migrated SQLite database private to the calling test.
// It uses a single connection so transactions serialize like row locks.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:empleos_%d_%d?mode=memory&cache=shared&_foreign_keys=1", time.Now().UnixNano(), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// NewRedis starts miniredis and installs it as the package cache client.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr, rdb
}

// CreateUser inserts an active user of userType with password Password.
func CreateUser(t *testing.T, db *gorm.DB, userType models.UserType, email string) *models.User {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		Email:           email,
		Password:        string(passwordHash),
		UserType:        userType,
		AccountStatus:   models.AccountActive,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCompany inserts a company owned by a new company user.
func CreateCompany(t *testing.T, db *gorm.DB, status models.ModerationStatus) *models.Company {
	t.Helper()

	n := dbSeq.Add(1)
	owner := CreateUser(t, db, models.UserTypeCompany, fmt.Sprintf("empresa%d@example.cl", n))
	company := &models.Company{
		UserID:       owner.ID,
		User:         owner,
		BusinessName: fmt.Sprintf("Empresa %d", n),
		RUT:          fmt.Sprintf("%08d-K", 76000000+n),
		Region:       "Metropolitana",
		City:         "Santiago",
		Status:       status,
	}
	require.NoError(t, db.Omit("User").Create(company).Error)
	return company
}

// CreateOMIL inserts an OMIL organization owned by a new omil user.
func CreateOMIL(t *testing.T, db *gorm.DB, status models.ModerationStatus) *models.OMILOrganization {
	t.Helper()

	n := dbSeq.Add(1)
	owner := CreateUser(t, db, models.UserTypeOMIL, fmt.Sprintf("omil%d@example.cl", n))
	org := &models.OMILOrganization{
		UserID:       owner.ID,
		User:         owner,
		Name:         fmt.Sprintf("OMIL %d", n),
		Municipality: "Concepción",
		Region:       "Biobío",
		Status:       status,
	}
	require.NoError(t, db.Omit("User").Create(org).Error)
	return org
}

// CreateJob inserts a job for company in status.
func CreateJob(t *testing.T, db *gorm.DB, company *models.Company, status models.ModerationStatus) *models.Job {
	t.Helper()

	job := &models.Job{
		CompanyID:   company.ID,
		Title:       "Analista de datos",
		Description: fmt.Sprintf("Análisis de datos, vacante %d", dbSeq.Add(1)),
		Region:      company.Region,
		JobType:     models.JobTypeFullTime,
		WorkMode:    models.WorkModeHybrid,
		Vacancies:   1,
		Status:      status,
	}
	require.NoError(t, db.Create(job).Error)
	job.Company = company
	return job
}
