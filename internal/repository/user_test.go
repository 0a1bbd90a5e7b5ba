package repository

import (
	"context"
	"regexp"
	"testing"

	"empleos/internal/models"
	"empleos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedUser *models.User
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "email", "user_type", "account_status"}).
					AddRow(1, "ana@example.cl", "job_seeker", "active")
				mock.ExpectQuery(query).WithArgs(1, 1).WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Email: "ana@example.cl", UserType: models.UserTypeJobSeeker, AccountStatus: models.AccountActive},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(99, 1).WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			user, err := repo.GetByID(ctx, tt.userID)
			if tt.expectedCode != "" {
				assert.True(t, models.IsCode(err, tt.expectedCode), "got %v", err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser.Email, user.Email)
				assert.Equal(t, tt.expectedUser.UserType, user.UserType)
				assert.Equal(t, tt.expectedUser.AccountStatus, user.AccountStatus)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmailMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByEmail(context.Background(), "nadie@example.cl")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_CreateCompanyAccount(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	newAccount := func(email, rut string) (*models.User, *models.Company) {
		return &models.User{Email: email, Password: "x", UserType: models.UserTypeCompany, AccountStatus: models.AccountActive},
			&models.Company{BusinessName: "Comercial Sur", RUT: rut, Status: models.StatusPendingApproval}
	}

	user, company := newAccount("rrhh@sur.cl", "76086428-5")
	require.NoError(t, repo.CreateCompanyAccount(ctx, user, company))
	assert.NotZero(t, user.ID)
	assert.Equal(t, user.ID, company.UserID)

	t.Run("duplicate RUT rolls back the user", func(t *testing.T) {
		user, company := newAccount("otra@sur.cl", "76086428-5")
		err := repo.CreateCompanyAccount(ctx, user, company)
		require.Error(t, err)
		assert.True(t, models.IsCode(err, models.CodeConflict))
		assert.Equal(t, "RUT already registered", err.(*models.AppError).Message)

		existing, err := repo.GetByEmail(ctx, "otra@sur.cl")
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("duplicate email", func(t *testing.T) {
		user, company := newAccount("rrhh@sur.cl", "77777777-7")
		err := repo.CreateCompanyAccount(ctx, user, company)
		require.Error(t, err)
		assert.Equal(t, "Email already registered", err.(*models.AppError).Message)
	})
}

func TestUserRepository_CreateJobSeeker(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Email: "ana@example.cl", Password: "x", UserType: models.UserTypeJobSeeker, AccountStatus: models.AccountPendingVerification}
	profile := &models.JobSeekerProfile{FirstName: "Ana", LastName: "Rojas"}
	require.NoError(t, repo.CreateJobSeeker(context.Background(), user, profile))

	var stored models.JobSeekerProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, "Ana", stored.FirstName)
}

func TestUserRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, models.UserTypeJobSeeker, "ana@example.cl")
	testutil.CreateUser(t, db, models.UserTypeJobSeeker, "luis@example.cl")
	testutil.CreateUser(t, db, models.UserTypeCompany, "rrhh_100@empresa.cl")
	suspended := testutil.CreateUser(t, db, models.UserTypeJobSeeker, "pedro@example.cl")
	require.NoError(t, db.Model(suspended).Update("account_status", models.AccountSuspended).Error)

	tests := []struct {
		name   string
		filter UserFilter
		total  int64
		page   int
	}{
		{"all", UserFilter{}, 4, 4},
		{"by type", UserFilter{UserType: models.UserTypeJobSeeker}, 3, 3},
		{"by status", UserFilter{AccountStatus: models.AccountSuspended}, 1, 1},
		{"search", UserFilter{Search: "LUIS"}, 1, 1},
		{"underscore is literal", UserFilter{Search: "_100"}, 1, 1},
		{"page smaller than total", UserFilter{Limit: 2}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Len(t, users, tt.page)
		})
	}
}
