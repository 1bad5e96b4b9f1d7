package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/falconilham/gym-nexus-sub000/internal/database"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

var seq atomic.Int64

func next() int64 { return seq.Add(1) }

// openTestDB connects to TEST_DATABASE_URL, migrates and empties every table.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	tables := make([]string, 0, len(models.All()))
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(m))
		tables = append(tables, stmt.Schema.Table)
	}
	require.NoError(t, db.Exec("TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE").Error)
	return db
}

// seed inserts the fixture graph parents first.
func seed(t *testing.T, db *gorm.DB, ms ...fixify.IModel) {
	t.Helper()
	fixify.New(t, ms...).Iterate(func(v any) error {
		return db.Create(v).Error
	})
}

func Gym() *fixify.Model[models.Gym] {
	n := next()
	return fixify.NewModel(&models.Gym{
		Name:     fmt.Sprintf("Gym %d", n),
		Slug:     fmt.Sprintf("gym-%d", n),
		IsActive: true,
	})
}

func User() *fixify.Model[models.User] {
	n := next()
	return fixify.NewModel(&models.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
		FirstName:    fmt.Sprintf("User%d", n),
	})
}

func Member(status string, expiry time.Time) *fixify.Model[models.Member] {
	return fixify.NewModel(&models.Member{
		MembershipType: models.MembershipMonthly,
		Status:         status,
		StartDate:      expiry.AddDate(0, -1, 0),
		ExpiryDate:     expiry,
		QRCode:         uuid.NewString(),
	},
		fixify.ConnectorFunc(func(_ testing.TB, m *models.Member, u *models.User) {
			m.UserID = u.ID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, m *models.Member, g *models.Gym) {
			m.GymID = g.ID
		}),
	)
}

func CheckIn(at time.Time, out *time.Time) *fixify.Model[models.CheckIn] {
	return fixify.NewModel(&models.CheckIn{
		CheckInTime:  at,
		CheckOutTime: out,
		Status:       models.CheckInGranted,
		Method:       models.CheckInMethodQR,
	},
		fixify.ConnectorFunc(func(_ testing.TB, c *models.CheckIn, m *models.Member) {
			c.MemberID = m.ID
			c.GymID = m.GymID
		}),
	)
}

func Class(startsAt time.Time, capacity int) *fixify.Model[models.Class] {
	return fixify.NewModel(&models.Class{
		Name:     fmt.Sprintf("Class %d", next()),
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(time.Hour),
		Capacity: capacity,
		Status:   models.ClassStatusScheduled,
	},
		fixify.ConnectorFunc(func(_ testing.TB, c *models.Class, g *models.Gym) {
			c.GymID = g.ID
		}),
	)
}

func Booking(status string) *fixify.Model[models.Booking] {
	return fixify.NewModel(&models.Booking{Status: status},
		fixify.ConnectorFunc(func(_ testing.TB, b *models.Booking, c *models.Class) {
			b.ClassID = c.ID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, b *models.Booking, m *models.Member) {
			b.MemberID = m.ID
		}),
	)
}

var ctx = context.Background()
