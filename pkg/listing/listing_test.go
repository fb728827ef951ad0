package listing

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type listingRow struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title     string          `gorm:"column:title"`
	Color     string          `gorm:"column:color"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&listingRow{}))
	return conn
}

func seedRows(t *testing.T, conn *gorm.DB) {
	t.Helper()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := []listingRow{
		{ID: uuid.New(), Title: "Oak Table", Color: "brown", Price: decimal.NewFromInt(300), CreatedAt: base},
		{ID: uuid.New(), Title: "Oak Chair", Color: "brown", Price: decimal.NewFromInt(120), CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), Title: "Steel Chair", Color: "grey", Price: decimal.NewFromInt(80), CreatedAt: base.Add(2 * time.Hour)},
		{ID: uuid.New(), Title: "Pine Shelf", Color: "brown", Price: decimal.NewFromInt(45), CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	conn := newTestDB(t)
	seedRows(t, conn)

	var rows []listingRow
	meta, err := New(conn.Model(&listingRow{}), Params{SearchTerm: "OAK"}).
		Search("title").
		Sort().
		Find(&rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), meta.Total)
}

func TestFilterEqualityAndPriceRange(t *testing.T) {
	conn := newTestDB(t)
	seedRows(t, conn)

	min := decimal.NewFromInt(100)
	var rows []listingRow
	_, err := New(conn.Model(&listingRow{}), Params{
		Filters:  map[string]any{"color": "brown"},
		MinPrice: &min,
	}).Filter().Sort().Find(&rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, "brown", row.Color)
		require.True(t, row.Price.GreaterThanOrEqual(min))
	}
}

func TestFilterSkipsUnsafeFieldNames(t *testing.T) {
	conn := newTestDB(t)
	seedRows(t, conn)

	// a hostile filter key is dropped instead of reaching SQL
	var rows []listingRow
	_, err := New(conn.Model(&listingRow{}), Params{
		Filters: map[string]any{"color; DROP TABLE listing_rows": "x"},
	}).Filter().Sort().Find(&rows)
	require.NoError(t, err)
	require.Len(t, rows, 4)
}

func TestSortDescendingPrefix(t *testing.T) {
	conn := newTestDB(t)
	seedRows(t, conn)

	var rows []listingRow
	_, err := New(conn.Model(&listingRow{}), Params{Sort: "-price"}).
		Sort().
		Find(&rows)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "Oak Table", rows[0].Title)
	require.Equal(t, "Pine Shelf", rows[3].Title)
}

func TestSortFallsBackToNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	seedRows(t, conn)

	var rows []listingRow
	_, err := New(conn.Model(&listingRow{}), Params{Sort: "1; DELETE"}).
		Sort().
		Find(&rows)
	require.NoError(t, err)
	require.Equal(t, "Pine Shelf", rows[0].Title)
}

func TestPaginationMeta(t *testing.T) {
	conn := newTestDB(t)
	seedRows(t, conn)

	var rows []listingRow
	meta, err := New(conn.Model(&listingRow{}), Params{Page: 2, Limit: 3}).
		Sort().
		Find(&rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, 3, meta.Limit)
	require.Equal(t, int64(4), meta.Total)
	require.Equal(t, int64(2), meta.TotalPages)
}

func TestParamsFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("searchTerm", "chair")
	values.Set("sort", "-price")
	values.Set("page", "3")
	values.Set("limit", "25")
	values.Set("minPrice", "10.50")
	values.Set("maxPrice", "oops")
	values.Set("color", "brown")
	values.Set("owner", "someone")

	params := ParamsFromQuery(values, "color")
	require.Equal(t, "chair", params.SearchTerm)
	require.Equal(t, "-price", params.Sort)
	require.Equal(t, 3, params.Page)
	require.Equal(t, 25, params.Limit)
	require.NotNil(t, params.MinPrice)
	require.True(t, params.MinPrice.Equal(decimal.RequireFromString("10.50")))
	require.Nil(t, params.MaxPrice)
	require.Equal(t, map[string]any{"color": "brown"}, params.Filters)
}

func TestNormalizedClampsLimits(t *testing.T) {
	params := Params{Page: -1, Limit: 1000}.normalized()
	require.Equal(t, 1, params.Page)
	require.Equal(t, MaxLimit, params.Limit)

	params = Params{}.normalized()
	require.Equal(t, DefaultLimit, params.Limit)
	require.NotNil(t, params.Filters)
}
