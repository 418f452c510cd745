package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gota/gota/dataframe"
	_ "github.com/mattn/go-sqlite3"

	"bikerental-server/internal/migrate"
	"bikerental-server/internal/modules/rentals/types"
)

const dayCSV = `instant,date,season,year,month,weather_condition,temperature,feels_temperature,humidity,casual,registered,count
1,2024-01-01,Spring,2024,1,Clear,0.34,0.36,0.80,3,7,10
2,2024-01-02 00:00:00,Spring,2024,1,Mist,0.36,0.35,0.69,5,15,20
`

const hourCSV = `date,hour,weather_condition,windspeed,count
2024-01-01,0,Clear,0.1,4
2024-01-01,1,Light_precipitation,0.3,6
2024-01-02,0,Clear,0.5,20
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestDecodeCSV_day(t *testing.T) {
	df, err := decodeCSV(strings.NewReader(dayCSV), dayColumns)
	if err != nil {
		t.Fatalf("decodeCSV() error = %v", err)
	}
	wantNames := []string{"date", "season", "weather_condition", "temperature", "feels_temperature", "casual", "registered", "count"}
	if got := df.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names() = %v; want %v", got, wantNames)
	}
	if got := df.Col("date").Records(); !reflect.DeepEqual(got, []string{"2024-01-01", "2024-01-02"}) {
		t.Errorf("dates = %v; want normalized YYYY-MM-DD", got)
	}
	counts, err := df.Col("count").Int()
	if err != nil {
		t.Fatalf("count.Int(): %v", err)
	}
	if !reflect.DeepEqual(counts, []int{10, 20}) {
		t.Errorf("counts = %v; want [10 20]", counts)
	}
}

func TestDecodeCSV_hourWithoutHourColumn(t *testing.T) {
	body := "date,weather_condition,windspeed,count\n2024-01-01,Clear,0.1,4\n"
	df, err := decodeCSV(strings.NewReader(body), hourColumns)
	if err != nil {
		t.Fatalf("decodeCSV() error = %v", err)
	}
	if hasColumn(df, "hour") {
		t.Error("hour column present; want it skipped when absent from input")
	}
	if df.Nrow() != 1 {
		t.Errorf("Nrow() = %d; want 1", df.Nrow())
	}
}

func TestDecodeCSV_errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing required column",
			body: "date,weather_condition,count\n2024-01-01,Clear,4\n",
			want: `missing column "windspeed"`,
		},
		{
			name: "bad date",
			body: "date,weather_condition,windspeed,count\n01/02/2024,Clear,0.1,4\n",
			want: "invalid date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCSV(strings.NewReader(tt.body), hourColumns)
			if err == nil {
				t.Fatal("decodeCSV() error = nil; want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q; want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCSVSource_missingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), "")
	_, err := src.LoadDay(context.Background())
	if err == nil {
		t.Fatal("LoadDay() error = nil; want error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v; want wrapping os.ErrNotExist", err)
	}
}

type countingSource struct {
	calls atomic.Int32
	err   error
	day   dataframe.DataFrame
	hour  dataframe.DataFrame
}

func (s *countingSource) LoadDay(context.Context) (dataframe.DataFrame, error) {
	s.calls.Add(1)
	return s.day, s.err
}

func (s *countingSource) LoadHour(context.Context) (dataframe.DataFrame, error) {
	return s.hour, nil
}

func newCountingSource(t *testing.T) *countingSource {
	t.Helper()
	day, err := decodeCSV(strings.NewReader(dayCSV), dayColumns)
	if err != nil {
		t.Fatalf("decode day: %v", err)
	}
	hour, err := decodeCSV(strings.NewReader(hourCSV), hourColumns)
	if err != nil {
		t.Fatalf("decode hour: %v", err)
	}
	return &countingSource{day: day, hour: hour}
}

func TestRepository_Load_memoized(t *testing.T) {
	src := newCountingSource(t)
	repo := NewRepository(src)

	if repo.Loaded() {
		t.Fatal("Loaded() = true before first Load")
	}

	var wg sync.WaitGroup
	results := make([]*types.Tables, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables, err := repo.Load(context.Background())
			if err != nil {
				t.Errorf("Load() error = %v", err)
				return
			}
			results[i] = tables
		}(i)
	}
	wg.Wait()

	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source loads = %d; want 1", got)
	}
	for i, r := range results {
		if r != results[0] {
			t.Errorf("result[%d] differs from result[0]; want the same cached tables", i)
		}
	}
	if !repo.Loaded() {
		t.Error("Loaded() = false after Load")
	}
}

func TestRepository_Load_errorNotCached(t *testing.T) {
	src := newCountingSource(t)
	src.err = errors.New("disk gone")
	repo := NewRepository(src)

	_, err := repo.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "load daily table") {
		t.Fatalf("Load() error = %v; want wrapped daily load error", err)
	}
	if repo.Loaded() {
		t.Error("Loaded() = true after failed load")
	}

	src.err = nil
	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() after recovery error = %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("source loads = %d; want 2", got)
	}
}

func TestRepository_Load_csvFiles(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(writeFile(t, dir, "day.csv", dayCSV), writeFile(t, dir, "hour.csv", hourCSV))

	tables, err := NewRepository(src).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tables.Day.Nrow() != 2 || tables.Hour.Nrow() != 3 {
		t.Errorf("rows = %d/%d; want 2/3", tables.Day.Nrow(), tables.Hour.Nrow())
	}
}

func TestSQLiteSource_saveAndLoad(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "rentals.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	src := newCountingSource(t)
	store := NewSQLiteSource(db)
	tables := &types.Tables{Day: src.day, Hour: src.hour}
	if err := store.Save(ctx, tables); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Saving twice upserts instead of failing on the primary key.
	if err := store.Save(ctx, tables); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	day, err := store.LoadDay(ctx)
	if err != nil {
		t.Fatalf("LoadDay() error = %v", err)
	}
	if day.Nrow() != 2 {
		t.Fatalf("day rows = %d; want 2", day.Nrow())
	}
	if got := day.Col("date").Records(); !reflect.DeepEqual(got, []string{"2024-01-01", "2024-01-02"}) {
		t.Errorf("dates = %v", got)
	}
	registered, err := day.Col("registered").Int()
	if err != nil {
		t.Fatalf("registered.Int(): %v", err)
	}
	if !reflect.DeepEqual(registered, []int{7, 15}) {
		t.Errorf("registered = %v; want [7 15]", registered)
	}

	hour, err := store.LoadHour(ctx)
	if err != nil {
		t.Fatalf("LoadHour() error = %v", err)
	}
	if hour.Nrow() != 3 {
		t.Errorf("hour rows = %d; want 3", hour.Nrow())
	}
	if got := hour.Col("windspeed").Float(); !reflect.DeepEqual(got, []float64{0.1, 0.3, 0.5}) {
		t.Errorf("windspeed = %v", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-03-05", want: "2024-03-05"},
		{in: " 2024-03-05 ", want: "2024-03-05"},
		{in: "2024-03-05 13:00:00", want: "2024-03-05"},
		{in: "2024-03-05T13:00:00Z", want: "2024-03-05"},
		{in: "March 5", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDate(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDate(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
