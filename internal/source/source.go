// Package source reads sample sets from command-line arguments, text streams and Postgres.
package source

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/hyp3rd/ewrap"
	// registers the "postgres" driver
	_ "github.com/lib/pq"
)

// ErrInvalidSample is returned for tokens that are not finite numbers.
var ErrInvalidSample = ewrap.New("invalid sample")

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}

func parseToken(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ewrap.Wrap(ErrInvalidSample, strconv.Quote(token))
	}

	return v, nil
}

// Parse reads numbers separated by whitespace, commas or semicolons. A '#' starts a comment that
// runs to the end of the line. The error names the line of the first bad token.
func Parse(r io.Reader) ([]float64, error) {
	var values []float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for line := 1; scanner.Scan(); line++ {
		text, _, _ := strings.Cut(scanner.Text(), "#")

		for _, token := range strings.FieldsFunc(text, isSeparator) {
			v, err := parseToken(token)
			if err != nil {
				return nil, ewrap.Wrap(err, "line "+strconv.Itoa(line))
			}

			values = append(values, v)
		}
	}

	err := scanner.Err()
	if err != nil {
		return nil, ewrap.Wrap(err, "reading samples")
	}

	return values, nil
}

// FromArgs parses command-line arguments; each argument may hold several comma separated numbers.
func FromArgs(args []string) ([]float64, error) {
	return Parse(strings.NewReader(strings.Join(args, " ")))
}

// FromFile parses the file at path, or standard input when path is "-".
func FromFile(path string) ([]float64, error) {
	if path == "-" {
		return Parse(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ewrap.Wrap(err, "opening samples file")
	}

	defer func() {
		_ = f.Close()
	}()

	return Parse(f)
}

// FromPostgres runs query, which must select a single numeric column, and returns its values in
// row order. NULL values are skipped.
func FromPostgres(ctx context.Context, db *sql.DB, query string) ([]float64, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, ewrap.Wrap(err, "querying samples")
	}

	defer func() {
		_ = rows.Close()
	}()

	var values []float64

	for rows.Next() {
		var v sql.NullFloat64

		err = rows.Scan(&v)
		if err != nil {
			return nil, ewrap.Wrap(err, "scanning sample")
		}

		if v.Valid {
			values = append(values, v.Float64)
		}
	}

	return values, ewrap.Wrap(rows.Err(), "iterating samples")
}

// OpenPostgres opens and pings a Postgres connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, ewrap.Wrap(err, "opening postgres")
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, ewrap.Wrap(err, "pinging postgres")
	}

	return db, nil
}

// DSNFromEnv builds a lib/pq connection string from the POSTGRES_* variables, falling back to
// DATABASE_URL when POSTGRES_DB is unset.
func DSNFromEnv() (string, error) {
	dbname := os.Getenv("POSTGRES_DB")
	if dbname == "" {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			return url, nil
		}

		return "", ewrap.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	sslmode := envOr("POSTGRES_SSLMODE", "disable")

	parts := []string{
		"host=" + quoteDSN(host),
		"port=" + quoteDSN(port),
		"user=" + quoteDSN(os.Getenv("POSTGRES_USER")),
		"password=" + quoteDSN(os.Getenv("POSTGRES_PASSWORD")),
		"dbname=" + quoteDSN(dbname),
		"sslmode=" + quoteDSN(sslmode),
	}

	return strings.Join(parts, " "), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// quoteDSN quotes a keyword/value DSN value when it is empty or holds spaces, quotes or backslashes.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}

	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(v) + "'"
}
