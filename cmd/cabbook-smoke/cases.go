// README: Smoke cases; each case drives one API or environment check and reports PASS/FAIL/SKIP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"cabbook/internal/infra"
	"cabbook/migrations"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	bookingID string
	// each run books its own route so reruns don't collide with earlier data
	route map[string]any
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	seed := float64(time.Now().UnixNano()%1_000_000) / 1e7
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
		route: map[string]any{
			"cabId":       cfg.CabID,
			"dropOffLat":  12.9716 + seed,
			"dropOffLong": 77.5946,
			"dropOffName": "Smoke drop-off",
			"pickUpLat":   12.9719,
			"pickUpLong":  77.6412 + seed,
			"pickUpName":  "Smoke pick-up",
		},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = infra.NewRedis(r.cfg.RedisAddr)
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Env: Postgres connect", Run: func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: statusSkip, Note: "dsn not set"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.db.Ping(ctx); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			return Result{Status: statusPass}
		}},
		{Name: "Env: Redis connect", Run: func(ctx context.Context, r *Runner) Result {
			if r.redis == nil {
				return Result{Status: statusSkip, Note: "redis not set"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.redis.Ping(ctx).Err(); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			return Result{Status: statusPass}
		}},
		{Name: "Schema: tables exist", Run: checkTables},
		{Name: "API: health", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/health", nil, "", http.StatusOK, nil)
		}},
		{Name: "API: missing token -> 401", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/api/bookings", nil, "", http.StatusUnauthorized, nil)
		}},
		r.authed("Booking: create", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/bookings", r.route, r.cfg.Token, http.StatusOK, func(data json.RawMessage) error {
				var b struct {
					ID string `json:"id"`
				}
				if err := json.Unmarshal(data, &b); err != nil || b.ID == "" {
					return fmt.Errorf("no booking id in response")
				}
				r.bookingID = b.ID
				return nil
			})
		}),
		r.authed("Booking: duplicate -> 400", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/bookings", r.route, r.cfg.Token, http.StatusBadRequest, nil)
		}),
		r.authed("Booking: concurrent duplicates, at most one wins", concurrentCreate),
		r.authed("Booking: get", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/api/bookings/"+r.bookingID, nil, r.cfg.Token, http.StatusOK, nil)
		}),
		r.authed("Booking: malformed id -> 400", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/api/bookings/not-a-uuid", nil, r.cfg.Token, http.StatusBadRequest, nil)
		}),
		r.authed("Booking: derived field patch -> 400", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPatch, "/api/bookings/"+r.bookingID, map[string]any{"distance": "1.00km"}, r.cfg.Token, http.StatusBadRequest, nil)
		}),
		r.authed("Booking: complete", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPatch, "/api/bookings/"+r.bookingID, map[string]any{"status": "completed"}, r.cfg.Token, http.StatusOK, nil)
		}),
		r.authed("Booking: list", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/api/bookings", nil, r.cfg.Token, http.StatusOK, nil)
		}),
		r.authed("Report: current month", func(ctx context.Context, r *Runner) Result {
			now := time.Now()
			return r.expect(ctx, http.MethodGet, fmt.Sprintf("/api/bookings/%d/%d", now.Year(), int(now.Month())), nil, r.cfg.Token, http.StatusOK, nil)
		}),
		r.authed("Booking: delete", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodDelete, "/api/bookings/"+r.bookingID, nil, r.cfg.Token, http.StatusOK, nil)
		}),
		r.authed("Perf: list load", listLoad),
	}
}

// authed skips cases that need a token and a cab when they were not supplied.
func (r *Runner) authed(name string, run func(ctx context.Context, r *Runner) Result) TestCase {
	return TestCase{Name: name, Run: func(ctx context.Context, r *Runner) Result {
		if r.cfg.Token == "" || r.cfg.CabID == "" {
			return Result{Status: statusSkip, Note: "--token and --cab-id required"}
		}
		if strings.Contains(name, "Booking:") && name != "Booking: create" && r.bookingID == "" {
			return Result{Status: statusSkip, Note: "no booking created"}
		}
		return run(ctx, r)
	}}
}

func (r *Runner) do(ctx context.Context, method, path string, body any, token string) (*http.Response, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp, raw, time.Since(start), err
}

func (r *Runner) expect(ctx context.Context, method, path string, body any, token string, want int, check func(json.RawMessage) error) Result {
	resp, raw, latency, err := r.do(ctx, method, path, body, token)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	note := fmt.Sprintf("status=%d", resp.StatusCode)
	if resp.StatusCode != want {
		return Result{Status: statusFail, Latency: latency, Note: note + " " + truncate(string(raw), 120)}
	}
	if check != nil {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return Result{Status: statusFail, Latency: latency, Note: "bad envelope: " + err.Error()}
		}
		if err := check(env.Data); err != nil {
			return Result{Status: statusFail, Latency: latency, Note: err.Error()}
		}
	}
	return Result{Status: statusPass, Latency: latency, Note: note}
}

func concurrentCreate(ctx context.Context, r *Runner) Result {
	route := make(map[string]any, len(r.route))
	for k, v := range r.route {
		route[k] = v
	}
	route["pickUpName"] = "Smoke race"
	route["pickUpLat"] = r.route["pickUpLat"].(float64) + 0.001

	var wg sync.WaitGroup
	var mu sync.Mutex
	succ, dup := 0, 0
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, raw, _, err := r.do(ctx, http.MethodPost, "/api/bookings", route, r.cfg.Token)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch resp.StatusCode {
			case http.StatusOK:
				succ++
				var env struct {
					Data struct {
						ID string `json:"id"`
					} `json:"data"`
				}
				if json.Unmarshal(raw, &env) == nil && env.Data.ID != "" {
					_, _, _, _ = r.do(ctx, http.MethodDelete, "/api/bookings/"+env.Data.ID, nil, r.cfg.Token)
				}
			case http.StatusBadRequest:
				dup++
			}
		}()
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d duplicate=%d", succ, dup)
	if succ == 1 && succ+dup == r.cfg.Concurrency {
		return Result{Status: statusPass, Note: note}
	}
	return Result{Status: statusFail, Note: note}
}

func listLoad(ctx context.Context, r *Runner) Result {
	if r.cfg.Duration <= 0 {
		return Result{Status: statusSkip, Note: "--duration not set"}
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				resp, _, _, err := r.do(ctx, http.MethodGet, "/api/bookings", nil, r.cfg.Token)
				mu.Lock()
				if err != nil || resp.StatusCode != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "dsn not set"}
	}
	tables, err := tableNames()
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: statusPass, Note: strings.Join(tables, ",")}
}

var createTable = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func tableNames() ([]string, error) {
	stmts, err := migrations.Statements(migrations.Postgres)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, s := range stmts {
		if m := createTable.FindStringSubmatch(s); m != nil {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
