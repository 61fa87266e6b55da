package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"accidentsev/internal/cache"
	"accidentsev/internal/catalog"
	"accidentsev/internal/form"
	"accidentsev/internal/model"
	"accidentsev/internal/normalize"
	"accidentsev/internal/repository"
	"accidentsev/internal/schema"
	"accidentsev/internal/scoring"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClassifier struct {
	mu    sync.Mutex
	p     float64
	calls int
	block bool
}

func (c *stubClassifier) PredictProba(ctx context.Context, _ []any) (float64, error) {
	c.mu.Lock()
	c.calls++
	p, block := c.p, c.block
	c.mu.Unlock()
	if block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return p, nil
}

func (c *stubClassifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type event struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []event
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{sessionID, msgType, payload})
}

func (b *recordingBroadcaster) DisconnectSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, sessionID)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.msgType)
	}
	return out
}

type fixture struct {
	schema      *schema.Schema
	catalog     *catalog.Catalog
	machine     *form.Machine
	classifier  *stubClassifier
	scorer      *scoring.Scorer
	predictions *PredictionService
	records     *repository.SQLitePredictionRepo
	stats       cache.StatsCache
	sessions    *SessionService
	auth        *AuthService
	broadcaster *recordingBroadcaster
}

func testMeta(sch *schema.Schema) *model.ModelMeta {
	names := sch.Names()
	return &model.ModelMeta{
		ModelName:   "stub",
		Threshold:   0.47,
		Features:    names,
		CatFeatures: append([]string(nil), names[:len(names)-1]...),
	}
}

func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()
	sch := schema.Default()
	cat, err := catalog.Load(filepath.Join("..", "..", "data", "ref_options.json"), sch)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	records, err := repository.NewSQLitePredictionRepo(filepath.Join(t.TempDir(), "p.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = records.Close() })

	logger := zap.NewNop()
	clf := &stubClassifier{p: 0.6}
	scorer := scoring.NewScorer(sch, logger)
	if loaded {
		require.NoError(t, scorer.Load(context.Background(), func(context.Context) (*model.ModelMeta, scoring.Classifier, error) {
			return testMeta(sch), clf, nil
		}))
	}

	predictions := NewPredictionService(sch, scorer, normalize.Options{}, 200*time.Millisecond, logger)
	predictions.SetRecordStore(records)
	stats := cache.NewStatsCache(rdb)
	predictions.SetStats(stats)

	machine := form.NewMachine(sch)
	auth := NewAuthService("test-secret", time.Hour)
	recaps := NewRecapService(sch, cat, machine)
	sessions := NewSessionService(machine, cat, cache.NewFormCache(rdb, time.Hour), auth, predictions, recaps, logger)
	b := &recordingBroadcaster{}
	sessions.SetBroadcaster(b)

	return &fixture{
		schema: sch, catalog: cat, machine: machine, classifier: clf, scorer: scorer,
		predictions: predictions, records: records, stats: stats, sessions: sessions,
		auth: auth, broadcaster: b,
	}
}

func validInputs() map[string]any {
	return map[string]any{
		"dep": "59", "lum": 1, "atm": 1, "catr": 3, "agg": 2, "int": 1, "circ": 2,
		"col": 3, "vma_bucket": "51-80", "catv_family_4": "voitures_utilitaires",
		"manv_mode": 1, "driver_age_bucket": "25-34", "choc_mode": 1,
		"driver_trajet_family": "trajet_1", "minute": 30,
	}
}

func isRejected(err error) bool {
	return Status(err) == model.PredictionRejected
}
