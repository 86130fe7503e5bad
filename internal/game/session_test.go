package game

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/kareemessam09/GeoQuest/internal/achievements"
	"github.com/kareemessam09/GeoQuest/internal/inventory"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	m.Run()
}

const (
	userLat = 30.0444
	userLon = 31.2357
)

// pointAt returns a coordinate approximately meters north of the user.
func pointAt(meters float64) (float64, float64) {
	return userLat + meters/111111.0, userLon
}

// recorder captures side effects for assertions.
type recorder struct {
	mu      sync.Mutex
	haptics []models.ProximityLevel
	notices []string // kind
	sounds  []string
}

func (r *recorder) Haptic(level models.ProximityLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.haptics = append(r.haptics, level)
}

func (r *recorder) Notify(kind, title, body string, sticky bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, kind)
}

func (r *recorder) Sound(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = append(r.sounds, kind)
}

func (r *recorder) hapticCount(level models.ProximityLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.haptics {
		if h == level {
			n++
		}
	}
	return n
}

func (r *recorder) noticeCount(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.notices {
		if k == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	db      *gorm.DB
	session *Session
	rec     *recorder
	stats   *achievements.Repo
	inv     *inventory.Repo
}

// newFixture seeds five treasures at fixed distances north of the user
// (10m, 30m, 150m, 500m, 800m) so EnsureSpawned stays quiet and tests can
// pick a treasure per band.
func newFixture(t *testing.T) *fixture {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Treasure{},
		&models.InventoryItem{},
		&models.UserStats{},
		&models.AchievementUnlock{},
	))

	distances := map[string]float64{
		"t10": 10, "t30": 30, "t150": 150, "t500": 500, "t800": 800,
	}
	for id, d := range distances {
		lat, lon := pointAt(d)
		require.NoError(t, db.Create(&models.Treasure{
			ID:        id,
			PlayerID:  "p1",
			Name:      "Treasure " + id,
			Latitude:  lat,
			Longitude: lon,
			Reward:    models.Reward{Type: models.RewardGold, Name: "Golden Coins", Value: 100},
			SpawnedAt: time.Now(),
		}).Error)
	}

	spawner := spawn.NewSpawner(db, spawn.NewGenerator(rand.New(rand.NewSource(1))))
	inv := inventory.NewRepo(db)
	stats := achievements.NewRepo(db)
	rec := &recorder{}

	session := NewSession("p1", spawner, inv, stats,
		Sinks{Haptics: rec, Notices: rec, Sounds: rec}, NopRegistrar{})
	t.Cleanup(session.End)

	// Wait for the initial treasure load.
	require.Eventually(t, func() bool {
		return !session.State().Loading
	}, 2*time.Second, 10*time.Millisecond)

	return &fixture{db: db, session: session, rec: rec, stats: stats, inv: inv}
}

func (f *fixture) pushFix(t *testing.T, lat, lon float64) {
	require.NoError(t, f.session.PushFix(Fix{Latitude: lat, Longitude: lon, Timestamp: time.Now()}))
}

func TestSelectTreasure_ComputesDistanceFromLastFix(t *testing.T) {
	f := newFixture(t)

	f.pushFix(t, userLat, userLon)
	require.NoError(t, f.session.SelectTreasure("t150"))

	st := f.session.State()
	require.NotNil(t, st.SelectedTreasureID)
	assert.Equal(t, "t150", *st.SelectedTreasureID)
	require.NotNil(t, st.DistanceToTarget)
	assert.InDelta(t, 150, *st.DistanceToTarget, 2)
}

func TestSelectTreasure_NoFixYet(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.SelectTreasure("t150"))

	st := f.session.State()
	require.NotNil(t, st.SelectedTreasureID)
	// distanceToTarget is nil until a fix arrives after selection.
	assert.Nil(t, st.DistanceToTarget)
}

func TestSelectTreasure_Unknown(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.session.SelectTreasure("nope"))
}

func TestHysteresis_OneNotificationPerBandEntry(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.SelectTreasure("t30"))

	// Three fixes in the HOT band: exactly one haptic.
	f.pushFix(t, userLat, userLon)
	f.pushFix(t, userLat, userLon)
	f.pushFix(t, userLat, userLon)
	f.session.State() // barrier: all fixes applied

	assert.Equal(t, 1, f.rec.hapticCount(models.ProximityHot))

	// Walk out to COOL (treasure at 30m; user 150m south of it), then back.
	coolLat, coolLon := pointAt(-120)
	f.pushFix(t, coolLat, coolLon)
	f.pushFix(t, userLat, userLon)
	f.session.State()

	assert.Equal(t, 1, f.rec.hapticCount(models.ProximityCool))
	// Re-entering HOT fires again.
	assert.Equal(t, 2, f.rec.hapticCount(models.ProximityHot))
}

func TestHysteresis_ResetOnReselect(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.SelectTreasure("t30"))
	f.pushFix(t, userLat, userLon)
	f.session.State()
	require.Equal(t, 1, f.rec.hapticCount(models.ProximityHot))

	// Deselect and reselect: the band memory resets, the same band
	// re-fires on the next fix.
	f.session.ClearSelection()
	require.NoError(t, f.session.SelectTreasure("t30"))
	f.pushFix(t, userLat, userLon)
	f.session.State()

	assert.Equal(t, 2, f.rec.hapticCount(models.ProximityHot))
}

func TestCollect_RejectedWhenTooFar(t *testing.T) {
	f := newFixture(t)

	f.pushFix(t, userLat, userLon)
	require.NoError(t, f.session.SelectTreasure("t500"))

	res := f.session.Collect()
	assert.False(t, res.Success)
	assert.Equal(t, "too far away", res.Reason)

	count, err := f.inv.Count("p1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCollect_RejectedWithoutSelection(t *testing.T) {
	f := newFixture(t)
	f.pushFix(t, userLat, userLon)

	res := f.session.Collect()
	assert.False(t, res.Success)
	assert.Equal(t, "no treasure selected", res.Reason)
}

func TestCollect_RejectedWithoutLocation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectTreasure("t10"))

	res := f.session.Collect()
	assert.False(t, res.Success)
	assert.Equal(t, "no known location", res.Reason)
}

func TestCollect_Success(t *testing.T) {
	f := newFixture(t)

	f.pushFix(t, userLat, userLon)
	require.NoError(t, f.session.SelectTreasure("t10"))

	res := f.session.Collect()
	require.True(t, res.Success)
	require.NotNil(t, res.Treasure)
	assert.Equal(t, "t10", res.Treasure.ID)

	// Selection cleared, treasure gone from the world.
	st := f.session.State()
	assert.Nil(t, st.SelectedTreasureID)
	assert.Nil(t, st.DistanceToTarget)
	for _, tr := range st.Treasures {
		assert.NotEqual(t, "t10", tr.ID)
	}

	// Stats recorded and a first-find unlock surfaced.
	stats, err := f.stats.Stats("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTreasuresCollected)
	assert.Equal(t, 100, stats.TotalPointsEarned)

	require.NotEmpty(t, res.Unlocked)
	assert.Equal(t, "first_find", res.Unlocked[0].ID)

	// Selecting within a minute of collecting: speed_runner too.
	unlockedIDs := make(map[string]bool)
	for _, a := range res.Unlocked {
		unlockedIDs[a.ID] = true
	}
	assert.True(t, unlockedIDs["speed_runner"])

	assert.Equal(t, 1, f.rec.noticeCount(NotifyCollected))
	assert.Equal(t, 1, f.rec.noticeCount(NotifyAchievement))
}

func TestCollect_DuplicateIsSilentFailure(t *testing.T) {
	f := newFixture(t)

	// Simulate the race: the inventory row already exists when the
	// collect lands.
	_, err := f.inv.Collect("p1", models.Treasure{ID: "t10", Name: "Treasure t10",
		Reward: models.Reward{Type: models.RewardGold, Name: "Golden Coins", Value: 100}}, userLat, userLon)
	require.NoError(t, err)

	f.pushFix(t, userLat, userLon)
	require.NoError(t, f.session.SelectTreasure("t10"))

	res := f.session.Collect()
	assert.False(t, res.Success)
	assert.Equal(t, "already collected", res.Reason)

	count, err := f.inv.Count("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// No celebration for a duplicate.
	assert.Zero(t, f.rec.noticeCount(NotifyCollected))
}

func TestGeofenceTransitions_DriveStateWithoutFixes(t *testing.T) {
	f := newFixture(t)

	// No location fix at all: the background path alone must work.
	f.session.PushTransition(Transition{TreasureID: "t150", Kind: TransitionEnter})
	st := f.session.State()
	assert.True(t, st.NearbyTreasureIDs["t150"])

	f.session.PushTransition(Transition{TreasureID: "t150", Kind: TransitionDwell})
	f.session.State()
	assert.Equal(t, 1, f.rec.noticeCount(NotifyVeryClose))

	f.session.PushTransition(Transition{TreasureID: "t150", Kind: TransitionExit})
	st = f.session.State()
	assert.False(t, st.NearbyTreasureIDs["t150"])
}

func TestWalkingDistance_Attribution(t *testing.T) {
	f := newFixture(t)

	f.pushFix(t, userLat, userLon)

	// 50m step: counted.
	lat, lon := pointAt(50)
	f.pushFix(t, lat, lon)
	require.Eventually(t, func() bool {
		stats, err := f.stats.Stats("p1")
		return err == nil && stats.TotalDistanceWalked > 49
	}, 2*time.Second, 10*time.Millisecond)

	// 500m jump: discarded.
	lat, lon = pointAt(550)
	f.pushFix(t, lat, lon)

	// Sub-meter jitter: discarded.
	f.pushFix(t, lat, lon)

	f.session.State()
	time.Sleep(50 * time.Millisecond) // let any stray task land

	stats, err := f.stats.Stats("p1")
	require.NoError(t, err)
	assert.InDelta(t, 50, stats.TotalDistanceWalked, 2)
}

func TestLocationError_NonFatal(t *testing.T) {
	f := newFixture(t)

	f.session.post(evLocationErr{err: sessionError("gps unavailable")})
	st := f.session.State()
	require.NotNil(t, st.Error)
	assert.Equal(t, "gps unavailable", *st.Error)

	// The next fix clears the error and the session keeps working.
	f.pushFix(t, userLat, userLon)
	st = f.session.State()
	assert.Nil(t, st.Error)
}

func TestPushFix_RejectsMalformedCoordinates(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.session.PushFix(Fix{Latitude: 91, Longitude: 0}))
	assert.Error(t, f.session.PushFix(Fix{Latitude: 0, Longitude: 200}))
}

func TestEnd_CommandsFailFast(t *testing.T) {
	f := newFixture(t)
	f.session.End()

	assert.Error(t, f.session.SelectTreasure("t10"))
	res := f.session.Collect()
	assert.False(t, res.Success)
}

func TestManager_SessionLifecycle(t *testing.T) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Treasure{}, &models.InventoryItem{},
		&models.UserStats{}, &models.AchievementUnlock{}))

	mgr := NewManager(
		spawn.NewSpawner(db, spawn.NewGenerator(rand.New(rand.NewSource(2)))),
		inventory.NewRepo(db),
		achievements.NewRepo(db),
		NewBus(),
	)
	defer mgr.Shutdown()

	s1 := mgr.Session("p1")
	s2 := mgr.Session("p2")
	assert.Same(t, s1, mgr.Session("p1"))
	assert.NotSame(t, s1, s2)

	// Unscoped transitions broadcast to every managed session.
	mgr.Bus().Publish(Transition{TreasureID: "tx", Kind: TransitionEnter})
	require.Eventually(t, func() bool {
		return s1.State().NearbyTreasureIDs["tx"] && s2.State().NearbyTreasureIDs["tx"]
	}, 2*time.Second, 10*time.Millisecond)

	mgr.EndSession("p1")
	assert.NotSame(t, s1, mgr.Session("p1"))
}

func TestBus_TransitionsScopedToPlayer(t *testing.T) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Treasure{}, &models.InventoryItem{},
		&models.UserStats{}, &models.AchievementUnlock{}))

	mgr := NewManager(
		spawn.NewSpawner(db, spawn.NewGenerator(rand.New(rand.NewSource(3)))),
		inventory.NewRepo(db),
		achievements.NewRepo(db),
		NewBus(),
	)
	defer mgr.Shutdown()

	s1 := mgr.Session("p1")
	s2 := mgr.Session("p2")

	mgr.Bus().Publish(Transition{PlayerID: "p2", TreasureID: "only_p2", Kind: TransitionEnter})
	mgr.Bus().Publish(Transition{PlayerID: "p1", TreasureID: "only_p1", Kind: TransitionEnter})

	require.Eventually(t, func() bool {
		return s1.State().NearbyTreasureIDs["only_p1"]
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return s2.State().NearbyTreasureIDs["only_p2"]
	}, 2*time.Second, 10*time.Millisecond)

	// Delivery is ordered per subscriber, so the earlier p2-scoped event
	// would already have surfaced in p1's state had it not been filtered.
	assert.False(t, s1.State().NearbyTreasureIDs["only_p2"])
	assert.False(t, s2.State().NearbyTreasureIDs["only_p1"])
}
