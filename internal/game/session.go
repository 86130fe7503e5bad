package game

import (
	"strconv"
	"sync"
	"time"

	"github.com/kareemessam09/GeoQuest/internal/achievements"
	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/geo"
	"github.com/kareemessam09/GeoQuest/internal/inventory"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

// Walking-distance attribution bounds: deltas at or under the lower bound
// are GPS noise, deltas at or over the upper bound are location jumps.
// Neither counts toward distance walked.
const (
	walkMinDelta = 1.0
	walkMaxDelta = 100.0
)

// CollectResult is the outcome of a collect attempt. Policy violations
// (not collectable, nothing selected, duplicate) come back as
// Success=false with a reason, never as errors.
type CollectResult struct {
	Success  bool                 `json:"success"`
	Reason   string               `json:"reason,omitempty"`
	Treasure *models.Treasure     `json:"treasure,omitempty"`
	Unlocked []models.Achievement `json:"unlockedAchievements,omitempty"`
}

// Session merges the two event sources (location fixes, geofence
// transitions) into one loop that owns all GameState mutation. Nothing
// outside the loop goroutine touches the state; commands and task results
// enter as events and are applied strictly in arrival order.
type Session struct {
	PlayerID string

	spawner   *spawn.Spawner
	inv       *inventory.Repo
	stats     *achievements.Repo
	sinks     Sinks
	registrar GeofenceRegistrar

	events chan interface{}
	done   chan struct{}
	stop   sync.Once

	// Everything below is owned by the loop goroutine.
	state          models.GameState
	lastFix        *Fix
	selectedAt     time.Time
	lastBand       *models.ProximityLevel
	spawnedOnce    bool
	pendingCollect chan CollectResult
	registered     map[string]bool
}

// Internal loop events.
type (
	evFix         struct{ fix Fix }
	evLocationErr struct{ err error }
	evTransition  struct{ t Transition }
	evTreasures   struct {
		treasures []models.Treasure
		err       error
	}
	evTaskErr struct {
		op  string
		err error
	}
	evCollectDone struct {
		outcome collectOutcome
	}

	cmdSelect struct {
		id    string
		reply chan error
	}
	cmdClear   struct{ reply chan struct{} }
	cmdCollect struct{ reply chan CollectResult }
	cmdRespawn struct{ reply chan error }
	cmdState   struct{ reply chan models.GameState }
)

type collectOutcome struct {
	treasure  models.Treasure
	success   bool
	duplicate bool
	err       error
	unlocked  []models.Achievement
}

func NewSession(playerID string, spawner *spawn.Spawner, inv *inventory.Repo, stats *achievements.Repo, sinks Sinks, registrar GeofenceRegistrar) *Session {
	s := &Session{
		PlayerID:  playerID,
		spawner:   spawner,
		inv:       inv,
		stats:     stats,
		sinks:     sinks,
		registrar: registrar,
		events:    make(chan interface{}, 256),
		done:      make(chan struct{}),
		state: models.GameState{
			NearbyTreasureIDs: make(map[string]bool),
			Loading:           true,
		},
		registered: make(map[string]bool),
	}

	go s.loop()
	go s.loadTreasures()
	return s
}

// AttachBus subscribes the session to a geofence transition bus.
// Transitions scoped to another player are discarded at the pump; the
// subscription is owned here and cancelled when the session ends.
func (s *Session) AttachBus(bus *Bus) {
	sub := bus.Subscribe()
	go func() {
		defer sub.Cancel()
		for {
			select {
			case t, ok := <-sub.C:
				if !ok {
					return
				}
				if t.PlayerID != "" && t.PlayerID != s.PlayerID {
					continue
				}
				s.post(evTransition{t})
			case <-s.done:
				return
			}
		}
	}()
}

// AttachLocationSource pumps a fix stream into the loop. Stream errors map
// to a non-fatal GameState error.
func (s *Session) AttachLocationSource(src LocationSource) {
	fixes, errs, cancel := src.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case fix, ok := <-fixes:
				if !ok {
					return
				}
				s.post(evFix{fix})
			case err, ok := <-errs:
				if ok && err != nil {
					s.post(evLocationErr{err})
				}
			case <-s.done:
				return
			}
		}
	}()
}

// End shuts the loop down. In-flight persistence tasks run to completion;
// their results are dropped at the loop boundary, which is safe because
// every write they make is idempotent.
func (s *Session) End() {
	s.stop.Do(func() { close(s.done) })
}

// PushFix feeds one location fix into the session. Malformed coordinates
// are programmer/device errors and are rejected before entering the loop.
func (s *Session) PushFix(fix Fix) error {
	if err := geo.Validate(fix.Latitude, fix.Longitude); err != nil {
		return err
	}
	s.post(evFix{fix})
	return nil
}

// PushTransition feeds one geofence transition into the session directly,
// bypassing the bus. In-process producers that already hold the session
// (the geofence registrar) use this; external ingestion goes through the
// bus so arrivals are scoped by player.
func (s *Session) PushTransition(t Transition) {
	s.post(evTransition{t})
}

// SelectTreasure marks a treasure as the active target and records the
// selection time for the speed-runner clock.
func (s *Session) SelectTreasure(id string) error {
	reply := make(chan error, 1)
	if !s.post(cmdSelect{id: id, reply: reply}) {
		return errSessionEnded
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return errSessionEnded
	}
}

// ClearSelection returns to idle and resets the band memory so a future
// selection re-arms every notification.
func (s *Session) ClearSelection() {
	reply := make(chan struct{}, 1)
	if !s.post(cmdClear{reply: reply}) {
		return
	}
	select {
	case <-reply:
	case <-s.done:
	}
}

// Collect attempts to collect the selected treasure. Valid only when the
// treasure is within the collect radius and at least one fix is known.
func (s *Session) Collect() CollectResult {
	reply := make(chan CollectResult, 1)
	if !s.post(cmdCollect{reply: reply}) {
		return CollectResult{Success: false, Reason: "session ended"}
	}
	select {
	case res := <-reply:
		return res
	case <-s.done:
		return CollectResult{Success: false, Reason: "session ended"}
	}
}

// Respawn wipes and regenerates the treasure field around the player.
func (s *Session) Respawn() error {
	reply := make(chan error, 1)
	if !s.post(cmdRespawn{reply: reply}) {
		return errSessionEnded
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return errSessionEnded
	}
}

// State returns a snapshot copy of the loop-owned game state.
func (s *Session) State() models.GameState {
	reply := make(chan models.GameState, 1)
	if !s.post(cmdState{reply: reply}) {
		return models.GameState{}
	}
	select {
	case st := <-reply:
		return st
	case <-s.done:
		return models.GameState{}
	}
}

var errSessionEnded = sessionError("session ended")

type sessionError string

func (e sessionError) Error() string { return string(e) }

// post enqueues an event unless the session has ended.
func (s *Session) post(e interface{}) bool {
	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) loop() {
	for {
		select {
		case e := <-s.events:
			s.handle(e)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(e interface{}) {
	switch ev := e.(type) {
	case evFix:
		s.onFix(ev.fix)
	case evLocationErr:
		msg := ev.err.Error()
		s.state.Error = &msg
	case evTransition:
		s.onTransition(ev.t)
	case evTreasures:
		s.onTreasures(ev)
	case evTaskErr:
		msg := ev.op + ": " + ev.err.Error()
		s.state.Error = &msg
		logger.Warn().Str("player", s.PlayerID).Str("op", ev.op).Msg(msg)
	case evCollectDone:
		s.onCollectDone(ev.outcome)
	case cmdSelect:
		ev.reply <- s.onSelect(ev.id)
	case cmdClear:
		s.onClear()
		ev.reply <- struct{}{}
	case cmdCollect:
		s.onCollect(ev.reply)
	case cmdRespawn:
		s.onRespawn(ev.reply)
	case cmdState:
		ev.reply <- s.snapshot()
	}
}

func (s *Session) onFix(fix Fix) {
	s.state.Error = nil

	// Walking-distance accounting from the previous fix.
	if s.lastFix != nil {
		delta := geo.Distance(s.lastFix.Latitude, s.lastFix.Longitude, fix.Latitude, fix.Longitude)
		if delta > walkMinDelta && delta < walkMaxDelta {
			go func() {
				if err := s.stats.RecordDistanceWalked(s.PlayerID, delta); err != nil {
					s.post(evTaskErr{op: "record distance", err: err})
				}
			}()
		}
	}
	s.lastFix = &fix

	lat, lon := fix.Latitude, fix.Longitude
	s.state.UserLatitude = &lat
	s.state.UserLongitude = &lon

	// First fix triggers the initial spawn around the player.
	if !s.spawnedOnce {
		s.spawnedOnce = true
		go func() {
			if _, err := s.spawner.EnsureSpawned(s.PlayerID, lat, lon); err != nil {
				s.post(evTaskErr{op: "ensure spawned", err: err})
				return
			}
			s.loadTreasures()
		}()
	}

	if s.state.SelectedTreasureID == nil {
		s.state.DistanceToTarget = nil
		return
	}

	target := s.findTreasure(*s.state.SelectedTreasureID)
	if target == nil {
		return
	}

	distance := geo.Distance(lat, lon, target.Latitude, target.Longitude)
	s.state.DistanceToTarget = &distance

	s.applyBand(distance, target)
}

// applyBand fires proximity side effects with hysteresis: only a
// transition into a band emits, staying within a band stays silent, and
// re-entering a band after leaving it re-fires.
func (s *Session) applyBand(distance float64, target *models.Treasure) {
	band := models.ProximityLevelFor(distance)
	if s.lastBand != nil && *s.lastBand == band {
		return
	}
	s.lastBand = &band

	s.sinks.Haptic(band)

	switch {
	case band == models.ProximityBurning:
		s.sinks.Notify(NotifyVeryClose, target.Name, "You're right on top of it. Collect it!", true)
	case distance <= config.NotificationRadius():
		s.sinks.Notify(NotifyProximity, target.Name, "A treasure is nearby: "+band.String(), false)
		s.sinks.Sound(SoundTreasureNearby)
	}
}

func (s *Session) onTransition(t Transition) {
	switch t.Kind {
	case TransitionEnter:
		s.state.NearbyTreasureIDs[t.TreasureID] = true
		s.sinks.Haptic(models.ProximityWarm)
		s.sinks.Sound(SoundTreasureNearby)
	case TransitionExit:
		delete(s.state.NearbyTreasureIDs, t.TreasureID)
	case TransitionDwell:
		// The only feedback path while no location stream is running;
		// it must drive notifications without any fix.
		s.state.NearbyTreasureIDs[t.TreasureID] = true
		name := t.TreasureID
		if tr := s.findTreasure(t.TreasureID); tr != nil {
			name = tr.Name
		}
		s.sinks.Notify(NotifyVeryClose, name, "You've been close to this treasure for a while", false)
	}
}

func (s *Session) onTreasures(ev evTreasures) {
	if ev.err != nil {
		msg := ev.err.Error()
		s.state.Error = &msg
		return
	}
	s.state.Treasures = ev.treasures
	s.state.Loading = false

	// Register geofences for treasures we haven't seen yet. Best effort:
	// a failed registration only logs, the foreground path keeps working.
	var fresh []models.Treasure
	for _, t := range ev.treasures {
		if !s.registered[t.ID] {
			s.registered[t.ID] = true
			fresh = append(fresh, t)
		}
	}
	if len(fresh) > 0 {
		go func() {
			if ok, err := s.registrar.Register(fresh); err != nil || !ok {
				logger.Warn().
					Str("player", s.PlayerID).
					Int("count", len(fresh)).
					Err(err).
					Msg("Geofence registration failed")
			}
		}()
	}

	// A selected treasure that vanished (expired or respawned away)
	// drops the selection.
	if s.state.SelectedTreasureID != nil && s.findTreasure(*s.state.SelectedTreasureID) == nil {
		s.onClear()
	}
}

func (s *Session) onSelect(id string) error {
	target := s.findTreasure(id)
	if target == nil {
		return errTreasureNotFound
	}

	s.state.SelectedTreasureID = &target.ID
	s.selectedAt = time.Now()
	s.lastBand = nil

	if s.lastFix != nil {
		d := geo.Distance(s.lastFix.Latitude, s.lastFix.Longitude, target.Latitude, target.Longitude)
		s.state.DistanceToTarget = &d
	} else {
		s.state.DistanceToTarget = nil
	}
	return nil
}

var errTreasureNotFound = sessionError("treasure not found")

func (s *Session) onClear() {
	s.state.SelectedTreasureID = nil
	s.state.DistanceToTarget = nil
	s.lastBand = nil
	s.selectedAt = time.Time{}
}

func (s *Session) onCollect(reply chan CollectResult) {
	if s.pendingCollect != nil {
		reply <- CollectResult{Success: false, Reason: "collection already in progress"}
		return
	}
	if s.state.SelectedTreasureID == nil {
		reply <- CollectResult{Success: false, Reason: "no treasure selected"}
		return
	}
	if s.lastFix == nil {
		reply <- CollectResult{Success: false, Reason: "no known location"}
		return
	}
	if !s.state.CanCollectSelected() {
		reply <- CollectResult{Success: false, Reason: "too far away"}
		return
	}

	target := s.findTreasure(*s.state.SelectedTreasureID)
	if target == nil {
		reply <- CollectResult{Success: false, Reason: "treasure not found"}
		return
	}

	treasure := *target
	lat, lon := s.lastFix.Latitude, s.lastFix.Longitude
	elapsed := time.Since(s.selectedAt)
	s.pendingCollect = reply

	// All persistence runs detached; the result re-enters the loop as an
	// ordinary event so location/geofence delivery is never blocked.
	go s.runCollect(treasure, lat, lon, elapsed)
}

func (s *Session) runCollect(treasure models.Treasure, lat, lon float64, elapsed time.Duration) {
	outcome := collectOutcome{treasure: treasure}

	if err := s.spawner.MarkCollected(treasure.ID); err != nil {
		outcome.err = err
		s.post(evCollectDone{outcome})
		return
	}

	ok, err := s.inv.Collect(s.PlayerID, treasure, lat, lon)
	if err != nil {
		outcome.err = err
		s.post(evCollectDone{outcome})
		return
	}
	if !ok {
		outcome.duplicate = true
		s.post(evCollectDone{outcome})
		return
	}

	outcome.success = true

	if err := s.stats.RecordTreasureCollected(s.PlayerID, treasure.Reward.Value, elapsed); err != nil {
		outcome.err = err
	} else if unlocked, err := s.stats.CheckAndUnlock(s.PlayerID); err != nil {
		outcome.err = err
	} else {
		outcome.unlocked = unlocked
	}

	s.post(evCollectDone{outcome})
}

func (s *Session) onCollectDone(outcome collectOutcome) {
	reply := s.pendingCollect
	s.pendingCollect = nil

	if outcome.err != nil && !outcome.success {
		msg := outcome.err.Error()
		s.state.Error = &msg
		if reply != nil {
			reply <- CollectResult{Success: false, Reason: "storage error"}
		}
		return
	}

	if outcome.duplicate {
		if reply != nil {
			reply <- CollectResult{Success: false, Reason: "already collected"}
		}
		return
	}

	// Success: drop the selection, take the treasure out of the world,
	// release its geofence and fire the celebration effects.
	s.onClear()
	for i := range s.state.Treasures {
		if s.state.Treasures[i].ID == outcome.treasure.ID {
			s.state.Treasures = append(s.state.Treasures[:i], s.state.Treasures[i+1:]...)
			break
		}
	}
	delete(s.state.NearbyTreasureIDs, outcome.treasure.ID)
	go s.registrar.Unregister([]string{outcome.treasure.ID})

	s.sinks.Haptic(models.ProximityBurning)
	s.sinks.Sound(SoundTreasureFound)
	s.sinks.Notify(NotifyCollected, outcome.treasure.Name,
		"Collected! +"+strconv.Itoa(outcome.treasure.Reward.Value)+" points", false)

	if len(outcome.unlocked) > 0 {
		// Record them all, surface only the first to the player.
		first := outcome.unlocked[0]
		s.sinks.Sound(SoundAchievementUnlocked)
		s.sinks.Notify(NotifyAchievement, first.Title, first.Description, false)
	}

	if outcome.err != nil {
		// Stats/achievement persistence failed after the collect itself
		// succeeded; surface it without undoing the collection.
		msg := outcome.err.Error()
		s.state.Error = &msg
	}

	treasure := outcome.treasure
	result := CollectResult{
		Success:  true,
		Treasure: &treasure,
		Unlocked: outcome.unlocked,
	}
	if reply != nil {
		reply <- result
	}
}

func (s *Session) onRespawn(reply chan error) {
	if s.lastFix == nil {
		reply <- sessionError("no known location")
		return
	}
	lat, lon := s.lastFix.Latitude, s.lastFix.Longitude

	// Deregister everything; a fresh field gets fresh regions.
	var ids []string
	for id := range s.registered {
		ids = append(ids, id)
		delete(s.registered, id)
	}

	go func() {
		if len(ids) > 0 {
			s.registrar.Unregister(ids)
		}
		err := s.spawner.Respawn(s.PlayerID, lat, lon)
		if err == nil {
			s.loadTreasures()
		}
		reply <- err
	}()
}

func (s *Session) loadTreasures() {
	treasures, err := s.spawner.Available(s.PlayerID)
	s.post(evTreasures{treasures: treasures, err: err})
}

func (s *Session) findTreasure(id string) *models.Treasure {
	for i := range s.state.Treasures {
		if s.state.Treasures[i].ID == id {
			return &s.state.Treasures[i]
		}
	}
	return nil
}

// snapshot deep-copies the loop-owned state for readers outside the loop.
func (s *Session) snapshot() models.GameState {
	out := s.state

	out.NearbyTreasureIDs = make(map[string]bool, len(s.state.NearbyTreasureIDs))
	for id := range s.state.NearbyTreasureIDs {
		out.NearbyTreasureIDs[id] = true
	}

	out.Treasures = make([]models.Treasure, len(s.state.Treasures))
	copy(out.Treasures, s.state.Treasures)

	if s.state.UserLatitude != nil {
		lat := *s.state.UserLatitude
		out.UserLatitude = &lat
	}
	if s.state.UserLongitude != nil {
		lon := *s.state.UserLongitude
		out.UserLongitude = &lon
	}
	if s.state.SelectedTreasureID != nil {
		id := *s.state.SelectedTreasureID
		out.SelectedTreasureID = &id
	}
	if s.state.DistanceToTarget != nil {
		d := *s.state.DistanceToTarget
		out.DistanceToTarget = &d
	}
	if s.state.Error != nil {
		msg := *s.state.Error
		out.Error = &msg
	}
	return out
}
