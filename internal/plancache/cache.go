// Package plancache caches derived goal plans keyed by a stamp of the inputs
// that produced them.
//
// Entries live under one key per owner. A lookup only hits when the stored
// stamp equals the stamp of the caller's current inputs, so a plan derived
// from an old profile or goal is never served. Writers also call Invalidate
// once each profile or goal write has committed or failed.
package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/metrics"
)

const namespace = "plan"

type entry struct {
	Stamp   string             `json:"stamp"`
	Derived engine.DerivedGoal `json:"derived"`
}

// Cache fronts engine.Derive with a Store.
type Cache struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
	group singleflight.Group
}

func New(store Store, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, log: log}
}

// Stamp hashes the full input pair. Any change to any field changes it.
func Stamp(p engine.Profile, g engine.Goal) string {
	b, _ := json.Marshal(struct {
		P engine.Profile `json:"p"`
		G engine.Goal    `json:"g"`
	}{p, g})
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

func key(owner string) string {
	return namespace + ":" + owner
}

// Derived returns the plan for (p, g), computing and storing it on a miss.
// Store failures degrade to computing directly; only validation and engine
// errors are returned.
func (c *Cache) Derived(ctx context.Context, owner string, p engine.Profile, g engine.Goal) (engine.DerivedGoal, error) {
	stamp := Stamp(p, g)

	if d, ok := c.lookup(ctx, owner, stamp); ok {
		metrics.PlanCacheLookups.WithLabelValues("hit").Inc()
		return d, nil
	}
	metrics.PlanCacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(owner+":"+stamp, func() (any, error) {
		start := time.Now()
		d, err := engine.Derive(p, g)
		metrics.EngineDuration.WithLabelValues("derive").Observe(time.Since(start).Seconds())
		if err != nil {
			return engine.DerivedGoal{}, err
		}
		c.save(ctx, owner, entry{Stamp: stamp, Derived: d})
		return d, nil
	})
	if err != nil {
		return engine.DerivedGoal{}, err
	}
	return v.(engine.DerivedGoal), nil
}

func (c *Cache) lookup(ctx context.Context, owner, stamp string) (engine.DerivedGoal, bool) {
	b, err := c.store.Get(ctx, key(owner))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warn("plan cache get failed", zap.String("owner", owner), zap.Error(err))
		}
		return engine.DerivedGoal{}, false
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil || e.Stamp != stamp {
		return engine.DerivedGoal{}, false
	}
	return e.Derived, true
}

func (c *Cache) save(ctx context.Context, owner string, e entry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key(owner), b, c.ttl); err != nil {
		c.log.Warn("plan cache set failed", zap.String("owner", owner), zap.Error(err))
	}
}

// Invalidate drops the owner's entry.
func (c *Cache) Invalidate(ctx context.Context, owner string) error {
	if err := c.store.Delete(ctx, key(owner)); err != nil {
		return fmt.Errorf("invalidate plan cache for %s: %w", owner, err)
	}
	return nil
}

// UserOwner is the cache owner for an authenticated user's stored plan.
func UserOwner(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// PreviewOwner is the cache owner for an anonymous preview of the given inputs.
func PreviewOwner(p engine.Profile, g engine.Goal) string {
	return "preview:" + Stamp(p, g)
}
