package rig

import (
	"sync"
	"time"
)

type vfoSlot struct {
	freq    int64
	freqAt  time.Time
	mode    Mode
	modeAt  time.Time
	width   int
	widthAt time.Time
}

// Cache is the short-lived per-VFO state store from spec §4.6: last
// known (freq, mode, width) per VFO slot, each with its own
// timestamp, plus PTT/split/raw-IF-frame slots with theirs. A zero
// Cache is not usable; build one with NewCache.
type Cache struct {
	mu  sync.Mutex
	now func() time.Time

	slots map[VFO]*vfoSlot
	ttl   map[string]time.Duration

	ptt   bool
	pttAt time.Time

	split   bool
	splitAt time.Time

	ifFrame []byte
	ifAt    time.Time
}

// NewCache builds an empty Cache with the spec-mandated 500ms default
// TTL on every attribute.
func NewCache() *Cache {
	return &Cache{
		now:   time.Now,
		slots: map[VFO]*vfoSlot{},
		ttl: map[string]time.Duration{
			"freq": defaultCacheTTL, "mode": defaultCacheTTL, "width": defaultCacheTTL,
			"ptt": defaultCacheTTL, "split": defaultCacheTTL, "if": defaultCacheTTL,
		},
	}
}

// SetTTL overrides the freshness window for one attribute
// ("freq"/"mode"/"width"/"ptt"/"split"/"if"), carrying over the
// original's per-field configurable cache timeout
// (rig_set_cache_timeout_ms) rather than hard-coding 500ms everywhere.
func (c *Cache) SetTTL(attr string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl[attr] = d
}

// SetClock overrides the cache's notion of "now"; used by tests to
// make age assertions deterministic.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Cache) slot(v VFO) *vfoSlot {
	s, ok := c.slots[v]
	if !ok {
		s = &vfoSlot{}
		c.slots[v] = s
	}
	return s
}

func (c *Cache) fresh(at time.Time, attr string) bool {
	if at.IsZero() {
		return false
	}
	return c.now().Sub(at) < c.ttl[attr]
}

// ReadFreq returns the cached frequency for v and its age, and whether
// it is still fresh enough to serve without a wire read.
func (c *Cache) ReadFreq(v VFO) (hz int64, age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	return s.freq, c.now().Sub(s.freqAt), c.fresh(s.freqAt, "freq")
}

// WriteFreq records a freshly observed frequency for v.
func (c *Cache) WriteFreq(v VFO, hz int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	s.freq, s.freqAt = hz, c.now()
}

func (c *Cache) ReadMode(v VFO) (m Mode, age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	return s.mode, c.now().Sub(s.modeAt), c.fresh(s.modeAt, "mode")
}

func (c *Cache) WriteMode(v VFO, m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	s.mode, s.modeAt = m, c.now()
}

func (c *Cache) ReadWidth(v VFO) (hz int, age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	return s.width, c.now().Sub(s.widthAt), c.fresh(s.widthAt, "width")
}

func (c *Cache) WriteWidth(v VFO, hz int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	s.width, s.widthAt = hz, c.now()
}

func (c *Cache) ReadPTT() (on bool, age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ptt, c.now().Sub(c.pttAt), c.fresh(c.pttAt, "ptt")
}

func (c *Cache) WritePTT(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ptt, c.pttAt = on, c.now()
}

func (c *Cache) ReadSplit() (on bool, age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.split, c.now().Sub(c.splitAt), c.fresh(c.splitAt, "split")
}

func (c *Cache) WriteSplit(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.split, c.splitAt = on, c.now()
}

// ReadIF returns the last raw IF-response frame text some dialects
// cache verbatim (spec §4.2 step 1), and whether it is still fresh.
func (c *Cache) ReadIF() (frame []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fresh(c.ifAt, "if") {
		return nil, false
	}
	return append([]byte(nil), c.ifFrame...), true
}

func (c *Cache) WriteIF(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ifFrame = append([]byte(nil), frame...)
	c.ifAt = c.now()
}

// InvalidateIF drops the cached raw IF frame without touching
// anything else, spec §4.2 step 2: any recognized set command
// invalidates it before a new command reaches the wire.
func (c *Cache) InvalidateIF() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ifFrame = nil
	c.ifAt = time.Time{}
}

// InvalidateVFO drops only the mode/width pair of v, spec §4.6: "set-
// mode on the same VFO invalidates only the mode/width pair of that
// VFO."
func (c *Cache) InvalidateVFO(v VFO) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot(v)
	s.mode, s.modeAt = 0, time.Time{}
	s.width, s.widthAt = 0, time.Time{}
}

// InvalidateAll drops every slot: band-change on a freq-set, or
// power-off, per spec §4.6.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = map[VFO]*vfoSlot{}
	c.ptt, c.pttAt = false, time.Time{}
	c.split, c.splitAt = false, time.Time{}
	c.ifFrame, c.ifAt = nil, time.Time{}
}
