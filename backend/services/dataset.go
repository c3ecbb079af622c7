package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/system"

	"github.com/fsnotify/fsnotify"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidSlug = errors.New("invalid slug")
)

const (
	indexFile      = "_index.json"
	mergedDir      = "_merged"
	timeseriesFile = "timeseries.json"
	changesFile    = "changes.json"
)

var (
	yearDirPattern = regexp.MustCompile(`^\d{4}$`)
	slugPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Dataset reads the extracted Factbook editions under one data directory:
// <dir>/<year>/_index.json, <dir>/<year>/<slug>.json and <dir>/_merged/.
// Parsed editions are cached until the files change or Reload is called.
type Dataset struct {
	dir     string
	metrics *Metrics
	read    func(path string, v any) error

	// gen advances on every Reload. A load started under an older
	// generation is returned to its caller but not cached.
	mu        sync.RWMutex
	gen       uint64
	indexes   map[int]*models.Index
	countries map[int][]*models.Country

	subsMu sync.Mutex
	subs   []chan struct{}

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewDataset(dir string) *Dataset {
	return &Dataset{
		dir:       dir,
		read:      readJSON,
		indexes:   make(map[int]*models.Index),
		countries: make(map[int][]*models.Country),
	}
}

// SetMetrics enables cache hit/miss accounting.
func (d *Dataset) SetMetrics(m *Metrics) {
	d.metrics = m
}

func (d *Dataset) Dir() string {
	return d.dir
}

// Years lists the edition directories in ascending order. An unreadable data
// directory yields an empty list.
func (d *Dataset) Years() []int {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return []int{}
	}
	years := []int{}
	for _, e := range entries {
		if !e.IsDir() || !yearDirPattern.MatchString(e.Name()) {
			continue
		}
		y, _ := strconv.Atoi(e.Name())
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Index returns the edition index. A missing or unparseable index is ErrNotFound.
func (d *Dataset) Index(year int) (*models.Index, error) {
	d.mu.RLock()
	idx, ok := d.indexes[year]
	gen := d.gen
	d.mu.RUnlock()
	if ok {
		d.metrics.CacheEvent("hit")
		return idx, nil
	}
	d.metrics.CacheEvent("miss")

	idx = &models.Index{}
	if err := d.read(filepath.Join(d.yearDir(year), indexFile), idx); err != nil {
		return nil, fmt.Errorf("index %d: %w", year, err)
	}

	d.mu.Lock()
	if d.gen == gen {
		d.indexes[year] = idx
	}
	d.mu.Unlock()
	return idx, nil
}

// ValidSlug reports whether slug can name a country file.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug) && slug != strings.TrimSuffix(indexFile, ".json")
}

// Country loads one record by file slug.
func (d *Dataset) Country(year int, slug string) (*models.Country, error) {
	if !ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	if all, ok := d.cached(year); ok {
		for _, c := range all {
			if c.Slug() == slug {
				return c, nil
			}
		}
	}

	c := &models.Country{}
	if err := d.read(filepath.Join(d.yearDir(year), slug+".json"), c); err != nil {
		return nil, fmt.Errorf("country %s/%d: %w", slug, year, err)
	}
	return c, nil
}

func (d *Dataset) cached(year int) ([]*models.Country, bool) {
	all, ok, _ := d.cachedAt(year)
	return all, ok
}

func (d *Dataset) cachedAt(year int) ([]*models.Country, bool, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	all, ok := d.countries[year]
	return all, ok, d.gen
}

// All loads every record listed in the edition index, in index order.
// Entries whose file is missing or unparseable are skipped.
func (d *Dataset) All(year int) ([]*models.Country, error) {
	all, ok, gen := d.cachedAt(year)
	if ok {
		d.metrics.CacheEvent("hit")
		return all, nil
	}

	idx, err := d.Index(year)
	if err != nil {
		return nil, err
	}

	all = make([]*models.Country, 0, len(idx.Countries))
	for _, entry := range idx.Countries {
		c := &models.Country{}
		if err := d.read(filepath.Join(d.yearDir(year), filepath.Base(entry.File)), c); err != nil {
			system.Warn("Skipping %s (%d): %v", entry.File, year, err)
			continue
		}
		all = append(all, c)
	}

	d.mu.Lock()
	if d.gen == gen {
		d.countries[year] = all
	}
	d.mu.Unlock()
	return all, nil
}

// Editions loads every available year. Years without a readable index are left out.
func (d *Dataset) Editions() map[int][]*models.Country {
	out := make(map[int][]*models.Country)
	for _, y := range d.Years() {
		all, err := d.All(y)
		if err != nil {
			system.Warn("Edition %d unavailable: %v", y, err)
			continue
		}
		out[y] = all
	}
	return out
}

// Lookup finds a record by slug or by exact country name, case-insensitively.
func (d *Dataset) Lookup(year int, key string) (*models.Country, error) {
	all, err := d.All(year)
	if err != nil {
		return nil, err
	}
	slug := models.Slugify(key)
	for _, c := range all {
		if c.Slug() == slug || strings.EqualFold(c.Country, key) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("country %q: %w", key, ErrNotFound)
}

// Reload drops every cached edition and tells subscribers.
func (d *Dataset) Reload() {
	d.mu.Lock()
	d.gen++
	d.indexes = make(map[int]*models.Index)
	d.countries = make(map[int][]*models.Country)
	d.mu.Unlock()

	d.metrics.CacheEvent("invalidate")
	d.notify()
}

// Subscribe returns a channel that receives a value after the data changes.
// Bursts of changes coalesce into one pending notification.
func (d *Dataset) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	d.subsMu.Lock()
	d.subs = append(d.subs, ch)
	d.subsMu.Unlock()
	return ch
}

func (d *Dataset) notify() {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	for _, ch := range d.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch starts an fsnotify watcher on the data directory and its year
// directories. Any change to a data file drops the cache.
func (d *Dataset) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(d.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", d.dir, err)
	}
	for _, y := range d.Years() {
		if err := w.Add(d.yearDir(y)); err != nil {
			system.Warn("Cannot watch %s: %v", d.yearDir(y), err)
		}
	}

	d.watcher = w
	d.stopChan = make(chan struct{})
	d.doneChan = make(chan struct{})
	go d.watchLoop()

	system.Info("Watching %s for data changes", d.dir)
	return nil
}

func (d *Dataset) watchLoop() {
	defer close(d.doneChan)
	for {
		select {
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			d.handleEvent(ev)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			system.Warn("Data watcher error: %v", err)
		case <-d.stopChan:
			return
		}
	}
}

func (d *Dataset) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	rel, err := filepath.Rel(d.dir, ev.Name)
	if err != nil || strings.HasPrefix(rel, mergedDir) {
		return
	}

	// New edition directory: watch it too.
	if ev.Has(fsnotify.Create) && yearDirPattern.MatchString(rel) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := d.watcher.Add(ev.Name); err != nil {
				system.Warn("Cannot watch %s: %v", ev.Name, err)
			}
		}
	}

	system.Info("Data changed (%s %s), dropping cache", ev.Op, rel)
	d.Reload()
}

// Close stops the watcher, if running.
func (d *Dataset) Close() error {
	if d.watcher == nil {
		return nil
	}
	close(d.stopChan)
	err := d.watcher.Close()
	<-d.doneChan
	d.watcher = nil
	return err
}

// MergeResult summarises a time-series rebuild.
type MergeResult struct {
	Years       []int                 `json:"years"`
	Countries   int                   `json:"countries"`
	MostChanged []analysis.AlertCount `json:"mostChanged"`
}

// Merge rebuilds _merged/timeseries.json and _merged/changes.json from every
// edition on disk.
func (d *Dataset) Merge() (MergeResult, error) {
	editions := d.Editions()
	if len(editions) == 0 {
		return MergeResult{}, fmt.Errorf("no editions in %s: %w", d.dir, ErrNotFound)
	}

	ts := analysis.BuildTimeSeries(editions)
	changes := analysis.BuildChanges(editions)

	out := filepath.Join(d.dir, mergedDir)
	if err := os.MkdirAll(out, 0755); err != nil {
		return MergeResult{}, fmt.Errorf("create %s: %w", out, err)
	}
	if err := writeJSON(filepath.Join(out, timeseriesFile), ts); err != nil {
		return MergeResult{}, err
	}
	if err := writeJSON(filepath.Join(out, changesFile), changes); err != nil {
		return MergeResult{}, err
	}

	res := MergeResult{
		Countries:   len(ts),
		MostChanged: analysis.MostChanged(changes, 10),
	}
	for y := range editions {
		res.Years = append(res.Years, y)
	}
	sort.Ints(res.Years)
	system.Info("Merged %d editions, %d countries tracked", len(res.Years), res.Countries)
	return res, nil
}

// TimeSeries returns the merged series file as raw JSON.
func (d *Dataset) TimeSeries() (json.RawMessage, error) {
	return readRaw(filepath.Join(d.dir, mergedDir, timeseriesFile))
}

// Changes returns the merged year-over-year changes as raw JSON.
func (d *Dataset) Changes() (json.RawMessage, error) {
	return readRaw(filepath.Join(d.dir, mergedDir, changesFile))
}

func (d *Dataset) yearDir(year int) string {
	return filepath.Join(d.dir, strconv.Itoa(year))
}

// readJSON maps a missing or malformed file to ErrNotFound.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrNotFound, filepath.Base(path), err)
	}
	return nil
}

// readRaw distinguishes a missing file (ErrNotFound) from an unreadable one.
func readRaw(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("parse %s: invalid JSON", path)
	}
	return data, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
