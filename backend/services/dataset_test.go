package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetYearsAndIndex(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	writeEdition(t, dir, 2005, testWorld()[:1])
	require.NoError(t, os.MkdirAll(filepath.Join(dir, mergedDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0755))

	d := NewDataset(dir)
	assert.Equal(t, []int{2005, 2010}, d.Years())

	idx, err := d.Index(2010)
	require.NoError(t, err)
	assert.Equal(t, 4, idx.TotalCountries)
	assert.Equal(t, "france", idx.Countries[0].Slug())

	_, err = d.Index(1999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatasetMissingDirHasNoYears(t *testing.T) {
	d := NewDataset(filepath.Join(t.TempDir(), "absent"))
	assert.Empty(t, d.Years())
	assert.NotNil(t, d.Years())
}

func TestValidSlug(t *testing.T) {
	for _, slug := range []string{"france", "korea_south", "guinea-bissau", "X1"} {
		assert.True(t, ValidSlug(slug), slug)
	}
	for _, slug := range []string{"", "../etc", "a/b", "a.b", "_index", "fr ance"} {
		assert.False(t, ValidSlug(slug), slug)
	}
}

func TestDatasetCountry(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	d := NewDataset(dir)

	c, err := d.Country(2010, "ireland")
	require.NoError(t, err)
	assert.Equal(t, "Ireland", c.Country)
	assert.Equal(t, 250.0, *c.Economy.ExternalDebtBillions)

	_, err = d.Country(2010, "atlantis")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.Country(2010, "../2010/_index")
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestDatasetAllSkipsUnreadableEntries(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2010", "lowland.json"), []byte("{broken"), 0644))
	require.NoError(t, os.Remove(filepath.Join(dir, "2010", "zimbabwe.json")))

	d := NewDataset(dir)
	all, err := d.All(2010)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "France", all[0].Country)
	assert.Equal(t, "Ireland", all[1].Country)
}

func TestDatasetCachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	metrics := NewMetrics()
	d := NewDataset(dir)
	d.SetMetrics(metrics)
	changed := d.Subscribe()

	first, err := d.All(2010)
	require.NoError(t, err)
	require.Len(t, first, 4)

	writeEdition(t, dir, 2010, testWorld()[:2])
	cached, err := d.All(2010)
	require.NoError(t, err)
	assert.Len(t, cached, 4)

	d.Reload()
	select {
	case <-changed:
	default:
		t.Fatal("subscriber was not notified")
	}

	fresh, err := d.All(2010)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	assert.Equal(t, 1.0, counterValue(t, metrics, "factbook_dataset_cache_events_total", "invalidate"))
	assert.Equal(t, 1.0, counterValue(t, metrics, "factbook_dataset_cache_events_total", "hit"))
}

func TestDatasetReloadDuringLoadIsNotCached(t *testing.T) {
	dir := t.TempDir()
	world := testWorld()
	writeEdition(t, dir, 2010, world)
	d := NewDataset(dir)

	reloaded := false
	d.read = func(path string, v any) error {
		if filepath.Base(path) == "ireland.json" && !reloaded {
			reloaded = true
			world[0].Economy.GDPPPPBillions = models.F(99)
			writeEdition(t, dir, 2010, world)
			d.Reload()
		}
		return readJSON(path, v)
	}

	stale, err := d.All(2010)
	require.NoError(t, err)
	require.True(t, reloaded)
	assert.Equal(t, 2000.0, *stale[0].Economy.GDPPPPBillions)

	d.mu.RLock()
	assert.Empty(t, d.countries)
	d.mu.RUnlock()

	fresh, err := d.All(2010)
	require.NoError(t, err)
	assert.Equal(t, 99.0, *fresh[0].Economy.GDPPPPBillions)
}

func TestDatasetReloadDuringIndexLoadIsNotCached(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	d := NewDataset(dir)

	d.read = func(path string, v any) error {
		if filepath.Base(path) == indexFile {
			d.Reload()
		}
		return readJSON(path, v)
	}

	idx, err := d.Index(2010)
	require.NoError(t, err)
	assert.Len(t, idx.Countries, 4)

	d.mu.RLock()
	assert.Empty(t, d.indexes)
	d.mu.RUnlock()
}

func TestDatasetSubscribeCoalesces(t *testing.T) {
	d := NewDataset(t.TempDir())
	ch := d.Subscribe()
	d.Reload()
	d.Reload()
	d.Reload()

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending notification")
	default:
	}
}

func TestDatasetLookup(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	d := NewDataset(dir)

	c, err := d.Lookup(2010, "zimbabwe")
	require.NoError(t, err)
	assert.Equal(t, "Zimbabwe", c.Country)

	c, err = d.Lookup(2010, "IRELAND")
	require.NoError(t, err)
	assert.Equal(t, "Ireland", c.Country)

	_, err = d.Lookup(2010, "Narnia")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatasetWatchDropsCacheOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeEdition(t, dir, 2010, testWorld())
	d := NewDataset(dir)
	require.NoError(t, d.Watch())
	t.Cleanup(func() { d.Close() })
	changed := d.Subscribe()

	all, err := d.All(2010)
	require.NoError(t, err)
	require.Len(t, all, 4)

	writeEdition(t, dir, 2010, testWorld()[:3])

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
	assert.Eventually(t, func() bool {
		all, err := d.All(2010)
		return err == nil && len(all) == 3
	}, 5*time.Second, 50*time.Millisecond)
}

func TestDatasetMerge(t *testing.T) {
	dir := t.TempDir()
	d := NewDataset(dir)

	_, err := d.TimeSeries()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Merge()
	assert.ErrorIs(t, err, ErrNotFound)

	old := testWorld()
	cur := testWorld()
	cur[0].Economy.GDPPPPBillions = models.F(2600)
	writeEdition(t, dir, 2005, old)
	writeEdition(t, dir, 2010, cur)

	res, err := d.Merge()
	require.NoError(t, err)
	assert.Equal(t, []int{2005, 2010}, res.Years)
	assert.Equal(t, 4, res.Countries)
	require.NotEmpty(t, res.MostChanged)
	assert.Equal(t, analysis.AlertCount{Key: "france", Alerts: 1}, res.MostChanged[0])

	raw, err := d.TimeSeries()
	require.NoError(t, err)
	var ts analysis.TimeSeries
	require.NoError(t, json.Unmarshal(raw, &ts))
	assert.Equal(t, []analysis.Point{{Year: 2005, Value: 2000}, {Year: 2010, Value: 2600}}, ts["france"]["gdp_ppp_billions"])

	raw, err = d.Changes()
	require.NoError(t, err)
	var changes analysis.Changes
	require.NoError(t, json.Unmarshal(raw, &changes))
	assert.Equal(t, []string{"gdp_ppp_billions_major_change"}, changes["france"]["2005_to_2010"].Alerts)
}

func TestDatasetChangesUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, mergedDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, mergedDir, changesFile), []byte("not json"), 0644))

	_, err := NewDataset(dir).Changes()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
