package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/floatify/internal/model"
)

func TestSortNativesNewestFirst(t *testing.T) {
	base := time.Unix(1000, 0)
	natives := []model.Native{
		{Key: "1", PostedAt: base.Add(100 * time.Second)},
		{Key: "2", PostedAt: base.Add(300 * time.Second)},
		{Key: "3", PostedAt: base.Add(200 * time.Second)},
	}

	SortNativesNewestFirst(natives)

	assert.Equal(t, "2", natives[0].Key)
	assert.Equal(t, "3", natives[1].Key)
	assert.Equal(t, "1", natives[2].Key)
}

func TestSortNativesNewestFirst_Empty(t *testing.T) {
	var natives []model.Native
	SortNativesNewestFirst(natives)
	assert.Len(t, natives, 0)
}

func TestSortShortcuts_CaseInsensitive(t *testing.T) {
	shortcuts := []model.AppShortcut{
		{PackageName: "s", DisplayName: "slack"},
		{PackageName: "f", DisplayName: "Firefox"},
		{PackageName: "d", DisplayName: "discord"},
		{PackageName: "a", DisplayName: "Alacritty"},
	}

	SortShortcuts(shortcuts)

	var got []string
	for _, s := range shortcuts {
		got = append(got, s.PackageName)
	}
	assert.Equal(t, []string{"a", "d", "f", "s"}, got)
}

func TestSortApps_TieBreaksOnID(t *testing.T) {
	apps := []model.AppInfo{
		{ID: "b.desktop", Name: "Editor"},
		{ID: "a.desktop", Name: "editor"},
		{ID: "c.desktop", Name: "Browser"},
	}

	SortApps(apps)

	assert.Equal(t, "c.desktop", apps[0].ID)
	assert.Equal(t, "a.desktop", apps[1].ID)
	assert.Equal(t, "b.desktop", apps[2].ID)
}

func TestLookupByKey(t *testing.T) {
	records := []model.NotificationRecord{{Key: "a"}, {Key: "b"}}

	found := LookupByKey(records, "b")
	if assert.NotNil(t, found) {
		assert.Equal(t, "b", found.Key)
	}
	assert.Nil(t, LookupByKey(records, "zzz"))
}

func TestSearchApps(t *testing.T) {
	apps := []model.AppInfo{
		{ID: "org.mozilla.firefox", Name: "Firefox"},
		{ID: "com.slack.Slack", Name: "Slack"},
	}

	assert.Len(t, SearchApps(apps, ""), 2)
	assert.Len(t, SearchApps(apps, "FIRE"), 1)
	assert.Len(t, SearchApps(apps, "slack.slack"), 1)
	assert.Empty(t, SearchApps(apps, "chrome"))
}

func TestNormalizeIDs(t *testing.T) {
	got := NormalizeIDs([]string{" a ", "b", "", "a", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
