package presets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheetwright/imposer/pkg/imposition"
)

func TestBuiltinsContainsAllFiveRequiredPresets(t *testing.T) {
	want := []string{
		"business_card_sra3",
		"a5_saddle_sra3",
		"a4_cut_stack_sra3",
		"dl_flyer_sra4",
		"a6_postcard_sra3",
	}
	for _, id := range want {
		p, ok := builtins[id]
		require.True(t, ok, "missing built-in preset %s", id)
		require.Equal(t, id, p.ID)
		require.True(t, p.Builtin)
		require.NoError(t, p.Config.Validate())
	}
}

func TestBuiltinBusinessCardMatchesKnownValues(t *testing.T) {
	p := builtins["business_card_sra3"]
	require.Equal(t, imposition.StepAndRepeat, p.Config.Mode)
	require.Equal(t, 90.0, p.Config.TrimWidth)
	require.Equal(t, 55.0, p.Config.TrimHeight)
	require.Equal(t, 3.0, p.Config.Bleed.Top)
	require.True(t, p.Config.AutoRotate)
	require.Equal(t, 320.0, p.Config.Sheet.SheetWidth)
	require.Equal(t, 450.0, p.Config.Sheet.SheetHeight)
}

func TestBuiltinDLFlyerCarriesGap(t *testing.T) {
	p := builtins["dl_flyer_sra4"]
	require.Equal(t, imposition.StepAndRepeat, p.Config.Mode)
	require.Equal(t, 2.0, p.Config.GapBetweenItems)
	require.Equal(t, 225.0, p.Config.Sheet.SheetWidth)
}

func TestBuiltinSaddleStitchUsesBookletMode(t *testing.T) {
	p := builtins["a5_saddle_sra3"]
	require.Equal(t, imposition.BookletSaddleStitch, p.Config.Mode)
	require.Equal(t, 148.0, p.Config.TrimWidth)
	require.Equal(t, 210.0, p.Config.TrimHeight)
}

func TestBuiltinIDsSorted(t *testing.T) {
	ids := BuiltinIDs()
	require.Len(t, ids, 5)
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i])
	}
}

func TestStoreSaveGetListRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := builtins["a6_postcard_sra3"].Config
	cfg.TrimWidth = 120

	saved, err := store.Save(Preset{Name: "My Custom Postcard!!", Config: cfg})
	require.NoError(t, err)
	require.Equal(t, "My Custom Postcard!!", saved.Name) // Name is stored verbatim
	require.Equal(t, "My Custom Postcard", saved.ID)      // ID is the sanitized filename stem
	require.False(t, saved.Builtin)

	got, err := store.Get("My Custom Postcard")
	require.NoError(t, err)
	require.Equal(t, 120.0, got.Config.TrimWidth)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 6) // 5 built-in + 1 saved

	var foundSaved bool
	for _, p := range all {
		if p.ID == "My Custom Postcard" {
			foundSaved = true
		}
	}
	require.True(t, foundSaved)
}

func TestStoreGetUnknownIDReturnsNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("does_not_exist")
	require.Error(t, err)
}

func TestStoreSaveRejectsEmptySanitizedName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(Preset{Name: "!!!???", Config: builtins["business_card_sra3"].Config})
	require.ErrorIs(t, err, ErrInvalidPresetName)
}

func TestStoreSaveOverwritesExistingFileOfSameName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := builtins["business_card_sra3"].Config
	_, err = store.Save(Preset{Name: "dup", Config: cfg})
	require.NoError(t, err)

	cfg.TrimWidth = 42
	_, err = store.Save(Preset{Name: "dup", Config: cfg})
	require.NoError(t, err)

	got, err := store.Get("dup")
	require.NoError(t, err)
	require.Equal(t, 42.0, got.Config.TrimWidth)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 6) // overwritten, not duplicated
}
