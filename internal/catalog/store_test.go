package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fxchain/internal/params"
	"fxchain/internal/services"
	"fxchain/internal/testsupport"
)

func TestUpsertIsIdempotentOnPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := store.Upsert(ctx, "/plugins/Reverb.vst3", "Reverb")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if first.Scanned() {
		t.Fatal("new plugin must carry the never-scanned sentinel")
	}

	second, err := store.Upsert(ctx, "/plugins/Reverb.vst3", "Reverb Renamed")
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second entry: %d != %d", second.ID, first.ID)
	}
	if second.Name != "Reverb Renamed" {
		t.Fatalf("name not refreshed: %q", second.Name)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 catalog entry, got %d", len(all))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.GetByID(context.Background(), 999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchMatchesNameAndPathCaseInsensitive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Upsert(ctx, "/plugins/TAL-Reverb-4.vst3", "TAL Reverb 4"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := store.Upsert(ctx, "/plugins/Compressor.vst3", "Compressor"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := store.Search(ctx, "reverb")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "TAL Reverb 4" {
		t.Fatalf("unexpected hits: %#v", hits)
	}

	hits, err = store.Search(ctx, "PLUGINS")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("path search expected 2 hits, got %d", len(hits))
	}
}

func TestReplaceParamsSwapsAtomicallyAndStampsScan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	plugin, err := store.Upsert(ctx, "/plugins/Delay.vst3", "Delay")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	scannedAt := time.Unix(1700000000, 0)
	initial := []params.Param{
		{Index: 0, Name: "Time", Values: "0 ms to 2000 ms", Default: "250 ms"},
		{Index: 1, Name: "Feedback", Values: "0% to 100%", Default: "30%", SupportsText: true},
	}
	if err := store.ReplaceParams(ctx, plugin.ID, initial, scannedAt); err != nil {
		t.Fatalf("ReplaceParams: %v", err)
	}

	stored, err := store.Params(ctx, plugin.ID)
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if len(stored) != 2 || stored[0].Name != "Time" || !stored[1].SupportsText {
		t.Fatalf("unexpected params: %#v", stored)
	}

	plugin, err = store.GetByID(ctx, plugin.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if plugin.LastScanned != scannedAt.Unix() {
		t.Fatalf("last_scanned = %d, want %d", plugin.LastScanned, scannedAt.Unix())
	}

	replacement := []params.Param{{Index: 0, Name: "Mix", Values: "0% to 100%", Default: "50%"}}
	if err := store.ReplaceParams(ctx, plugin.ID, replacement, scannedAt.Add(time.Hour)); err != nil {
		t.Fatalf("second ReplaceParams: %v", err)
	}
	stored, err = store.Params(ctx, plugin.ID)
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if len(stored) != 1 || stored[0].Name != "Mix" {
		t.Fatalf("old params survived replacement: %#v", stored)
	}
}

func TestUsableParamsFiltersSentinelsAndControlMaps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	plugin, err := store.Upsert(ctx, "/plugins/Synth.vst3", "Synth")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	set := []params.Param{
		{Index: 0, Name: "Cutoff", Values: "20 Hz to 20000 Hz", Default: "1000 Hz"},
		{Index: 1, Name: "Undocumented", Values: "   "},
		{Index: 2, Name: "Weird", Values: params.MalformedRange},
		{Index: 3, Name: "MIDI CC 1|1", Values: "0 to 127"},
		{Index: 4, Name: "Mode", Values: "[A, B]", Default: "A"},
	}
	if err := store.ReplaceParams(ctx, plugin.ID, set, time.Now()); err != nil {
		t.Fatalf("ReplaceParams: %v", err)
	}

	usable, err := store.UsableParams(ctx, plugin.ID)
	if err != nil {
		t.Fatalf("UsableParams: %v", err)
	}
	if len(usable) != 2 {
		t.Fatalf("expected 2 usable params, got %d: %#v", len(usable), usable)
	}
	if usable[0].Name != "Cutoff" || usable[1].Name != "Mode" {
		t.Fatalf("wrong usable params: %#v", usable)
	}
}
