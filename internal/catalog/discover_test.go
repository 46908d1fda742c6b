package catalog_test

import (
	"path/filepath"
	"testing"

	"fxchain/internal/catalog"
	"fxchain/internal/logging"
	"fxchain/internal/testsupport"
)

var testSuffixes = []string{".vst3", ".component", ".lv2"}

func TestDiscoverFindsBundlesWithoutDescending(t *testing.T) {
	root := t.TempDir()
	reverb := testsupport.MakeBundle(t, root, "vendor/Reverb.vst3")
	// A nested directory that looks like a bundle must not be reported
	// separately because discovery stops at the outer bundle.
	testsupport.MakeBundle(t, reverb, "Contents/Inner.vst3")
	chorus := testsupport.MakeBundle(t, root, "Chorus.component")
	testsupport.MakeBundle(t, root, "not-a-plugin/docs")

	got := catalog.Discover([]string{root}, testSuffixes, logging.NewNop())
	want := []string{chorus, reverb}
	if len(got) != len(want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Discover[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverDeduplicatesAcrossRoots(t *testing.T) {
	root := t.TempDir()
	bundle := testsupport.MakeBundle(t, root, "Phaser.vst3")

	got := catalog.Discover([]string{root, root, filepath.Join(root, "missing")}, testSuffixes, logging.NewNop())
	if len(got) != 1 || got[0] != bundle {
		t.Fatalf("Discover = %v, want [%s]", got, bundle)
	}
}

func TestDiscoverMatchesSuffixCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	bundle := testsupport.MakeBundle(t, root, "Shouty.VST3")

	got := catalog.Discover([]string{root}, testSuffixes, logging.NewNop())
	if len(got) != 1 || got[0] != bundle {
		t.Fatalf("Discover = %v, want [%s]", got, bundle)
	}
}

func TestDiscoverEmptyRootsYieldNothing(t *testing.T) {
	if got := catalog.Discover(nil, testSuffixes, logging.NewNop()); len(got) != 0 {
		t.Fatalf("Discover(nil) = %v", got)
	}
}
