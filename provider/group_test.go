package provider

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
	"github.com/broady/commonizer/engine"
)

func TestGroupDeclarations(t *testing.T) {
	modules := []*cir.Module{loadManifest(t, "linux.yaml"), loadManifest(t, "macos.yaml")}
	groups, unmatched := GroupDeclarations(modules)

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.ID.String())
		if diff := cmp.Diff([]string{"linux_x64", "macos_arm64"}, g.Platforms); diff != "" {
			t.Errorf("%s platforms mismatch (-want +got):\n%s", g.ID, diff)
		}
		if len(g.Variants) != 2 {
			t.Errorf("%s has %d variants", g.ID, len(g.Variants))
		}
	}
	wantIDs := []string{
		"acme/io.Conn",
		"acme/io.Coords",
		"acme/io.Poller",
		"acme/io.Ref",
		"acme/io.Same",
		"acme/shared.Box",
		"acme/shared.Handle",
		"acme/shared.Pair",
	}
	if diff := cmp.Diff(wantIDs, ids); diff != "" {
		t.Errorf("group IDs mismatch (-want +got):\n%s", diff)
	}

	want := []Unmatched{
		{ID: cir.ClassifierID{Package: "acme/io", Name: "DarwinConn"}, Platforms: []string{"macos_arm64"}, Reason: "not declared on linux_x64"},
		{ID: cir.ClassifierID{Package: "acme/io", Name: "EpollPoller"}, Platforms: []string{"linux_x64"}, Reason: "not declared on macos_arm64"},
		{ID: cir.ClassifierID{Package: "acme/io", Name: "KqueuePoller"}, Platforms: []string{"macos_arm64"}, Reason: "not declared on linux_x64"},
		{ID: cir.ClassifierID{Package: "acme/io", Name: "PosixConn"}, Platforms: []string{"linux_x64"}, Reason: "not declared on macos_arm64"},
	}
	if diff := cmp.Diff(want, unmatched); diff != "" {
		t.Errorf("unmatched mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupDeclarations_KindMismatch(t *testing.T) {
	a := &cir.Module{Platform: "a"}
	a.Add("lib", &cir.TypeAlias{Name: "X", Underlying: cir.ClassRef("lib", "Y")})
	b := &cir.Module{Platform: "b"}
	b.Add("lib", &cir.Class{Name: "X"})

	groups, unmatched := GroupDeclarations([]*cir.Module{a, b})
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
	if len(unmatched) != 1 || unmatched[0].Reason != "declared as typealias and class" {
		t.Errorf("unmatched = %+v", unmatched)
	}
}

func TestGroupDeclarations_FirstDuplicateWins(t *testing.T) {
	first := &cir.TypeAlias{Name: "X", Underlying: cir.ClassRef("lib", "A")}
	m := &cir.Module{Platform: "a"}
	m.Add("lib", first)
	m.Add("lib", &cir.TypeAlias{Name: "X", Underlying: cir.ClassRef("lib", "B")})

	groups, _ := GroupDeclarations([]*cir.Module{m})
	if len(groups) != 1 || groups[0].Variants[0] != first {
		t.Errorf("expected the first declaration to be grouped")
	}
}

func TestGroupDeclarations_Commonize(t *testing.T) {
	modules := []*cir.Module{loadManifest(t, "linux.yaml"), loadManifest(t, "macos.yaml")}
	groups, _ := GroupDeclarations(modules)

	cache, err := classifiers.New(classifiers.PrefixPredicate("acme/shared"))
	if err != nil {
		t.Fatal(err)
	}
	e := engine.New(cache)

	var aliases []*engine.Group
	for _, g := range groups {
		if e.Supports(g.Kind) {
			aliases = append(aliases, g)
		}
	}
	outcomes, err := e.Run(context.Background(), aliases)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := make(map[string]cir.Strategy)
	for _, out := range outcomes {
		got[out.ID.String()] = out.Strategy
	}
	want := map[string]cir.Strategy{
		"acme/io.Conn":       cir.StrategyShortCircuit,
		"acme/io.Coords":     cir.StrategyShortCircuit,
		"acme/io.Poller":     cir.StrategyExpectClass,
		"acme/io.Ref":        cir.StrategyExpectClass,
		"acme/io.Same":       cir.StrategyShortCircuit,
		"acme/shared.Handle": cir.StrategyShortCircuit,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("strategies mismatch (-want +got):\n%s", diff)
	}

	for _, out := range outcomes {
		if out.ID.Name != "Conn" {
			continue
		}
		alias := out.Declaration.(*cir.TypeAlias)
		if got, want := alias.Underlying.String(), "acme/shared.Handle"; got != want {
			t.Errorf("Conn underlying = %s, want the shared anchor %s", got, want)
		}
	}
}
