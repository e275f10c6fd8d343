package toolsets

import (
	"context"
	"testing"
)

func newTestOrchestrator(t *testing.T, mode Mode) (*Orchestrator, *fakeSurface) {
	t.Helper()
	surface := &fakeSurface{}
	m := newTestManager(t, nil, surface)
	return NewOrchestrator(m, surface, mode, nil), surface
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"static":  ModeStatic,
		"STATIC":  ModeStatic,
		" static": ModeStatic,
		"dynamic": ModeDynamic,
		"":        ModeDynamic,
		"bogus":   ModeDynamic,
	}
	for input, want := range cases {
		if got := ParseMode(input); got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestInstallDynamicRegistersAllMetaTools(t *testing.T) {
	orch, surface := newTestOrchestrator(t, ModeDynamic)
	if err := orch.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	got := surface.registered()
	want := []string{MetaEnableToolset, MetaDisableToolset, MetaListToolsets, MetaDescribeToolset, MetaListTools}
	if len(got) != len(want) {
		t.Fatalf("registered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("registered %v, want %v", got, want)
		}
	}
	status := orch.Manager().Status()
	if len(status.ToolsetTools["_meta"]) != len(want) {
		t.Fatalf("meta tools not booked: %#v", status.ToolsetTools)
	}
}

func TestInstallStaticRegistersListingOnly(t *testing.T) {
	orch, surface := newTestOrchestrator(t, ModeStatic)
	if err := orch.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	got := surface.registered()
	if len(got) != 1 || got[0] != MetaListTools {
		t.Fatalf("registered %v, want only %q", got, MetaListTools)
	}
}

func TestEnableDisableHandlers(t *testing.T) {
	orch, _ := newTestOrchestrator(t, ModeDynamic)
	out, err := orch.handleEnableToolset(context.Background(), map[string]any{"name": "core"})
	if err != nil {
		t.Fatalf("enable handler: %v", err)
	}
	result, ok := out.(EnableResult)
	if !ok || !result.Success || result.RegisteredCount != 2 {
		t.Fatalf("unexpected enable payload: %#v", out)
	}
	out, err = orch.handleDisableToolset(context.Background(), map[string]any{"name": "core"})
	if err != nil {
		t.Fatalf("disable handler: %v", err)
	}
	if disabled, ok := out.(DisableResult); !ok || !disabled.Success {
		t.Fatalf("unexpected disable payload: %#v", out)
	}
	if orch.Manager().IsActive("core") {
		t.Fatalf("expected core inactive")
	}
}

func TestListToolsetsHandler(t *testing.T) {
	orch, _ := newTestOrchestrator(t, ModeDynamic)
	orch.handleEnableToolset(context.Background(), map[string]any{"name": "core"})
	out, err := orch.handleListToolsets(context.Background(), nil)
	if err != nil {
		t.Fatalf("list handler: %v", err)
	}
	payload := out.(map[string]any)
	summaries := payload["toolsets"].([]ToolsetSummary)
	if len(summaries) != 3 {
		t.Fatalf("expected three summaries, got %d", len(summaries))
	}
	byName := map[string]ToolsetSummary{}
	for _, s := range summaries {
		byName[s.Name] = s
	}
	if !byName["core"].Active || len(byName["core"].Tools) != 2 {
		t.Fatalf("unexpected core summary: %#v", byName["core"])
	}
	if byName["ext"].Active {
		t.Fatalf("ext should be inactive")
	}
}

func TestDescribeToolsetHandler(t *testing.T) {
	orch, _ := newTestOrchestrator(t, ModeDynamic)
	out, err := orch.handleDescribeToolset(context.Background(), map[string]any{"name": "core"})
	if err != nil {
		t.Fatalf("describe handler: %v", err)
	}
	summary, ok := out.(ToolsetSummary)
	if !ok || summary.Name != "core" || summary.Active {
		t.Fatalf("unexpected describe payload: %#v", out)
	}

	out, err = orch.handleDescribeToolset(context.Background(), map[string]any{"name": "nope"})
	if err != nil {
		t.Fatalf("describe handler: %v", err)
	}
	unknown, ok := out.(UnknownToolset)
	if !ok || len(unknown.AvailableToolsets) != 3 {
		t.Fatalf("unexpected unknown payload: %#v", out)
	}
}

func TestListToolsHandlerReflectsHistory(t *testing.T) {
	orch, _ := newTestOrchestrator(t, ModeDynamic)
	orch.handleEnableToolset(context.Background(), map[string]any{"name": "core"})
	orch.handleDisableToolset(context.Background(), map[string]any{"name": "core"})
	out, err := orch.handleListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools handler: %v", err)
	}
	status := out.(Status)
	if len(status.Tools) != 2 {
		t.Fatalf("disable must not shrink the tool list: %#v", status)
	}
}
