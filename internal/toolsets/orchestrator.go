package toolsets

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type Mode string

const (
	// ModeDynamic lets clients activate and deactivate toolsets at runtime
	// through the meta tools.
	ModeDynamic Mode = "dynamic"
	// ModeStatic fixes the active toolsets at startup; only the listing
	// meta tool is exposed.
	ModeStatic Mode = "static"
)

func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeStatic)) {
		return ModeStatic
	}
	return ModeDynamic
}

// Orchestrator composes a lifecycle manager with the meta tools that let a
// client manage or introspect toolset activation. One orchestrator instance
// corresponds to one registration surface.
type Orchestrator struct {
	manager *Manager
	surface Surface
	mode    Mode
	logger  *zap.Logger
}

func NewOrchestrator(manager *Manager, surface Surface, mode Mode, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == "" {
		mode = ModeDynamic
	}
	return &Orchestrator{manager: manager, surface: surface, mode: mode, logger: logger}
}

func (o *Orchestrator) Mode() Mode {
	return o.mode
}

func (o *Orchestrator) Manager() *Manager {
	return o.manager
}

func (o *Orchestrator) Install(ctx context.Context) error {
	regs := o.metaTools()
	names := make([]string, 0, len(regs))
	for _, reg := range regs {
		if err := o.surface.RegisterTool(reg); err != nil {
			return err
		}
		names = append(names, reg.Name)
	}
	o.manager.RecordMeta(names)
	o.logger.Debug("meta tools installed",
		zap.String("mode", string(o.mode)),
		zap.Strings("tools", names))
	return nil
}
