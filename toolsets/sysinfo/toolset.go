package sysinfo

import (
	"toolgate/pkg/sdk"
)

func init() {
	sdk.MustRegisterToolset(sdk.ToolsetDefinition{
		Name:             "sysinfo",
		Description:      "Runtime and host information about the server process.",
		DecisionCriteria: "Use when diagnosing resource usage or identifying the host the server runs on.",
		Modules:          []string{"sysinfo"},
	})
	sdk.MustRegisterLoader("sysinfo", loadTools)
}
