package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"toolgate/pkg/server"

	_ "toolgate/toolsets/diag"
	_ "toolgate/toolsets/sysinfo"
)

const version = "0.1.0"

var runServer = server.Run
var exit = os.Exit

func main() {
	ctx := context.Background()

	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	mode := flags.String("mode", "", "toolset mode: dynamic or static")
	toolsets := flags.String("toolsets", "", "comma-separated toolsets to enable at startup")
	configPath := flags.String("config", "", "config file path")
	permissionsHeader := flags.String("permissions-header", "", "header carrying the client's permitted toolsets")
	logLevel := flags.String("log-level", "", "log level")

	_ = flags.Parse(os.Args[1:])

	options := server.Options{
		ConfigPath:        *configPath,
		Mode:              "",
		Toolsets:          nil,
		PermissionsHeader: "",
		LogLevel:          "",
		Version:           version,
		Stderr:            os.Stderr,
	}
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["mode"] {
		options.Mode = *mode
	}
	if set["toolsets"] {
		options.Toolsets = parseCSV(*toolsets)
	}
	if set["permissions-header"] {
		options.PermissionsHeader = *permissionsHeader
	}
	if set["log-level"] {
		options.LogLevel = *logLevel
	}

	if err := runServer(ctx, options); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		exit(1)
	}
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
