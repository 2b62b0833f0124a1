package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	// No subcommand: file mode with flags, or stream mode on stdin.
	if len(cliArgs) == 0 || strings.HasPrefix(cliArgs[0], "-") && !isHelpToken(cliArgs[0]) && cliArgs[0] != "--version" {
		return runCompile(cliArgs)
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "compile":
		return runCompile(args)
	case "check":
		return runCheck(args)
	case "serve":
		return runServe(args)
	case "lock":
		return runLock(args)
	case "doctor":
		return runDoctor(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return exitUsage
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: polyc version [--json]")
		return exitUsage
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return exitFatal
		}
		fmt.Println(string(data))
		return exitOK
	}

	fmt.Printf("polyc %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return exitOK
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalizedBuildTime, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalizedBuildTime
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}

	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func printUsage() {
	fmt.Print(`polyc - compile one CoffeeScript, JavaScript, TypeScript or Less unit

Usage:
  polyc --file <path> [--lang <lang>]   Compile a file (lang defaults to coffeescript)
  polyc < request.json                  Compile {"code","lang","file"} read from stdin
  polyc <command> [flags]

Commands:
  compile   Same as the flag form above
  check     Compile a file and print a readable report
  serve     Serve POST /compile over HTTP
  lock      Write .checksums for the configured engine scripts
  doctor    Validate configuration and engine scripts
  version   Show version information
  help      Show this help message

Languages:
  coffeescript, javascript, typescript, less

Output:
  Exactly one JSON line on stdout: {"code":...,"deps":[...]} or {"error":...}.
  Logs go to stderr.

Exit status:
  0  a result was written (including compile errors)
  1  fatal: unreadable input, malformed request, unsupported lang, missing engine
  2  usage error

Common flags:
  --config <path>      Config file (default: $POLYC_CONFIG, ~/.config/polyc/config.yaml, /etc/polyc/config.yaml)
  --log-level <level>  debug, info, warn or error
`)
}
