package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/ImVILLS/neocash/internal/appupdate"
	"github.com/ImVILLS/neocash/internal/styles"
	"github.com/dustin/go-humanize"
)

const repositoryURL = "https://github.com/ImVILLS/neocash"

type releaseChecker interface {
	Latest(ctx context.Context, current string) (appupdate.Release, error)
}

func showVersion(ctx context.Context, w io.Writer, version string, verbose bool, checker releaseChecker) {
	fmt.Fprintf(w, "NeoCASH v%s\n", version)

	if verbose {
		fmt.Fprintf(w, "Build: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "Repository: %s\n", repositoryURL)
	}

	if checker == nil {
		return
	}

	release, err := checker.Latest(ctx, version)
	if err != nil {
		fmt.Fprintf(w, "\n⚠️ Update check failed: %v\n", err)
		return
	}

	switch appupdate.Compare(version, release.Version) {
	case appupdate.Outdated:
		fmt.Fprintln(w, "\n"+styles.WARN(fmt.Sprintf("⚠️ Update available: v%s (your version: v%s)", release.Version, version)))
		fmt.Fprintf(w, "   Run: yay -Syu %s\n", appupdate.PackageName)
	case appupdate.Newer:
		fmt.Fprintln(w, "\n"+styles.INFO(fmt.Sprintf("✨ Your version is newer than on AUR: v%s (AUR: v%s)", version, release.Version)))
	default:
		fmt.Fprintln(w, "\n"+styles.SUCCESS("✓ You're up-to-date!"))
	}

	if verbose && release.FromCache {
		fmt.Fprintf(w, "   (last checked %s)\n", humanize.Time(release.CheckedAt))
	}
}
