// Package appupdate checks the Arch User Repository for newer ncash releases.
package appupdate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ImVILLS/neocash/internal/core"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	PackageName    = "neocash"
	DefaultBaseURL = "https://aur.archlinux.org/rpc/v5/info"

	cacheTTL       = time.Hour
	requestTimeout = 10 * time.Second
)

// Status is the result of comparing the running version with a release.
type Status int

const (
	UpToDate Status = iota
	Outdated
	Newer
)

func (s Status) String() string {
	switch s {
	case Outdated:
		return "outdated"
	case Newer:
		return "newer"
	default:
		return "up-to-date"
	}
}

// Release is the latest published version.
type Release struct {
	Version   string
	CheckedAt time.Time
	FromCache bool
}

type aurResponse struct {
	Results []struct {
		Version string `json:"Version"`
	} `json:"results"`
}

// Checker looks up the latest release, caching the answer on disk.
type Checker struct {
	client    *resty.Client
	baseURL   string
	cacheFile string
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Checker)

func WithBaseURL(url string) Option {
	return func(c *Checker) { c.baseURL = strings.TrimSuffix(url, "/") }
}

func WithCacheFile(path string) Option {
	return func(c *Checker) { c.cacheFile = path }
}

func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

func NewChecker(logger *zap.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New()
	client.SetTimeout(requestTimeout)

	c := &Checker{
		client:  client,
		baseURL: DefaultBaseURL,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheFile == "" {
		c.cacheFile = core.VersionCacheFile()
	}
	return c
}

// Latest returns the newest published version. A cached answer younger than
// an hour is reused as long as it was recorded for the same base version as
// current.
func (c *Checker) Latest(ctx context.Context, current string) (Release, error) {
	if release, ok := c.readCache(current); ok {
		c.logger.Debug("using cached release version", zap.String("version", release.Version))
		return release, nil
	}

	version, err := c.fetch(ctx)
	if err != nil {
		return Release{}, err
	}

	release := Release{Version: version, CheckedAt: c.now()}
	if err := c.writeCache(release); err != nil {
		c.logger.Warn("failed to write version cache", zap.String("path", c.cacheFile), zap.Error(err))
	}
	return release, nil
}

func (c *Checker) fetch(ctx context.Context) (string, error) {
	var body aurResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.baseURL + "/" + PackageName)
	if err != nil {
		return "", fmt.Errorf("failed to send request to AUR API: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("AUR API returned an error: %s", resp.Status())
	}
	if len(body.Results) == 0 {
		return "", fmt.Errorf("package %q not found in AUR", PackageName)
	}
	return body.Results[0].Version, nil
}

func (c *Checker) readCache(current string) (Release, bool) {
	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return Release{}, false
	}

	timestamp, version, found := strings.Cut(strings.TrimSpace(string(data)), "|")
	if !found {
		return Release{}, false
	}
	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return Release{}, false
	}

	checkedAt := time.Unix(seconds, 0)
	if c.now().Sub(checkedAt) >= cacheTTL || BaseVersion(version) != BaseVersion(current) {
		return Release{}, false
	}
	return Release{Version: version, CheckedAt: checkedAt, FromCache: true}, true
}

func (c *Checker) writeCache(release Release) error {
	if err := os.MkdirAll(filepath.Dir(c.cacheFile), 0755); err != nil {
		return err
	}
	content := fmt.Sprintf("%d|%s", release.CheckedAt.Unix(), release.Version)
	return os.WriteFile(c.cacheFile, []byte(content), 0644)
}

// BaseVersion strips a package release suffix: "1.2.3-4" becomes "1.2.3".
func BaseVersion(version string) string {
	base, _, _ := strings.Cut(version, "-")
	return base
}

// Compare reports how current relates to latest, ignoring release suffixes.
// Versions that do not parse count as 0.0.0.
func Compare(current, latest string) Status {
	switch parseBase(current).Compare(parseBase(latest)) {
	case -1:
		return Outdated
	case 1:
		return Newer
	default:
		return UpToDate
	}
}

var zeroVersion = semver.New(0, 0, 0, "", "")

func parseBase(version string) *semver.Version {
	v, err := semver.StrictNewVersion(BaseVersion(strings.TrimPrefix(version, "v")))
	if err != nil {
		return zeroVersion
	}
	return v
}

// IsDevBuild reports whether version is not a release version.
func IsDevBuild(version string) bool {
	_, err := semver.StrictNewVersion(BaseVersion(version))
	return err != nil
}
