package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is the running release; overridden at build time with
// -ldflags "-X github.com/Fepozopo/lutimg/pkg/cli.Version=...".
var Version = "0.1.0"

// semverRe finds v1.2.3 or 1.2.3 inside tag names like "lutimg-v1.2.3".
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// Updater checks GitHub releases of Repo and replaces the running binary.
type Updater struct {
	Repo    string
	APIBase string // defaults to https://api.github.com
	Client  *http.Client
	Out     io.Writer
	In      io.Reader
}

// Latest returns the highest published, non-prerelease semver release. It
// returns (nil, false, nil) when there is none.
func (u *Updater) Latest() (*selfupdate.Release, bool, error) {
	base := u.APIBase
	if base == "" {
		base = "https://api.github.com"
	}
	client := u.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Get(fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(base, "/"), u.Repo))
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		if match == "" {
			continue
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		assetURL := ""
		// prefer an asset that looks like a binary for some platform
		for _, a := range r.Assets {
			n := strings.ToLower(a.Name)
			if strings.Contains(n, "darwin") || strings.Contains(n, "linux") || strings.Contains(n, "windows") {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		candidates = append(candidates, &selfupdate.Release{Version: v, AssetURL: assetURL, Name: r.Name})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], true, nil
}

// Check compares current with the latest release and, after confirmation,
// replaces the executable.
func (u *Updater) Check(current string) error {
	fmt.Fprintf(u.Out, "Current version: %s\n", current)
	latest, found, err := u.Latest()
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found {
		fmt.Fprintf(u.Out, "No releases found for %s.\n", u.Repo)
		return nil
	}
	fmt.Fprintf(u.Out, "Latest version: %s\n", latest.Version)

	currentVer, err := semver.Parse(strings.TrimPrefix(current, "v"))
	if err != nil {
		fmt.Fprintf(u.Out, "warning: could not parse current version %q: %v\n", current, err)
	} else if !latest.Version.GT(currentVer) {
		fmt.Fprintf(u.Out, "You are already running the latest version: %s.\n", currentVer)
		return nil
	}

	if latest.AssetURL == "" {
		fmt.Fprintf(u.Out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	fmt.Fprintf(u.Out, "A new version (%s) is available. Update now? (y/N): ", latest.Version)
	answer, _ := bufio.NewReader(u.In).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(u.Out, "Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(u.Out, "Updated to version %s. Restart lutimg to use it.\n", latest.Version)
	return nil
}
