package render

import (
	"os"
	"path/filepath"
	"slices"
)

// chromeEnv is the variable puppeteer reads for the browser binary.
const chromeEnv = "PUPPETEER_EXECUTABLE_PATH"

var systemChromePaths = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
}

// puppeteer cache layouts: <home>/.cache/puppeteer/chrome/<version>/<platform>/...
var puppeteerGlobs = []string{
	filepath.Join("*", "chrome-mac-arm64", "Google Chrome for Testing.app", "Contents", "MacOS", "Google Chrome for Testing"),
	filepath.Join("*", "chrome-mac-x64", "Google Chrome for Testing.app", "Contents", "MacOS", "Google Chrome for Testing"),
	filepath.Join("*", "chrome-linux64", "chrome"),
}

// FindChrome locates a Chrome binary for mermaid-cli: $PUPPETEER_EXECUTABLE_PATH,
// then the newest puppeteer cache install, then system locations. "" when none exists.
func FindChrome() string {
	home, _ := os.UserHomeDir()
	return findChrome(os.Getenv(chromeEnv), home, systemChromePaths)
}

func findChrome(envPath, home string, system []string) string {
	if envPath != "" && exists(envPath) {
		return envPath
	}
	if home != "" {
		cache := filepath.Join(home, ".cache", "puppeteer", "chrome")
		for _, pattern := range puppeteerGlobs {
			matches, _ := filepath.Glob(filepath.Join(cache, pattern))
			if len(matches) == 0 {
				continue
			}
			// новейшая версия первой
			slices.Sort(matches)
			return matches[len(matches)-1]
		}
	}
	for _, p := range system {
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
