package installer

// Executable paths relative to the download directory. They depend on the browser
// build the fetch tool resolves, so release builds pin them at link time:
//
//	go build -ldflags "-X github.com/thesyncim/wasmharness/pkg/installer.ChromeExecutablePath=..."
var (
	ChromeExecutablePath  = "chrome-headless-shell/linux_arm-134.0.6998.35/chrome-headless-shell-linux_arm/chrome-headless-shell"
	FirefoxExecutablePath = "firefox/linux-stable_136.0.1/firefox/firefox"
)

// CacheDirEnv is the variable the fetch tool reads its cache root from.
const CacheDirEnv = "PUPPETEER_CACHE_DIR"

// Browser describes how to fetch one browser and where its executable lands.
type Browser struct {
	Name           string   // Display name used in logs and CLI help
	Command        string   // Command name for the installer binary
	FetchArgs      []string // Arguments passed to the fetch command
	ExecutablePath string   // Path relative to the download directory
}

// Chrome fetches the headless shell build of Chromium.
func Chrome() Browser {
	return Browser{
		Name:           "Chrome",
		Command:        "chrome-installer",
		FetchArgs:      []string{"puppeteer", "browsers", "install", "chrome-headless-shell", "--platform=linux_arm"},
		ExecutablePath: ChromeExecutablePath,
	}
}

// Firefox fetches stable Firefox.
func Firefox() Browser {
	return Browser{
		Name:           "Firefox",
		Command:        "firefox-installer",
		FetchArgs:      []string{"puppeteer", "browsers", "install", "firefox"},
		ExecutablePath: FirefoxExecutablePath,
	}
}
