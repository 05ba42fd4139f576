package runtime

import "fmt"

// Banners bracket each run in the terminal output. They are fed through
// Echo, so they land in the parser and scrollback without reaching the
// child.
const (
	bannerAccent = "\x1b[38;2;137;180;250m"
	bannerGreen  = "\x1b[32m"
	bannerRed    = "\x1b[31m"
	bannerReset  = "\x1b[0m"
)

func startBanner(cmd string) []byte {
	return fmt.Appendf(nil, "%s❱%s %s\r\n\r\n", bannerAccent, bannerReset, cmd)
}

func successBanner() []byte {
	return fmt.Appendf(nil, "\r\n%s❱%s Command succeeded %s✓%s\r\n",
		bannerAccent, bannerReset, bannerGreen, bannerReset)
}

func failureBanner(code int) []byte {
	return fmt.Appendf(nil, "\r\n%s❱%s Command failed %s✘%s (exit code %d)\r\n",
		bannerAccent, bannerReset, bannerRed, bannerReset, code)
}
