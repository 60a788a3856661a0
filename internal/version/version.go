package version

// Version is stamped at build time:
// go build -ldflags "-X git.home.luguber.info/inful/overfastsite/internal/version.Version=v1.0.0".
var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// UserAgent is sent with every upstream API request.
func UserAgent() string {
	return "overfastsite/" + Version
}
