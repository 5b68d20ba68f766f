package version

import (
	"fmt"
	"runtime"
)

// Set by -ldflags at build time.
var (
	NAME     = "ovxview"
	VERSION  = "unknown"
	REVISION = "HEAD"
	BUILTAT  = "now"
)

func String() string {
	return fmt.Sprintf(
		"%s\nVersion:        %s\nGit hash:       %s\nBuilt:          %s\nGolang version: %s\nOS/Arch:        %s/%s\n",
		NAME, VERSION, REVISION, BUILTAT, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
}

// UserAgent identifies ovxview in backend requests.
func UserAgent() string {
	return NAME + "/" + VERSION
}
