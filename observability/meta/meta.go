// Package meta is everything you might want to know about the running application, all in one place.
package meta

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Version is overwritten at link time: go build -ldflags "-X gitlab.com/efronlicht/httpget/observability/meta.Version=v1.2.3"
var Version = "devel"

// Info is the application's metadata. This is too heavyweight to add into the logs everywhere, so we log it once at start
// and just inject the InstanceID into the logs.
type Info struct {
	AppName    string
	Version    string
	InstanceID uuid.UUID // unique for each process
	StartTime  time.Time
	PID        int
	Runtime    struct{ GOARCH, GOOS, Version string }
}

// New collects the metadata for the current process.
func New(appName string) Info {
	info := Info{
		AppName:    appName,
		Version:    Version,
		InstanceID: uuid.New(),
		StartTime:  time.Now(),
		PID:        os.Getpid(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok && info.Version == "devel" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	info.Runtime.GOARCH, info.Runtime.GOOS, info.Runtime.Version = runtime.GOARCH, runtime.GOOS, runtime.Version()
	return info
}

// String is the -version line, e.g. "httpget v1.2.3 (linux/amd64, go1.21.0)".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s/%s, %s)", i.AppName, i.Version, i.Runtime.GOOS, i.Runtime.GOARCH, i.Runtime.Version)
}

// Field is the zap field to attach to every log line: just the instance ID.
func (i Info) Field() zap.Field { return zap.Stringer("instance_id", i.InstanceID) }
