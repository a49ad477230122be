// Package matting removes the background from overlay images, either through
// a remote matting service or a locally installed model.
package matting

import "os/exec"

// Capability describes which matting engines are usable.
type Capability int

const (
	None Capability = iota
	Remote
	Local
	Both
)

func (c Capability) String() string {
	switch c {
	case Remote:
		return "remote"
	case Local:
		return "local"
	case Both:
		return "both"
	}
	return "none"
}

func (c Capability) HasRemote() bool { return c == Remote || c == Both }
func (c Capability) HasLocal() bool  { return c == Local || c == Both }

// ResolveCapability decides the capability once at startup: remote when an
// API key is set, local when the rembg binary is on PATH.
func ResolveCapability(apiKey, rembgPath string) Capability {
	remote := apiKey != ""
	local := false
	if rembgPath != "" {
		_, err := exec.LookPath(rembgPath)
		local = err == nil
	}
	switch {
	case remote && local:
		return Both
	case remote:
		return Remote
	case local:
		return Local
	}
	return None
}
