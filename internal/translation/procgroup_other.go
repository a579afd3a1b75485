//go:build !unix

package translation

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
