//go:build !linux

package run

import "os"

func adviseSequential(*os.File) {}
