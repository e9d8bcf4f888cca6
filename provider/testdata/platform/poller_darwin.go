package platform

import "github.com/broady/commonizer/provider/testdata/shared"

// Poller is backed by a platform class.
type Poller = KqueuePoller

type KqueuePoller struct {
	kq int
}

// Conn reaches shared.Box through a platform alias.
type Conn = darwinConn

type darwinConn = shared.Handle

// Flags differ in width.
type Flags = uint64
